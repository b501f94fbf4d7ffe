package model

import "github.com/google/uuid"

// Material is a purchasable resource priced per unit of measure.
type Material struct {
	ID       uuid.UUID
	Code     string
	Name     string
	Unit     string
	UnitCost float64
}

// Tool is equipment priced per hour of use.
type Tool struct {
	ID         uuid.UUID
	Code       string
	Name       string
	HourlyCost float64
}

// LaborCategory is a wage grade with its social charges and insurance loads.
type LaborCategory struct {
	ID               uuid.UUID
	Name             string
	BaseHourlyRate   float64
	SocialChargesPct float64
	InsurancePct     float64
}

// EffectiveHourlyRate is the base rate loaded with social charges and insurance.
func (lc LaborCategory) EffectiveHourlyRate() float64 {
	return lc.BaseHourlyRate * (1 + (lc.SocialChargesPct+lc.InsurancePct)/100)
}

// CrewMember binds a labor category into a crew with a headcount and
// a participation percentage. Participation <= 0 means full time (100).
type CrewMember struct {
	LaborCategoryID  uuid.UUID
	Count            float64
	ParticipationPct float64
}

// Crew is a named labor composition reused as a productivity unit
// ("cuadrilla" in the budget sheets).
type Crew struct {
	ID      uuid.UUID
	Name    string
	Members []CrewMember
}
