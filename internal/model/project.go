package model

import (
	"time"

	"github.com/google/uuid"
)

type DependencyType string

const (
	DependencyFinishToStart  DependencyType = "FS"
	DependencyStartToStart   DependencyType = "SS"
	DependencyFinishToFinish DependencyType = "FF"
	DependencyStartToFinish  DependencyType = "SF"
)

// Dependency links a budget item to a predecessor item. Only finish-to-start
// ordering is computed by the scheduler; the other types are stored and
// treated as FS.
type Dependency struct {
	PredecessorID uuid.UUID
	Type          DependencyType
	LagDays       int
}

// BudgetItem is one scheduled line of a project budget: a task taken in a
// given quantity, with its planning overrides.
//
// ManualDuration overrides the computed duration when positive.
// StartOverride fixes the start date of items without predecessors.
// CrewsAssigned is the number of parallel crews ("frentes de ataque");
// values below 1 are read as 1.
type BudgetItem struct {
	ID               uuid.UUID
	ProjectID        uuid.UUID
	TaskID           uuid.UUID
	Chapter          string
	Description      string
	Quantity         float64
	StartOverride    *time.Time
	ManualDuration   int
	Predecessors     []Dependency
	CrewsAssigned    int
	EfficiencyFactor float64
	AllowancePct     float64
	ProgressPct      float64
	Position         int
}

// Project carries the planning configuration the calculators consume:
// calendar definition, workday length and the nominal start date.
type Project struct {
	ID              uuid.UUID
	Name            string
	StartDate       time.Time
	WorkdayHours    float64
	WorkingWeekdays []time.Weekday
	Holidays        []time.Time
	CreatedByOrgID  uuid.UUID
}
