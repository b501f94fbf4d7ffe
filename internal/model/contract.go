package model

import (
	"time"

	"github.com/google/uuid"
)

// Contract is a subcontract over a set of budget items. RetentionPct is the
// "fondo de reparo" withheld from every certification until closeout.
type Contract struct {
	ID              uuid.UUID
	ProjectID       uuid.UUID
	SubcontractorID uuid.UUID
	CustomerOrgID   uuid.UUID
	Name            string
	RetentionPct    float64
	StartAt         time.Time
	EndAt           time.Time
	Subcontractor   Organization
	Customer        Organization
	Items           []ContractItem
}

// ContractItem freezes the agreed unit price for one budget item at contract
// time. The price is a copy, not a live reference to the computed unit price.
type ContractItem struct {
	ID              uuid.UUID
	ContractID      uuid.UUID
	BudgetItemID    uuid.UUID
	Description     string
	Quantity        float64
	AgreedUnitPrice float64
}

type CertificationStatus string

const (
	CertificationStatusIssued          CertificationStatus = "ISSUED"
	CertificationStatusPendingApproval CertificationStatus = "PENDING_APPROVAL"
	CertificationStatusApproved        CertificationStatus = "APPROVED"
	CertificationStatusRejected        CertificationStatus = "REJECTED"
)

// Certification is one billing period of a contract. Records are append-only:
// amounts are never edited after creation, progressive billing accumulates by
// issuing further certifications.
type Certification struct {
	ID               uuid.UUID
	ContractID       uuid.UUID
	Number           string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	GrossAmount      float64
	RetentionPct     float64
	RetentionAmount  float64
	NetAmount        float64
	Status           CertificationStatus
	RejectionReason  *string
	ApprovedByOrgID  *uuid.UUID
	ApprovedByUserID *uuid.UUID
	ApprovedAt       *time.Time
	CreatedByOrgID   uuid.UUID
	CreatedByUserID  uuid.UUID
	CreatedAt        time.Time
	Lines            []CertificationLine
}

// CertificationLine records the incremental percent certified for one
// contract item in this period and the resulting amount.
type CertificationLine struct {
	ContractItemID    uuid.UUID
	PercentThisPeriod float64
	Amount            float64
}

// CertificationDocument bundles everything the PDF rendering needs.
type CertificationDocument struct {
	Certification Certification
	Contract      Contract
	PaidBefore    float64
}
