package model

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID                 uuid.UUID
	Name               string
	Type               string
	TaxID              string
	HeadFullName       string
	Address            string
	Phone              string
	InsuranceExpiresAt *time.Time
}

// HasValidDocuments reports whether the organization's mandatory documents
// (insurance policy) are current as of the given date. A missing expiry date
// counts as invalid.
func (o Organization) HasValidDocuments(at time.Time) bool {
	if o.InsuranceExpiresAt == nil {
		return false
	}
	return !o.InsuranceExpiresAt.Before(at)
}
