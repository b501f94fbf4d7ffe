package engine

import "github.com/google/uuid"

// CertificationItemInput is one contract line to certify: the frozen agreed
// price, the contracted quantity and the percent of completion billed in this
// period. The percent is incremental, not cumulative; tracking the running
// total across periods is the caller's job.
type CertificationItemInput struct {
	ContractItemID    uuid.UUID
	Quantity          float64
	AgreedUnitPrice   float64
	PercentThisPeriod float64
}

// CertificationLineResult is the billed amount for one contract item.
type CertificationLineResult struct {
	ContractItemID    uuid.UUID
	PercentThisPeriod float64
	Amount            float64
}

// CertificationResult is the money of one billing period: gross work value,
// retention withheld and the net payable.
type CertificationResult struct {
	Gross     float64
	Retention float64
	Net       float64
	Lines     []CertificationLineResult
}

// Certify computes a percentage-of-completion billing over the given contract
// lines. Per line: amount = percent/100 * quantity * agreed price. Retention
// is withheld from the gross at retentionPct. Amounts are rounded to 2
// decimals.
//
// The calculator performs no cumulative validation: a running total above
// 100% across periods passes through unchecked.
func Certify(items []CertificationItemInput, retentionPct float64) CertificationResult {
	result := CertificationResult{
		Lines: make([]CertificationLineResult, 0, len(items)),
	}

	for _, item := range items {
		amount := round2(item.PercentThisPeriod / 100 * item.Quantity * item.AgreedUnitPrice)
		result.Gross += amount
		result.Lines = append(result.Lines, CertificationLineResult{
			ContractItemID:    item.ContractItemID,
			PercentThisPeriod: item.PercentThisPeriod,
			Amount:            amount,
		})
	}

	result.Gross = round2(result.Gross)
	result.Retention = round2(result.Gross * retentionPct / 100)
	result.Net = round2(result.Gross - result.Retention)
	return result
}
