package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/engine"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

// ContractStore is the slice of the contract repository the certification
// service uses.
type ContractStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	SumCertifiedPercent(ctx context.Context, contractID uuid.UUID) (map[uuid.UUID]float64, error)
	CountForContract(ctx context.Context, contractID uuid.UUID) (int64, error)
	CreateCertification(ctx context.Context, cert model.Certification) (*model.Certification, error)
	GetCertification(ctx context.Context, id uuid.UUID) (*model.Certification, error)
	SumNetBefore(ctx context.Context, contractID, certID uuid.UUID) (float64, error)
}

// PDFGenerator renders a certification document.
type PDFGenerator interface {
	Generate(doc model.CertificationDocument) ([]byte, error)
}

type CertificationService struct {
	contracts ContractStore
	pdf       PDFGenerator
	log       zerolog.Logger
}

func NewCertificationService(contracts ContractStore, pdf PDFGenerator, log zerolog.Logger) *CertificationService {
	return &CertificationService{contracts: contracts, pdf: pdf, log: log}
}

type CertificationLineInput struct {
	ContractItemID    uuid.UUID
	PercentThisPeriod float64
}

type CreateCertificationInput struct {
	ContractID  uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Lines       []CertificationLineInput
	Principal   model.Principal
}

// CreateCertification bills one period of a contract. The subcontractor's
// documents must be current through the period end; the amounts come from the
// certification calculator over the contract's frozen prices. Cumulative
// percent above 100 for an item is logged as a warning but not rejected.
func (s *CertificationService) CreateCertification(ctx context.Context, input CreateCertificationInput) (*model.Certification, error) {
	if !input.Principal.CanEditPlanning() {
		return nil, ErrPermissionDenied
	}
	if input.ContractID == uuid.Nil {
		return nil, fmt.Errorf("%w: contract_id is required", ErrInvalidInput)
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}

	contract, err := s.contracts.GetContract(ctx, input.ContractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Document validity gates the certification here at the call boundary;
	// the calculator itself knows nothing about documents.
	if !contract.Subcontractor.HasValidDocuments(periodEnd) {
		return nil, ErrDocumentsExpired
	}

	itemsByID := make(map[uuid.UUID]model.ContractItem, len(contract.Items))
	for _, item := range contract.Items {
		itemsByID[item.ID] = item
	}

	calcItems := make([]engine.CertificationItemInput, 0, len(input.Lines))
	anyProgress := false
	for _, line := range input.Lines {
		item, ok := itemsByID[line.ContractItemID]
		if !ok {
			return nil, fmt.Errorf("%w: contract item %s does not belong to the contract",
				ErrInvalidInput, line.ContractItemID)
		}
		if line.PercentThisPeriod < 0 {
			return nil, fmt.Errorf("%w: percent must not be negative", ErrInvalidInput)
		}
		if line.PercentThisPeriod > 0 {
			anyProgress = true
		}
		calcItems = append(calcItems, engine.CertificationItemInput{
			ContractItemID:    item.ID,
			Quantity:          item.Quantity,
			AgreedUnitPrice:   item.AgreedUnitPrice,
			PercentThisPeriod: line.PercentThisPeriod,
		})
	}
	if !anyProgress {
		return nil, ErrNothingToCertify
	}

	certified, err := s.contracts.SumCertifiedPercent(ctx, input.ContractID)
	if err != nil {
		return nil, err
	}
	for _, line := range input.Lines {
		cumulative := certified[line.ContractItemID] + line.PercentThisPeriod
		if cumulative > 100+1e-9 {
			s.log.Warn().
				Str("contract_id", input.ContractID.String()).
				Str("contract_item_id", line.ContractItemID.String()).
				Float64("cumulative_pct", cumulative).
				Msg("certification exceeds 100 percent cumulative")
		}
	}

	result := engine.Certify(calcItems, contract.RetentionPct)

	count, err := s.contracts.CountForContract(ctx, input.ContractID)
	if err != nil {
		return nil, err
	}

	cert := model.Certification{
		ContractID:      input.ContractID,
		Number:          buildCertificationNumber(contract.ID, count+1),
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		GrossAmount:     result.Gross,
		RetentionPct:    contract.RetentionPct,
		RetentionAmount: result.Retention,
		NetAmount:       result.Net,
		Status:          model.CertificationStatusIssued,
		CreatedByOrgID:  input.Principal.OrgID,
		CreatedByUserID: input.Principal.UserID,
	}
	for _, line := range result.Lines {
		cert.Lines = append(cert.Lines, model.CertificationLine{
			ContractItemID:    line.ContractItemID,
			PercentThisPeriod: line.PercentThisPeriod,
			Amount:            line.Amount,
		})
	}

	return s.contracts.CreateCertification(ctx, cert)
}

type CertificationPDFResult struct {
	FileName string
	Content  []byte
}

// CertificationPDF renders the stored certification as a printable document.
// Subcontractors may only fetch certifications of their own contracts.
func (s *CertificationService) CertificationPDF(ctx context.Context, certID uuid.UUID, principal model.Principal) (*CertificationPDFResult, error) {
	if certID == uuid.Nil {
		return nil, fmt.Errorf("%w: certification id is required", ErrInvalidInput)
	}

	cert, err := s.contracts.GetCertification(ctx, certID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	contract, err := s.contracts.GetContract(ctx, cert.ContractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if principal.IsSubcontractor() && principal.OrgID != contract.SubcontractorID {
		return nil, ErrPermissionDenied
	}

	paidBefore, err := s.contracts.SumNetBefore(ctx, contract.ID, cert.ID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(model.CertificationDocument{
		Certification: *cert,
		Contract:      *contract,
		PaidBefore:    paidBefore,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("certification-%s.pdf", sanitizeFileName(cert.Number))
	return &CertificationPDFResult{FileName: fileName, Content: content}, nil
}

func buildCertificationNumber(contractID uuid.UUID, sequence int64) string {
	return fmt.Sprintf("CERT-%s-%03d", strings.ToUpper(contractID.String()[:8]), sequence)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
