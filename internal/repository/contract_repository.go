package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

// ContractRepository reads subcontracts with their frozen item prices and
// stores the append-only certification records.
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row struct {
		ID                 uuid.UUID
		ProjectID          uuid.UUID
		SubcontractorID    uuid.UUID
		CustomerOrgID      uuid.UUID
		Name               string
		RetentionPct       float64
		StartAt            time.Time
		EndAt              time.Time
		SubName            string
		SubType            string
		SubTaxID           string
		SubHead            string
		SubAddr            string
		SubPhone           string
		SubInsuranceExpiry *time.Time
		CustName           string
		CustType           string
		CustTaxID          string
		CustHead           string
		CustAddr           string
		CustPhone          string
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id,
			c.project_id,
			c.subcontractor_id,
			c.customer_org_id,
			c.name,
			c.retention_pct,
			c.start_at,
			c.end_at,
			sub.name AS sub_name,
			sub.type AS sub_type,
			sub.tax_id AS sub_tax_id,
			sub.head_full_name AS sub_head,
			sub.address AS sub_addr,
			sub.phone AS sub_phone,
			sub.insurance_expires_at AS sub_insurance_expiry,
			customer.name AS cust_name,
			customer.type AS cust_type,
			customer.tax_id AS cust_tax_id,
			customer.head_full_name AS cust_head,
			customer.address AS cust_addr,
			customer.phone AS cust_phone
		FROM contracts c
		JOIN organizations sub ON sub.id = c.subcontractor_id
		JOIN organizations customer ON customer.id = c.customer_org_id
		WHERE c.id = ?
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var items []model.ContractItem
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, budget_item_id, description, quantity, agreed_unit_price
		FROM contract_items
		WHERE contract_id = ?
		ORDER BY id ASC
	`, id).Scan(&items).Error; err != nil {
		return nil, err
	}

	return &model.Contract{
		ID:              row.ID,
		ProjectID:       row.ProjectID,
		SubcontractorID: row.SubcontractorID,
		CustomerOrgID:   row.CustomerOrgID,
		Name:            row.Name,
		RetentionPct:    row.RetentionPct,
		StartAt:         row.StartAt,
		EndAt:           row.EndAt,
		Subcontractor: model.Organization{
			ID:                 row.SubcontractorID,
			Name:               row.SubName,
			Type:               row.SubType,
			TaxID:              row.SubTaxID,
			HeadFullName:       row.SubHead,
			Address:            row.SubAddr,
			Phone:              row.SubPhone,
			InsuranceExpiresAt: row.SubInsuranceExpiry,
		},
		Customer: model.Organization{
			ID:           row.CustomerOrgID,
			Name:         row.CustName,
			Type:         row.CustType,
			TaxID:        row.CustTaxID,
			HeadFullName: row.CustHead,
			Address:      row.CustAddr,
			Phone:        row.CustPhone,
		},
		Items: items,
	}, nil
}

// SumCertifiedPercent returns the cumulative certified percent per contract
// item across all non-rejected certifications.
func (r *ContractRepository) SumCertifiedPercent(ctx context.Context, contractID uuid.UUID) (map[uuid.UUID]float64, error) {
	type row struct {
		ContractItemID uuid.UUID
		TotalPct       float64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Raw(`
		SELECT l.contract_item_id, COALESCE(SUM(l.percent_this_period), 0) AS total_pct
		FROM certification_lines l
		JOIN certifications cert ON cert.id = l.certification_id
		WHERE cert.contract_id = ?
			AND cert.status <> 'REJECTED'
		GROUP BY l.contract_item_id
	`, contractID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]float64, len(rows))
	for _, r := range rows {
		result[r.ContractItemID] = r.TotalPct
	}
	return result, nil
}

// CountForContract returns how many certifications the contract already has,
// rejected ones included; the count feeds the certification number.
func (r *ContractRepository) CountForContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM certifications WHERE contract_id = ?
	`, contractID).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateCertification stores the certification and its lines atomically and
// returns the record with generated fields filled in.
func (r *ContractRepository) CreateCertification(ctx context.Context, cert model.Certification) (*model.Certification, error) {
	saved := cert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var generated struct {
			ID        uuid.UUID
			CreatedAt time.Time
		}
		if err := tx.Raw(`
			INSERT INTO certifications (
				contract_id,
				number,
				period_start,
				period_end,
				gross_amount,
				retention_pct,
				retention_amount,
				net_amount,
				status,
				created_by_org_id,
				created_by_user_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id, created_at
		`,
			cert.ContractID,
			cert.Number,
			cert.PeriodStart,
			cert.PeriodEnd,
			cert.GrossAmount,
			cert.RetentionPct,
			cert.RetentionAmount,
			cert.NetAmount,
			string(cert.Status),
			cert.CreatedByOrgID,
			cert.CreatedByUserID,
		).Scan(&generated).Error; err != nil {
			return err
		}

		saved.ID = generated.ID
		saved.CreatedAt = generated.CreatedAt

		for _, line := range cert.Lines {
			if err := tx.Exec(`
				INSERT INTO certification_lines (certification_id, contract_item_id, percent_this_period, amount)
				VALUES (?, ?, ?, ?)
			`, generated.ID, line.ContractItemID, line.PercentThisPeriod, line.Amount).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ContractRepository) GetCertification(ctx context.Context, id uuid.UUID) (*model.Certification, error) {
	var cert model.Certification
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			contract_id,
			number,
			period_start,
			period_end,
			gross_amount,
			retention_pct,
			retention_amount,
			net_amount,
			status,
			rejection_reason,
			approved_by_org_id,
			approved_by_user_id,
			approved_at,
			created_by_org_id,
			created_by_user_id,
			created_at
		FROM certifications
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&cert).Error; err != nil {
		return nil, err
	}
	if cert.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	if err := r.db.WithContext(ctx).Raw(`
		SELECT contract_item_id, percent_this_period, amount
		FROM certification_lines
		WHERE certification_id = ?
		ORDER BY contract_item_id
	`, id).Scan(&cert.Lines).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// SumNetBefore returns the net amount already certified on the contract by
// certifications created before the given one, rejected ones excluded.
func (r *ContractRepository) SumNetBefore(ctx context.Context, contractID, certID uuid.UUID) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(net_amount), 0)
		FROM certifications
		WHERE contract_id = ?
			AND status <> 'REJECTED'
			AND created_at < (SELECT created_at FROM certifications WHERE id = ?)
	`, contractID, certID).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
