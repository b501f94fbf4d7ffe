package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

// PlanRepository reads project planning data (budget items, dependency links,
// calendar configuration) and persists computed schedules back.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var row struct {
		ID              uuid.UUID
		Name            string
		StartDate       time.Time
		WorkdayHours    float64
		WorkingWeekdays string
		CreatedByOrgID  uuid.UUID
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, start_date, workday_hours, working_weekdays, created_by_org_id
		FROM projects
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var holidays []time.Time
	if err := r.db.WithContext(ctx).Raw(`
		SELECT holiday_date
		FROM project_holidays
		WHERE project_id = ?
		ORDER BY holiday_date ASC
	`, id).Scan(&holidays).Error; err != nil {
		return nil, err
	}

	return &model.Project{
		ID:              row.ID,
		Name:            row.Name,
		StartDate:       row.StartDate,
		WorkdayHours:    row.WorkdayHours,
		WorkingWeekdays: decodeWeekdays(row.WorkingWeekdays),
		Holidays:        holidays,
		CreatedByOrgID:  row.CreatedByOrgID,
	}, nil
}

func (r *PlanRepository) ListBudgetItems(ctx context.Context, projectID uuid.UUID) ([]model.BudgetItem, error) {
	var items []model.BudgetItem
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			project_id,
			task_id,
			chapter,
			description,
			quantity,
			start_override,
			manual_duration,
			crews_assigned,
			efficiency_factor,
			allowance_pct,
			progress_pct,
			position
		FROM budget_items
		WHERE project_id = ?
		ORDER BY position ASC, id ASC
	`, projectID).Scan(&items).Error; err != nil {
		return nil, err
	}

	type depRow struct {
		ItemID        uuid.UUID
		PredecessorID uuid.UUID
		DepType       string
		LagDays       int
	}
	var deps []depRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT d.item_id, d.predecessor_id, d.dep_type, d.lag_days
		FROM budget_item_dependencies d
		JOIN budget_items i ON i.id = d.item_id
		WHERE i.project_id = ?
		ORDER BY d.item_id, d.predecessor_id
	`, projectID).Scan(&deps).Error; err != nil {
		return nil, err
	}

	byItem := make(map[uuid.UUID][]model.Dependency, len(items))
	for _, d := range deps {
		byItem[d.ItemID] = append(byItem[d.ItemID], model.Dependency{
			PredecessorID: d.PredecessorID,
			Type:          model.DependencyType(d.DepType),
			LagDays:       d.LagDays,
		})
	}
	for i := range items {
		items[i].Predecessors = byItem[items[i].ID]
	}
	return items, nil
}

// ScheduleRow is one computed schedule entry to persist.
type ScheduleRow struct {
	ItemID   uuid.UUID
	Start    time.Time
	End      time.Time
	Duration int
}

// SaveSchedule writes the computed dates back onto the budget items in one
// transaction. Unresolved items keep their previous dates untouched.
func (r *PlanRepository) SaveSchedule(ctx context.Context, projectID uuid.UUID, rows []ScheduleRow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := tx.Exec(`
				UPDATE budget_items
				SET start_date = ?, end_date = ?, duration_days = ?, scheduled_at = NOW()
				WHERE id = ? AND project_id = ?
			`, row.Start, row.End, row.Duration, row.ItemID, projectID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// decodeWeekdays reads the stored comma list of weekday indices
// (0=Sunday..6=Saturday).
func decodeWeekdays(raw string) []time.Weekday {
	var result []time.Weekday
	for _, c := range raw {
		if c < '0' || c > '6' {
			continue
		}
		result = append(result, time.Weekday(c-'0'))
	}
	return result
}
