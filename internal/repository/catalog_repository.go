package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/engine"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

// CatalogRepository reads the reference tables (materials, tools, labor
// categories, crews) and the task consumption tables the calculators run
// against.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, name, unit, daily_yield, man_hours_per_unit, manual_labor_cost, fixed_cost
		FROM tasks
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&task).Error; err != nil {
		return nil, err
	}
	if task.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	if err := r.loadTaskUsages(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasksByIDs loads the given tasks with their consumption rows. Unknown
// ids are simply absent from the result.
func (r *CatalogRepository) ListTasksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Task, error) {
	result := make(map[uuid.UUID]model.Task, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var tasks []model.Task
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, name, unit, daily_yield, man_hours_per_unit, manual_labor_cost, fixed_cost
		FROM tasks
		WHERE id = ANY(?)
	`, ids).Scan(&tasks).Error; err != nil {
		return nil, err
	}

	for i := range tasks {
		if err := r.loadTaskUsages(ctx, &tasks[i]); err != nil {
			return nil, err
		}
		result[tasks[i].ID] = tasks[i]
	}
	return result, nil
}

func (r *CatalogRepository) loadTaskUsages(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Raw(`
		SELECT material_id, net_quantity, waste_pct
		FROM task_materials
		WHERE task_id = ?
		ORDER BY material_id
	`, task.ID).Scan(&task.Materials).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT tool_id, hours_per_unit
		FROM task_tools
		WHERE task_id = ?
		ORDER BY tool_id
	`, task.ID).Scan(&task.Tools).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Raw(`
		SELECT crew_id, crews
		FROM task_crews
		WHERE task_id = ?
		ORDER BY crew_id
	`, task.ID).Scan(&task.Crews).Error
}

// BuildPriceBook snapshots the whole catalog into the lookup maps the unit
// price calculator consumes.
func (r *CatalogRepository) BuildPriceBook(ctx context.Context) (engine.PriceBook, error) {
	book := engine.PriceBook{
		Materials:       map[uuid.UUID]model.Material{},
		Tools:           map[uuid.UUID]model.Tool{},
		LaborCategories: map[uuid.UUID]model.LaborCategory{},
		Crews:           map[uuid.UUID]model.Crew{},
	}

	var materials []model.Material
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, name, unit, unit_cost
		FROM materials
		ORDER BY code ASC
	`).Scan(&materials).Error; err != nil {
		return book, err
	}
	for _, m := range materials {
		book.Materials[m.ID] = m
	}

	var tools []model.Tool
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, name, hourly_cost
		FROM tools
		ORDER BY code ASC
	`).Scan(&tools).Error; err != nil {
		return book, err
	}
	for _, t := range tools {
		book.Tools[t.ID] = t
	}

	var categories []model.LaborCategory
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, base_hourly_rate, social_charges_pct, insurance_pct
		FROM labor_categories
		ORDER BY name ASC
	`).Scan(&categories).Error; err != nil {
		return book, err
	}
	for _, lc := range categories {
		book.LaborCategories[lc.ID] = lc
	}

	crews, err := r.listCrews(ctx)
	if err != nil {
		return book, err
	}
	for _, crew := range crews {
		book.Crews[crew.ID] = crew
	}

	return book, nil
}

func (r *CatalogRepository) listCrews(ctx context.Context) ([]model.Crew, error) {
	var crews []model.Crew
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name
		FROM crews
		ORDER BY name ASC
	`).Scan(&crews).Error; err != nil {
		return nil, err
	}

	type memberRow struct {
		CrewID           uuid.UUID
		LaborCategoryID  uuid.UUID
		Count            float64
		ParticipationPct float64
	}
	var members []memberRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT crew_id, labor_category_id, count, participation_pct
		FROM crew_members
		ORDER BY crew_id, labor_category_id
	`).Scan(&members).Error; err != nil {
		return nil, err
	}

	byCrew := make(map[uuid.UUID][]model.CrewMember, len(crews))
	for _, m := range members {
		byCrew[m.CrewID] = append(byCrew[m.CrewID], model.CrewMember{
			LaborCategoryID:  m.LaborCategoryID,
			Count:            m.Count,
			ParticipationPct: m.ParticipationPct,
		})
	}
	for i := range crews {
		crews[i].Members = byCrew[crews[i].ID]
	}
	return crews, nil
}
