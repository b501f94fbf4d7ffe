package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/config"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/engine"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/repository"
)

// CatalogStore is the slice of the catalog repository the planning service
// uses.
type CatalogStore interface {
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListTasksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Task, error)
	BuildPriceBook(ctx context.Context) (engine.PriceBook, error)
}

// PlanStore is the slice of the plan repository the planning service uses.
type PlanStore interface {
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListBudgetItems(ctx context.Context, projectID uuid.UUID) ([]model.BudgetItem, error)
	SaveSchedule(ctx context.Context, projectID uuid.UUID, rows []repository.ScheduleRow) error
}

// ExcelGenerator renders a budget export workbook.
type ExcelGenerator interface {
	Generate(export model.BudgetExport) ([]byte, error)
}

type PlanningService struct {
	catalog CatalogStore
	plans   PlanStore
	excel   ExcelGenerator
	cfg     *config.Config
	log     zerolog.Logger
}

func NewPlanningService(catalog CatalogStore, plans PlanStore, excel ExcelGenerator, cfg *config.Config, log zerolog.Logger) *PlanningService {
	return &PlanningService{
		catalog: catalog,
		plans:   plans,
		excel:   excel,
		cfg:     cfg,
		log:     log,
	}
}

// TaskUnitPrice computes the APU breakdown for one task against the current
// catalog snapshot. Missing catalog references degrade to zero contributions
// and are logged for audit.
func (s *PlanningService) TaskUnitPrice(ctx context.Context, taskID uuid.UUID, principal model.Principal) (*engine.UnitPrice, error) {
	if principal.IsSubcontractor() {
		return nil, ErrPermissionDenied
	}
	if taskID == uuid.Nil {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}

	task, err := s.catalog.GetTask(ctx, taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	book, err := s.catalog.BuildPriceBook(ctx)
	if err != nil {
		return nil, err
	}

	price := engine.ComputeUnitPrice(*task, book, s.cfg.Planning.WorkdayHours)
	s.logMissingRefs(taskID, price.MissingRefs)
	return &price, nil
}

type ScheduleProjectInput struct {
	ProjectID     uuid.UUID
	StartOverride *time.Time
	Principal     model.Principal
}

type ScheduleProjectResult struct {
	ProjectID  uuid.UUID
	Scheduled  []engine.ScheduledActivity
	Unresolved []uuid.UUID
}

// ScheduleProject recomputes the project schedule from a fresh snapshot and
// persists the resulting dates. Items whose dependencies never resolve are
// returned in Unresolved and keep their previous dates.
func (s *PlanningService) ScheduleProject(ctx context.Context, input ScheduleProjectInput) (*ScheduleProjectResult, error) {
	if !input.Principal.CanEditPlanning() {
		return nil, ErrPermissionDenied
	}
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}

	project, err := s.plans.GetProject(ctx, input.ProjectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := s.plans.ListBudgetItems(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(items) > s.cfg.Planning.MaxActivities {
		return nil, fmt.Errorf("%w: project has %d activities, limit is %d",
			ErrInvalidInput, len(items), s.cfg.Planning.MaxActivities)
	}

	result, err := s.runSchedule(ctx, project, items, input.StartOverride)
	if err != nil {
		return nil, err
	}

	rows := make([]repository.ScheduleRow, 0, len(result.Scheduled))
	for _, activity := range result.Scheduled {
		rows = append(rows, repository.ScheduleRow{
			ItemID:   activity.ItemID,
			Start:    activity.Start,
			End:      activity.End,
			Duration: activity.Duration,
		})
	}
	if err := s.plans.SaveSchedule(ctx, input.ProjectID, rows); err != nil {
		return nil, err
	}

	if len(result.Unresolved) > 0 {
		s.log.Warn().
			Str("project_id", input.ProjectID.String()).
			Int("unresolved", len(result.Unresolved)).
			Msg("schedule left activities unresolved")
	}

	return &ScheduleProjectResult{
		ProjectID:  input.ProjectID,
		Scheduled:  result.Scheduled,
		Unresolved: result.Unresolved,
	}, nil
}

type ExportBudgetResult struct {
	FileName string
	Content  []byte
}

// ExportBudget renders the project budget and schedule into a workbook. Unit
// prices and dates are recomputed from the current snapshot rather than read
// back from storage, so the export always reflects the catalog as of now.
func (s *PlanningService) ExportBudget(ctx context.Context, projectID uuid.UUID, principal model.Principal) (*ExportBudgetResult, error) {
	if principal.IsSubcontractor() {
		return nil, ErrPermissionDenied
	}
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}

	project, err := s.plans.GetProject(ctx, projectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := s.plans.ListBudgetItems(ctx, projectID)
	if err != nil {
		return nil, err
	}

	taskIDs := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]bool{}
	for _, item := range items {
		if !seen[item.TaskID] {
			seen[item.TaskID] = true
			taskIDs = append(taskIDs, item.TaskID)
		}
	}
	tasks, err := s.catalog.ListTasksByIDs(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	book, err := s.catalog.BuildPriceBook(ctx)
	if err != nil {
		return nil, err
	}

	schedule, err := s.runSchedule(ctx, project, items, nil)
	if err != nil {
		return nil, err
	}
	scheduledByItem := make(map[uuid.UUID]engine.ScheduledActivity, len(schedule.Scheduled))
	for _, activity := range schedule.Scheduled {
		scheduledByItem[activity.ItemID] = activity
	}
	unresolved := make(map[uuid.UUID]bool, len(schedule.Unresolved))
	for _, id := range schedule.Unresolved {
		unresolved[id] = true
	}

	workdayHours := project.WorkdayHours
	if workdayHours <= 0 {
		workdayHours = s.cfg.Planning.WorkdayHours
	}

	export := model.BudgetExport{
		Project:     *project,
		GeneratedAt: time.Now().UTC(),
		Unresolved:  len(schedule.Unresolved),
	}
	for _, item := range items {
		task := tasks[item.TaskID]
		price := engine.ComputeUnitPrice(task, book, workdayHours)
		s.logMissingRefs(task.ID, price.MissingRefs)
		export.MissingRefs += len(price.MissingRefs)

		row := model.BudgetExportRow{
			Chapter:      item.Chapter,
			Code:         task.Code,
			Description:  item.Description,
			Unit:         task.Unit,
			Quantity:     item.Quantity,
			MaterialCost: price.MaterialCost,
			ToolCost:     price.ToolCost,
			LaborCost:    price.LaborCost,
			FixedCost:    price.FixedCost,
			UnitPrice:    price.Total,
			Total:        round2(price.Total * item.Quantity),
			Unresolved:   unresolved[item.ID],
		}
		if activity, ok := scheduledByItem[item.ID]; ok {
			row.Start = activity.Start
			row.End = activity.End
			row.Duration = activity.Duration
		}
		export.TotalBudget = round2(export.TotalBudget + row.Total)
		export.Rows = append(export.Rows, row)
	}

	content, err := s.excel.Generate(export)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("budget-%s-%s.xlsx",
		sanitizeFileName(project.Name), time.Now().UTC().Format("20060102"))
	return &ExportBudgetResult{FileName: fileName, Content: content}, nil
}

func (s *PlanningService) runSchedule(ctx context.Context, project *model.Project, items []model.BudgetItem, startOverride *time.Time) (*engine.ScheduleResult, error) {
	weekdays := project.WorkingWeekdays
	if len(weekdays) == 0 {
		weekdays = s.cfg.Planning.WorkingWeekdays
	}
	cal, err := engine.NewCalendar(weekdays, project.Holidays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start := project.StartDate
	if startOverride != nil {
		start = *startOverride
	}

	taskIDs := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]bool{}
	for _, item := range items {
		if !seen[item.TaskID] {
			seen[item.TaskID] = true
			taskIDs = append(taskIDs, item.TaskID)
		}
	}
	tasks, err := s.catalog.ListTasksByIDs(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	result := engine.Schedule(engine.ScheduleInput{
		ProjectStart: start,
		Calendar:     cal,
		WorkdayHours: project.WorkdayHours,
		Items:        items,
		Tasks:        tasks,
	})
	return &result, nil
}

func (s *PlanningService) logMissingRefs(taskID uuid.UUID, refs []engine.MissingRef) {
	for _, ref := range refs {
		s.log.Warn().
			Str("task_id", taskID.String()).
			Str("kind", string(ref.Kind)).
			Str("ref_id", ref.ID.String()).
			Msg("consumption row references missing catalog entry")
	}
}
