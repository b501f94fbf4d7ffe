package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/config"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/engine"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/repository"
)

type stubCatalogStore struct {
	tasks map[uuid.UUID]model.Task
	book  engine.PriceBook
}

func (s *stubCatalogStore) GetTask(_ context.Context, id uuid.UUID) (*model.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &task, nil
}

func (s *stubCatalogStore) ListTasksByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Task, error) {
	result := make(map[uuid.UUID]model.Task, len(ids))
	for _, id := range ids {
		if task, ok := s.tasks[id]; ok {
			result[id] = task
		}
	}
	return result, nil
}

func (s *stubCatalogStore) BuildPriceBook(context.Context) (engine.PriceBook, error) {
	return s.book, nil
}

type stubPlanStore struct {
	project *model.Project
	items   []model.BudgetItem
	saved   []repository.ScheduleRow
}

func (s *stubPlanStore) GetProject(_ context.Context, id uuid.UUID) (*model.Project, error) {
	if s.project == nil || s.project.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.project, nil
}

func (s *stubPlanStore) ListBudgetItems(context.Context, uuid.UUID) ([]model.BudgetItem, error) {
	return s.items, nil
}

func (s *stubPlanStore) SaveSchedule(_ context.Context, _ uuid.UUID, rows []repository.ScheduleRow) error {
	s.saved = rows
	return nil
}

type stubExcel struct{}

func (stubExcel) Generate(model.BudgetExport) ([]byte, error) {
	return []byte("PK"), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Planning: config.PlanningConfig{
			WorkdayHours: 9,
			WorkingWeekdays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
			MaxActivities: 5000,
		},
	}
}

func pavingTask() model.Task {
	return model.Task{
		ID:              uuid.New(),
		Code:            "PAV-01",
		Name:            "Pavimento de hormigón",
		Unit:            "m2",
		DailyYield:      10,
		ManualLaborCost: 4,
		FixedCost:       1.5,
	}
}

func planningFixture() (*stubCatalogStore, *stubPlanStore, model.Task) {
	task := pavingTask()
	catalog := &stubCatalogStore{
		tasks: map[uuid.UUID]model.Task{task.ID: task},
		book: engine.PriceBook{
			Materials:       map[uuid.UUID]model.Material{},
			Tools:           map[uuid.UUID]model.Tool{},
			LaborCategories: map[uuid.UUID]model.LaborCategory{},
			Crews:           map[uuid.UUID]model.Crew{},
		},
	}
	plans := &stubPlanStore{
		project: &model.Project{
			ID:        uuid.New(),
			Name:      "Obra Ruta 8",
			StartDate: time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
			WorkingWeekdays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
		},
	}
	plans.items = []model.BudgetItem{
		{
			ID:               uuid.New(),
			ProjectID:        plans.project.ID,
			TaskID:           task.ID,
			Chapter:          "Movimiento de suelos",
			Description:      "Pavimento sector A",
			Quantity:         100,
			CrewsAssigned:    2,
			EfficiencyFactor: 1,
		},
	}
	return catalog, plans, task
}

func TestTaskUnitPrice(t *testing.T) {
	catalog, plans, task := planningFixture()
	svc := NewPlanningService(catalog, plans, stubExcel{}, testConfig(), zerolog.Nop())

	price, err := svc.TaskUnitPrice(context.Background(), task.ID, engineerPrincipal())
	if err != nil {
		t.Fatalf("TaskUnitPrice: %v", err)
	}
	if price.LaborCost != 4 {
		t.Errorf("LaborCost = %v, want 4", price.LaborCost)
	}
	if price.Total != 5.5 {
		t.Errorf("Total = %v, want 5.5", price.Total)
	}

	if _, err := svc.TaskUnitPrice(context.Background(), uuid.New(), engineerPrincipal()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown task error = %v, want ErrNotFound", err)
	}

	sub := model.Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: model.RoleSubcontractor}
	if _, err := svc.TaskUnitPrice(context.Background(), task.ID, sub); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("subcontractor error = %v, want ErrPermissionDenied", err)
	}
}

func TestScheduleProject(t *testing.T) {
	catalog, plans, _ := planningFixture()
	svc := NewPlanningService(catalog, plans, stubExcel{}, testConfig(), zerolog.Nop())

	result, err := svc.ScheduleProject(context.Background(), ScheduleProjectInput{
		ProjectID: plans.project.ID,
		Principal: engineerPrincipal(),
	})
	if err != nil {
		t.Fatalf("ScheduleProject: %v", err)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("Scheduled = %d activities, want 1", len(result.Scheduled))
	}

	// 100 m2 at 10/day with 2 crews takes 5 working days: Mon Jan 5 to Fri Jan 9.
	activity := result.Scheduled[0]
	if activity.Duration != 5 {
		t.Errorf("Duration = %d, want 5", activity.Duration)
	}
	wantEnd := time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC)
	if !activity.End.Equal(wantEnd) {
		t.Errorf("End = %s, want %s", activity.End.Format("2006-01-02"), wantEnd.Format("2006-01-02"))
	}
	if len(result.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", result.Unresolved)
	}
	if len(plans.saved) != 1 || plans.saved[0].Duration != 5 {
		t.Errorf("saved rows = %+v, want one row of 5 days", plans.saved)
	}
}

func TestScheduleProjectViewerDenied(t *testing.T) {
	catalog, plans, _ := planningFixture()
	svc := NewPlanningService(catalog, plans, stubExcel{}, testConfig(), zerolog.Nop())

	viewer := model.Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: model.RoleViewer}
	_, err := svc.ScheduleProject(context.Background(), ScheduleProjectInput{
		ProjectID: plans.project.ID,
		Principal: viewer,
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("error = %v, want ErrPermissionDenied", err)
	}
	if plans.saved != nil {
		t.Error("schedule persisted despite denial")
	}
}

func TestScheduleProjectActivityLimit(t *testing.T) {
	catalog, plans, task := planningFixture()
	plans.items = append(plans.items, model.BudgetItem{
		ID: uuid.New(), ProjectID: plans.project.ID, TaskID: task.ID, Quantity: 10,
	})
	cfg := testConfig()
	cfg.Planning.MaxActivities = 1
	svc := NewPlanningService(catalog, plans, stubExcel{}, cfg, zerolog.Nop())

	_, err := svc.ScheduleProject(context.Background(), ScheduleProjectInput{
		ProjectID: plans.project.ID,
		Principal: engineerPrincipal(),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestScheduleProjectFallsBackToConfiguredWeekdays(t *testing.T) {
	catalog, plans, _ := planningFixture()
	plans.project.WorkingWeekdays = nil
	svc := NewPlanningService(catalog, plans, stubExcel{}, testConfig(), zerolog.Nop())

	result, err := svc.ScheduleProject(context.Background(), ScheduleProjectInput{
		ProjectID: plans.project.ID,
		Principal: engineerPrincipal(),
	})
	if err != nil {
		t.Fatalf("ScheduleProject: %v", err)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("Scheduled = %d activities, want 1", len(result.Scheduled))
	}
}

func TestExportBudget(t *testing.T) {
	catalog, plans, _ := planningFixture()
	svc := NewPlanningService(catalog, plans, stubExcel{}, testConfig(), zerolog.Nop())

	result, err := svc.ExportBudget(context.Background(), plans.project.ID, engineerPrincipal())
	if err != nil {
		t.Fatalf("ExportBudget: %v", err)
	}
	if !strings.HasPrefix(result.FileName, "budget-") || !strings.HasSuffix(result.FileName, ".xlsx") {
		t.Errorf("FileName = %q", result.FileName)
	}
	if len(result.Content) == 0 {
		t.Error("empty export content")
	}

	sub := model.Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: model.RoleSubcontractor}
	if _, err := svc.ExportBudget(context.Background(), plans.project.ID, sub); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("subcontractor error = %v, want ErrPermissionDenied", err)
	}
}
