package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

// projectMonday is 2026-01-05, a Monday.
var projectMonday = date(2026, time.January, 5)

func fsDep(pred uuid.UUID) []model.Dependency {
	return []model.Dependency{{PredecessorID: pred, Type: model.DependencyFinishToStart}}
}

func TestScheduleSingleItemEndToEnd(t *testing.T) {
	// dailyYield=10, quantity=100, two crews -> ceil(100/20) = 5 days;
	// Monday start + 5 working days = the same week's Friday.
	taskID := uuid.New()
	itemID := uuid.New()

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Calendar:     DefaultCalendar(),
		Items: []model.BudgetItem{
			{ID: itemID, TaskID: taskID, Quantity: 100, CrewsAssigned: 2},
		},
		Tasks: map[uuid.UUID]model.Task{
			taskID: {ID: taskID, Unit: "m2", DailyYield: 10},
		},
	})

	if len(result.Unresolved) != 0 {
		t.Fatalf("Unresolved = %v, want none", result.Unresolved)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("Scheduled = %d items, want 1", len(result.Scheduled))
	}
	got := result.Scheduled[0]
	if got.Duration != 5 {
		t.Errorf("Duration = %d, want 5", got.Duration)
	}
	if !got.Start.Equal(projectMonday) {
		t.Errorf("Start = %s, want %s", got.Start, projectMonday)
	}
	if friday := date(2026, time.January, 9); !got.End.Equal(friday) {
		t.Errorf("End = %s, want %s", got.End, friday)
	}
}

func TestScheduleChainRecordsWeekendStart(t *testing.T) {
	taskID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Calendar:     DefaultCalendar(),
		Items: []model.BudgetItem{
			{ID: first, TaskID: taskID, ManualDuration: 5},
			{ID: second, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(first)},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID, DailyYield: 1}},
	})

	if len(result.Scheduled) != 2 {
		t.Fatalf("Scheduled = %d items, want 2", len(result.Scheduled))
	}

	byID := map[uuid.UUID]ScheduledActivity{}
	for _, s := range result.Scheduled {
		byID[s.ItemID] = s
	}

	// Predecessor ends Friday Jan 9. The successor's recorded start is the
	// next calendar day (Saturday) even though work resumes Monday.
	if end := date(2026, time.January, 9); !byID[first].End.Equal(end) {
		t.Errorf("first.End = %s, want %s", byID[first].End, end)
	}
	if saturday := date(2026, time.January, 10); !byID[second].Start.Equal(saturday) {
		t.Errorf("second.Start = %s, want %s", byID[second].Start, saturday)
	}
	if monday := date(2026, time.January, 12); !byID[second].End.Equal(monday) {
		t.Errorf("second.End = %s, want %s", byID[second].End, monday)
	}
}

func TestScheduleManualDurationOverride(t *testing.T) {
	taskID := uuid.New()
	itemID := uuid.New()

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: itemID, TaskID: taskID, Quantity: 100, ManualDuration: 2},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID, DailyYield: 10}},
	})

	if result.Scheduled[0].Duration != 2 {
		t.Errorf("Duration = %d, want manual override 2", result.Scheduled[0].Duration)
	}
}

func TestScheduleStartOverride(t *testing.T) {
	taskID := uuid.New()
	itemID := uuid.New()
	override := date(2026, time.February, 2)

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: itemID, TaskID: taskID, ManualDuration: 1, StartOverride: &override},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	if !result.Scheduled[0].Start.Equal(override) {
		t.Errorf("Start = %s, want override %s", result.Scheduled[0].Start, override)
	}
}

func TestScheduleClampsToProjectStart(t *testing.T) {
	taskID := uuid.New()
	early := uuid.New()
	successor := uuid.New()
	// Predecessor pinned well before the project start.
	override := date(2025, time.December, 1)

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: early, TaskID: taskID, ManualDuration: 1, StartOverride: &override},
			{ID: successor, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(early)},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	byID := map[uuid.UUID]ScheduledActivity{}
	for _, s := range result.Scheduled {
		byID[s.ItemID] = s
	}
	if !byID[successor].Start.Equal(projectMonday) {
		t.Errorf("successor.Start = %s, want clamp to project start %s", byID[successor].Start, projectMonday)
	}
}

func TestScheduleCycleLeavesBothUnresolved(t *testing.T) {
	taskID := uuid.New()
	a := uuid.New()
	b := uuid.New()

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: a, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(b)},
			{ID: b, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(a)},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	if len(result.Scheduled) != 0 {
		t.Errorf("Scheduled = %v, want none", result.Scheduled)
	}
	if len(result.Unresolved) != 2 {
		t.Errorf("Unresolved = %v, want both cycle members", result.Unresolved)
	}
}

func TestScheduleSelfReferenceNeverSchedules(t *testing.T) {
	taskID := uuid.New()
	selfish := uuid.New()
	dependent := uuid.New()

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: selfish, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(selfish)},
			{ID: dependent, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(selfish)},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	if len(result.Scheduled) != 0 {
		t.Errorf("Scheduled = %v, want none", result.Scheduled)
	}
	if len(result.Unresolved) != 2 {
		t.Errorf("Unresolved = %v, want self-reference and its dependent", result.Unresolved)
	}
}

func TestScheduleDanglingPredecessorUnresolved(t *testing.T) {
	taskID := uuid.New()
	orphan := uuid.New()

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: orphan, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(uuid.New())},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	if len(result.Unresolved) != 1 || result.Unresolved[0] != orphan {
		t.Errorf("Unresolved = %v, want [%s]", result.Unresolved, orphan)
	}
}

func TestScheduleOtherDependencyTypesTreatedAsFinishToStart(t *testing.T) {
	taskID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: first, TaskID: taskID, ManualDuration: 2},
			{ID: second, TaskID: taskID, ManualDuration: 1, Predecessors: []model.Dependency{
				{PredecessorID: first, Type: model.DependencyStartToStart},
			}},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	byID := map[uuid.UUID]ScheduledActivity{}
	for _, s := range result.Scheduled {
		byID[s.ItemID] = s
	}
	// SS is computed as FS: the successor still waits for the predecessor end.
	if wednesday := date(2026, time.January, 7); !byID[second].Start.Equal(wednesday) {
		t.Errorf("second.Start = %s, want %s", byID[second].Start, wednesday)
	}
}

func TestScheduleOutputSortedByStartThenInputOrder(t *testing.T) {
	taskID := uuid.New()
	late := uuid.New()
	early := uuid.New()
	sameDay := uuid.New()
	lateStart := date(2026, time.January, 12)

	result := Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items: []model.BudgetItem{
			{ID: late, TaskID: taskID, ManualDuration: 1, StartOverride: &lateStart},
			{ID: early, TaskID: taskID, ManualDuration: 1},
			{ID: sameDay, TaskID: taskID, ManualDuration: 3},
		},
		Tasks: map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	want := []uuid.UUID{early, sameDay, late}
	got := make([]uuid.UUID, 0, len(result.Scheduled))
	for _, s := range result.Scheduled {
		got = append(got, s.ItemID)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestScheduleDeterministic(t *testing.T) {
	taskID := uuid.New()
	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
	}

	items := []model.BudgetItem{
		{ID: ids[0], TaskID: taskID, Quantity: 40, CrewsAssigned: 1},
		{ID: ids[1], TaskID: taskID, Quantity: 20, Predecessors: fsDep(ids[0])},
		{ID: ids[2], TaskID: taskID, Quantity: 30, Predecessors: fsDep(ids[0])},
		{ID: ids[3], TaskID: taskID, Quantity: 10, Predecessors: fsDep(ids[2])},
		{ID: ids[4], TaskID: taskID, ManualDuration: 4},
		{ID: ids[5], TaskID: taskID, Quantity: 25, Predecessors: fsDep(ids[4])},
	}
	input := ScheduleInput{
		ProjectStart: projectMonday,
		Calendar:     DefaultCalendar(),
		Items:        items,
		Tasks:        map[uuid.UUID]model.Task{taskID: {ID: taskID, DailyYield: 10}},
	}

	first := Schedule(input)
	second := Schedule(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	taskID := uuid.New()
	a := uuid.New()
	b := uuid.New()
	items := []model.BudgetItem{
		{ID: a, TaskID: taskID, ManualDuration: 2},
		{ID: b, TaskID: taskID, ManualDuration: 1, Predecessors: fsDep(a)},
	}
	snapshot := make([]model.BudgetItem, len(items))
	copy(snapshot, items)

	Schedule(ScheduleInput{
		ProjectStart: projectMonday,
		Items:        items,
		Tasks:        map[uuid.UUID]model.Task{taskID: {ID: taskID}},
	})

	if !reflect.DeepEqual(items, snapshot) {
		t.Errorf("input items mutated: %+v", items)
	}
}
