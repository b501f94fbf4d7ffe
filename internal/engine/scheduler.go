package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

// ScheduleInput is the in-memory snapshot the scheduler works on. The
// scheduler never mutates it; rerunning with an identical snapshot yields an
// identical result.
type ScheduleInput struct {
	ProjectStart time.Time
	Calendar     *Calendar
	WorkdayHours float64
	Items        []model.BudgetItem
	Tasks        map[uuid.UUID]model.Task
}

// ScheduledActivity is one budget item with its computed dates.
type ScheduledActivity struct {
	ItemID   uuid.UUID
	TaskID   uuid.UUID
	Start    time.Time
	End      time.Time
	Duration int
}

// ScheduleResult is the forward schedule plus the items that could not be
// placed. Unresolved items (cyclic dependencies, predecessors outside the
// item set, self-references) are reported, not treated as an error: the rest
// of the schedule stands.
type ScheduleResult struct {
	Scheduled  []ScheduledActivity
	Unresolved []uuid.UUID
}

// Schedule computes start and end dates for every budget item, honoring
// predecessor completion over the working calendar.
//
// All dependency types are processed with finish-to-start semantics: a
// successor starts the calendar day after its latest predecessor ends,
// clamped to the project start. SS/FF/SF links and lag days are carried in
// the model but not given distinct treatment.
//
// Items are processed in topological order from an in-degree count, seeded
// and drained in input order so the result is deterministic. The final list
// is sorted by start date with input order breaking ties.
func Schedule(input ScheduleInput) ScheduleResult {
	cal := input.Calendar
	if cal == nil {
		cal = DefaultCalendar()
	}
	projectStart := DateOnly(input.ProjectStart)

	n := len(input.Items)
	index := make(map[uuid.UUID]int, n)
	for i, item := range input.Items {
		index[item.ID] = i
	}

	// A self-reference or a predecessor outside the item set can never be
	// satisfied; such items stay unscheduled and so does everything after
	// them.
	blocked := make([]bool, n)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i, item := range input.Items {
		seen := make(map[uuid.UUID]bool, len(item.Predecessors))
		for _, dep := range item.Predecessors {
			if seen[dep.PredecessorID] {
				continue
			}
			seen[dep.PredecessorID] = true

			if dep.PredecessorID == item.ID {
				blocked[i] = true
				continue
			}
			p, ok := index[dep.PredecessorID]
			if !ok {
				blocked[i] = true
				continue
			}
			indegree[i]++
			dependents[p] = append(dependents[p], i)
		}
	}

	queue := make([]int, 0, n)
	for i := range input.Items {
		if indegree[i] == 0 && !blocked[i] {
			queue = append(queue, i)
		}
	}

	done := make([]bool, n)
	ends := make([]time.Time, n)
	scheduled := make([]ScheduledActivity, 0, n)

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		item := input.Items[i]

		start := projectStart
		if len(item.Predecessors) == 0 {
			if item.StartOverride != nil {
				start = DateOnly(*item.StartOverride)
			}
		} else {
			latest := time.Time{}
			for _, dep := range item.Predecessors {
				p := index[dep.PredecessorID]
				candidate := ends[p].AddDate(0, 0, 1)
				if candidate.After(latest) {
					latest = candidate
				}
			}
			start = latest
			if start.Before(projectStart) {
				start = projectStart
			}
		}

		duration := item.ManualDuration
		if duration <= 0 {
			task := input.Tasks[item.TaskID]
			duration = ComputeDuration(item.Quantity, task.DailyYield, item.CrewsAssigned, item.EfficiencyFactor, item.AllowancePct)
		}

		end := cal.Advance(start, duration)

		done[i] = true
		ends[i] = end
		scheduled = append(scheduled, ScheduledActivity{
			ItemID:   item.ID,
			TaskID:   item.TaskID,
			Start:    start,
			End:      end,
			Duration: duration,
		})

		for _, d := range dependents[i] {
			indegree[d]--
			if indegree[d] == 0 && !blocked[d] {
				queue = append(queue, d)
			}
		}
	}

	var unresolved []uuid.UUID
	for i, item := range input.Items {
		if !done[i] {
			unresolved = append(unresolved, item.ID)
		}
	}

	order := make(map[uuid.UUID]int, n)
	for id, i := range index {
		order[id] = i
	}
	sort.SliceStable(scheduled, func(a, b int) bool {
		if !scheduled[a].Start.Equal(scheduled[b].Start) {
			return scheduled[a].Start.Before(scheduled[b].Start)
		}
		return order[scheduled[a].ItemID] < order[scheduled[b].ItemID]
	})

	return ScheduleResult{Scheduled: scheduled, Unresolved: unresolved}
}
