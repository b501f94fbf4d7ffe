// Package engine holds the calculation core of the planning module: unit
// price analysis, duration and calendar math, forward scheduling and
// certification amounts. Everything in the package is pure computation over
// caller-supplied snapshots; nothing here touches the database or the clock.
package engine

import (
	"errors"
	"time"
)

// ErrUnschedulableCalendar is returned when a calendar defines no working
// weekdays at all. Advancing over such a calendar would never terminate, so
// construction fails instead.
var ErrUnschedulableCalendar = errors.New("calendar has no working weekdays")

const dateKeyLayout = "2006-01-02"

// Calendar answers which days are workable: a set of working weekdays minus
// explicit holiday dates.
type Calendar struct {
	workingWeekdays map[time.Weekday]bool
	holidays        map[string]bool
}

// NewCalendar builds a calendar from the given working weekdays and holiday
// dates. At least one working weekday is required.
func NewCalendar(workingWeekdays []time.Weekday, holidays []time.Time) (*Calendar, error) {
	weekdays := make(map[time.Weekday]bool, len(workingWeekdays))
	for _, wd := range workingWeekdays {
		weekdays[wd] = true
	}
	if len(weekdays) == 0 {
		return nil, ErrUnschedulableCalendar
	}

	holidaySet := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidaySet[DateOnly(h).Format(dateKeyLayout)] = true
	}

	return &Calendar{
		workingWeekdays: weekdays,
		holidays:        holidaySet,
	}, nil
}

// DefaultCalendar is Monday through Friday with no holidays.
func DefaultCalendar() *Calendar {
	cal, _ := NewCalendar([]time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	}, nil)
	return cal
}

// IsWorkingDay reports whether t falls on a working weekday that is not a
// holiday.
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	day := DateOnly(t)
	if !c.workingWeekdays[day.Weekday()] {
		return false
	}
	return !c.holidays[day.Format(dateKeyLayout)]
}

// Advance returns the end date of an activity starting at start and lasting
// durationDays working days, counting the start day as day 1. Durations
// below 1 are read as 1.
//
// If start is not a working day the count begins on the next working day.
// The caller's recorded start date is not adjusted; only the returned end
// date reflects the shift.
func (c *Calendar) Advance(start time.Time, durationDays int) time.Time {
	if durationDays < 1 {
		durationDays = 1
	}

	day := c.nextWorkingDayFrom(DateOnly(start))
	for i := 1; i < durationDays; i++ {
		day = c.nextWorkingDayFrom(day.AddDate(0, 0, 1))
	}
	return day
}

func (c *Calendar) nextWorkingDayFrom(day time.Time) time.Time {
	for !c.IsWorkingDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
