package model

import "github.com/google/uuid"

// MaterialUsage is one row of a task's material consumption table:
// net quantity per produced unit plus a waste percentage on top.
type MaterialUsage struct {
	MaterialID  uuid.UUID
	NetQuantity float64
	WastePct    float64
}

// ToolUsage is one row of a task's equipment consumption table.
type ToolUsage struct {
	ToolID       uuid.UUID
	HoursPerUnit float64
}

// CrewUsage assigns a number of crews to the task. Fractions are allowed
// (half a crew shared across two tasks).
type CrewUsage struct {
	CrewID uuid.UUID
	Crews  float64
}

// Task is a unit-price record (APU): one construction activity type with its
// consumption tables and productivity data. DailyYield is the output of one
// reference crew configuration per working day, in Unit.
//
// ManualLaborCost is a flat per-unit labor amount entered by hand. When the
// task also carries crew rows, the crew-derived cost is added on top of the
// manual amount, never instead of it.
type Task struct {
	ID              uuid.UUID
	Code            string
	Name            string
	Unit            string
	DailyYield      float64
	ManHoursPerUnit float64
	ManualLaborCost float64
	FixedCost       float64
	Materials       []MaterialUsage
	Tools           []ToolUsage
	Crews           []CrewUsage
}
