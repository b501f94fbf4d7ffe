package model

import "time"

// BudgetExportRow is one budget line prepared for workbook export: the unit
// price breakdown next to the scheduled dates.
type BudgetExportRow struct {
	Chapter      string
	Code         string
	Description  string
	Unit         string
	Quantity     float64
	MaterialCost float64
	ToolCost     float64
	LaborCost    float64
	FixedCost    float64
	UnitPrice    float64
	Total        float64
	Start        time.Time
	End          time.Time
	Duration     int
	Unresolved   bool
}

// BudgetExport bundles everything the workbook generator needs.
type BudgetExport struct {
	Project     Project
	GeneratedAt time.Time
	Rows        []BudgetExportRow
	TotalBudget float64
	Unresolved  int
	MissingRefs int
}
