package engine

import (
	"math"

	"github.com/google/uuid"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

// DefaultWorkdayHours is the workday length used when the project does not
// configure one.
const DefaultWorkdayHours = 9.0

// PriceBook is the read-only reference snapshot a unit price computation runs
// against. The surrounding application indexes the catalog tables by id and
// hands the maps in; the engine never loads them itself.
type PriceBook struct {
	Materials       map[uuid.UUID]model.Material
	LaborCategories map[uuid.UUID]model.LaborCategory
	Tools           map[uuid.UUID]model.Tool
	Crews           map[uuid.UUID]model.Crew
}

// RefKind names the catalog a missing reference belongs to.
type RefKind string

const (
	RefMaterial      RefKind = "material"
	RefTool          RefKind = "tool"
	RefCrew          RefKind = "crew"
	RefLaborCategory RefKind = "labor_category"
)

// MissingRef identifies a consumption row whose catalog entry was not found.
// The row contributes zero cost; the reference is surfaced so callers can
// report the data-quality gap.
type MissingRef struct {
	Kind RefKind
	ID   uuid.UUID
}

// UnitPrice is the APU breakdown for one unit of a task.
type UnitPrice struct {
	MaterialCost float64
	ToolCost     float64
	LaborCost    float64
	FixedCost    float64
	Total        float64
	MissingRefs  []MissingRef
}

// ComputeUnitPrice calculates the material, tool, labor and fixed cost
// components of a task per unit of output. Consumption rows that reference a
// missing catalog entry contribute nothing and are collected in MissingRefs.
// All monetary components are rounded to 2 decimals.
func ComputeUnitPrice(task model.Task, book PriceBook, workdayHours float64) UnitPrice {
	if workdayHours <= 0 {
		workdayHours = DefaultWorkdayHours
	}

	var result UnitPrice

	for _, row := range task.Materials {
		material, ok := book.Materials[row.MaterialID]
		if !ok {
			result.MissingRefs = append(result.MissingRefs, MissingRef{Kind: RefMaterial, ID: row.MaterialID})
			continue
		}
		result.MaterialCost += material.UnitCost * row.NetQuantity * (1 + row.WastePct/100)
	}

	for _, row := range task.Tools {
		tool, ok := book.Tools[row.ToolID]
		if !ok {
			result.MissingRefs = append(result.MissingRefs, MissingRef{Kind: RefTool, ID: row.ToolID})
			continue
		}
		result.ToolCost += tool.HourlyCost * row.HoursPerUnit
	}

	derived := 0.0
	for _, row := range task.Crews {
		crew, ok := book.Crews[row.CrewID]
		if !ok {
			result.MissingRefs = append(result.MissingRefs, MissingRef{Kind: RefCrew, ID: row.CrewID})
			continue
		}
		if task.DailyYield <= 0 {
			continue
		}
		hourly, missing := book.crewHourlyCost(crew)
		result.MissingRefs = append(result.MissingRefs, missing...)
		derived += hourly * workdayHours * row.Crews / task.DailyYield
	}

	result.LaborCost = laborCostPolicy(derived, task.ManualLaborCost)
	result.FixedCost = task.FixedCost

	result.MaterialCost = round2(result.MaterialCost)
	result.ToolCost = round2(result.ToolCost)
	result.LaborCost = round2(result.LaborCost)
	result.FixedCost = round2(result.FixedCost)
	result.Total = round2(result.MaterialCost + result.ToolCost + result.LaborCost + result.FixedCost)

	return result
}

// laborCostPolicy combines crew-derived and manually entered labor cost.
// Whenever any crew-derived amount exists the manual amount is ADDED on top,
// never replaced; downstream budget and certification totals depend on this
// exact arithmetic, so any change here must be deliberate.
func laborCostPolicy(derived, manual float64) float64 {
	if derived > 0 {
		return derived + manual
	}
	return manual
}

// CrewHourlyCost is the cost of one hour of the crew: the loaded hourly rate
// of each member category times headcount and participation.
func (b PriceBook) CrewHourlyCost(crew model.Crew) float64 {
	cost, _ := b.crewHourlyCost(crew)
	return cost
}

func (b PriceBook) crewHourlyCost(crew model.Crew) (float64, []MissingRef) {
	var missing []MissingRef
	total := 0.0
	for _, member := range crew.Members {
		category, ok := b.LaborCategories[member.LaborCategoryID]
		if !ok {
			missing = append(missing, MissingRef{Kind: RefLaborCategory, ID: member.LaborCategoryID})
			continue
		}
		participation := member.ParticipationPct
		if participation <= 0 {
			participation = 100
		}
		total += category.EffectiveHourlyRate() * member.Count * (participation / 100)
	}
	return total, missing
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
