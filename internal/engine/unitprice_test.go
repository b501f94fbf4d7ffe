package engine

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

var (
	cementID   = uuid.New()
	sandID     = uuid.New()
	mixerID    = uuid.New()
	masonID    = uuid.New()
	helperID   = uuid.New()
	crewBasicID = uuid.New()
)

func testPriceBook() PriceBook {
	return PriceBook{
		Materials: map[uuid.UUID]model.Material{
			cementID: {ID: cementID, Name: "Cemento", Unit: "kg", UnitCost: 0.5},
			sandID:   {ID: sandID, Name: "Arena", Unit: "m3", UnitCost: 20},
		},
		Tools: map[uuid.UUID]model.Tool{
			mixerID: {ID: mixerID, Name: "Hormigonera", HourlyCost: 12},
		},
		LaborCategories: map[uuid.UUID]model.LaborCategory{
			// 10 * (1 + (20+10)/100) = 13 effective
			masonID: {ID: masonID, Name: "Oficial", BaseHourlyRate: 10, SocialChargesPct: 20, InsurancePct: 10},
			// 20 effective, no loads
			helperID: {ID: helperID, Name: "Ayudante", BaseHourlyRate: 20},
		},
		Crews: map[uuid.UUID]model.Crew{
			// 13*2 + 20*1*0.5 = 36 per hour
			crewBasicID: {ID: crewBasicID, Name: "Cuadrilla tipo", Members: []model.CrewMember{
				{LaborCategoryID: masonID, Count: 2, ParticipationPct: 100},
				{LaborCategoryID: helperID, Count: 1, ParticipationPct: 50},
			}},
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeUnitPriceMaterials(t *testing.T) {
	tests := []struct {
		name   string
		rows   []model.MaterialUsage
		expect float64
	}{
		{
			"zero waste is exact unit cost times quantity",
			[]model.MaterialUsage{{MaterialID: cementID, NetQuantity: 8, WastePct: 0}},
			4,
		},
		{
			"waste percentage inflates the net quantity",
			[]model.MaterialUsage{{MaterialID: sandID, NetQuantity: 2, WastePct: 10}},
			44,
		},
		{
			"rows accumulate",
			[]model.MaterialUsage{
				{MaterialID: cementID, NetQuantity: 8},
				{MaterialID: sandID, NetQuantity: 2, WastePct: 10},
			},
			48,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := model.Task{Unit: "m2", Materials: tt.rows}
			got := ComputeUnitPrice(task, testPriceBook(), DefaultWorkdayHours)
			if !almostEqual(got.MaterialCost, tt.expect) {
				t.Errorf("MaterialCost = %v, want %v", got.MaterialCost, tt.expect)
			}
			if len(got.MissingRefs) != 0 {
				t.Errorf("MissingRefs = %v, want none", got.MissingRefs)
			}
		})
	}
}

func TestComputeUnitPriceMissingReferences(t *testing.T) {
	ghostMaterial := uuid.New()
	ghostTool := uuid.New()
	ghostCrew := uuid.New()

	task := model.Task{
		Unit:       "m2",
		DailyYield: 10,
		Materials: []model.MaterialUsage{
			{MaterialID: cementID, NetQuantity: 8},
			{MaterialID: ghostMaterial, NetQuantity: 100},
		},
		Tools: []model.ToolUsage{{ToolID: ghostTool, HoursPerUnit: 5}},
		Crews: []model.CrewUsage{{CrewID: ghostCrew, Crews: 1}},
	}

	got := ComputeUnitPrice(task, testPriceBook(), DefaultWorkdayHours)

	// Missing rows contribute zero, the rest of the computation stands.
	if !almostEqual(got.MaterialCost, 4) {
		t.Errorf("MaterialCost = %v, want 4", got.MaterialCost)
	}
	if got.ToolCost != 0 {
		t.Errorf("ToolCost = %v, want 0", got.ToolCost)
	}
	if got.LaborCost != 0 {
		t.Errorf("LaborCost = %v, want 0", got.LaborCost)
	}

	if len(got.MissingRefs) != 3 {
		t.Fatalf("MissingRefs = %v, want 3 entries", got.MissingRefs)
	}
	kinds := map[RefKind]uuid.UUID{}
	for _, ref := range got.MissingRefs {
		kinds[ref.Kind] = ref.ID
	}
	if kinds[RefMaterial] != ghostMaterial || kinds[RefTool] != ghostTool || kinds[RefCrew] != ghostCrew {
		t.Errorf("MissingRefs = %v, want material/tool/crew ghosts", got.MissingRefs)
	}
}

func TestComputeUnitPriceLaborPolicy(t *testing.T) {
	crewRow := []model.CrewUsage{{CrewID: crewBasicID, Crews: 1}}

	tests := []struct {
		name   string
		task   model.Task
		expect float64
	}{
		{
			"no crew rows keeps manual labor as-is",
			model.Task{ManualLaborCost: 25, DailyYield: 10},
			25,
		},
		{
			"crew derived cost from hourly composition",
			// 36/hour * 9 h * 1 crew / 9 units per day = 36 per unit
			model.Task{DailyYield: 9, Crews: crewRow},
			36,
		},
		{
			"manual labor is added on top of derived, not replaced",
			model.Task{DailyYield: 9, ManualLaborCost: 4, Crews: crewRow},
			40,
		},
		{
			"non-positive yield zeroes the derived part",
			model.Task{DailyYield: 0, ManualLaborCost: 4, Crews: crewRow},
			4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeUnitPrice(tt.task, testPriceBook(), DefaultWorkdayHours)
			if !almostEqual(got.LaborCost, tt.expect) {
				t.Errorf("LaborCost = %v, want %v", got.LaborCost, tt.expect)
			}
		})
	}
}

func TestComputeUnitPriceTotal(t *testing.T) {
	task := model.Task{
		Unit:            "m2",
		DailyYield:      9,
		ManualLaborCost: 4,
		FixedCost:       1.5,
		Materials:       []model.MaterialUsage{{MaterialID: cementID, NetQuantity: 8}},
		Tools:           []model.ToolUsage{{ToolID: mixerID, HoursPerUnit: 0.25}},
		Crews:           []model.CrewUsage{{CrewID: crewBasicID, Crews: 1}},
	}

	got := ComputeUnitPrice(task, testPriceBook(), DefaultWorkdayHours)

	if !almostEqual(got.MaterialCost, 4) {
		t.Errorf("MaterialCost = %v, want 4", got.MaterialCost)
	}
	if !almostEqual(got.ToolCost, 3) {
		t.Errorf("ToolCost = %v, want 3", got.ToolCost)
	}
	if !almostEqual(got.LaborCost, 40) {
		t.Errorf("LaborCost = %v, want 40", got.LaborCost)
	}
	if !almostEqual(got.FixedCost, 1.5) {
		t.Errorf("FixedCost = %v, want 1.5", got.FixedCost)
	}
	if !almostEqual(got.Total, 48.5) {
		t.Errorf("Total = %v, want 48.5", got.Total)
	}
}

func TestComputeUnitPriceRounding(t *testing.T) {
	oddID := uuid.New()
	book := testPriceBook()
	book.Materials[oddID] = model.Material{ID: oddID, UnitCost: 1.0 / 3.0}

	task := model.Task{Materials: []model.MaterialUsage{{MaterialID: oddID, NetQuantity: 1}}}
	got := ComputeUnitPrice(task, book, DefaultWorkdayHours)
	if got.MaterialCost != 0.33 {
		t.Errorf("MaterialCost = %v, want 0.33", got.MaterialCost)
	}
	if got.Total != 0.33 {
		t.Errorf("Total = %v, want 0.33", got.Total)
	}
}

func TestCrewHourlyCostDefaultsParticipation(t *testing.T) {
	book := testPriceBook()
	crew := model.Crew{Members: []model.CrewMember{
		{LaborCategoryID: helperID, Count: 1}, // participation unset -> 100
	}}
	if got := book.CrewHourlyCost(crew); !almostEqual(got, 20) {
		t.Errorf("CrewHourlyCost = %v, want 20", got)
	}
}
