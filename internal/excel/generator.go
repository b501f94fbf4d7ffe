package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(export model.BudgetExport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Resumen"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, export); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, chapter := range chapterOrder(export.Rows) {
		sheetName := buildSheetName(chapterLabel(chapter), usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeChapter(file, sheetName, export, chapter); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, export model.BudgetExport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Obra")
	set("B1", export.Project.Name)
	set("A2", "Fecha de inicio")
	set("B2", formatDate(export.Project.StartDate))
	set("A3", "Generado")
	set("B3", formatDateTime(export.GeneratedAt))
	set("A4", "Presupuesto total")
	set("B4", formatAmount(export.TotalBudget))
	set("A5", "Partidas sin programar")
	set("B5", export.Unresolved)
	set("A6", "Referencias faltantes")
	set("B6", export.MissingRefs)

	tableRow := 8
	set(fmt.Sprintf("A%d", tableRow), "Capítulo")
	set(fmt.Sprintf("B%d", tableRow), "Partidas")
	set(fmt.Sprintf("C%d", tableRow), "Importe")

	totals := map[string]float64{}
	counts := map[string]int{}
	for _, row := range export.Rows {
		totals[row.Chapter] += row.Total
		counts[row.Chapter]++
	}
	for i, chapter := range chapterOrder(export.Rows) {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), chapterLabel(chapter))
		set(fmt.Sprintf("B%d", row), counts[chapter])
		set(fmt.Sprintf("C%d", row), formatAmount(totals[chapter]))
	}

	_ = file.SetColWidth(sheet, "A", "A", 45)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	_ = file.SetColWidth(sheet, "C", "C", 16)
	return nil
}

func (g *Generator) writeChapter(file *excelize.File, sheet string, export model.BudgetExport, chapter string) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Obra")
	set("B1", export.Project.Name)
	set("A2", "Capítulo")
	set("B2", chapterLabel(chapter))

	tableRow := 4
	headers := []string{
		"Código",
		"Descripción",
		"Ud",
		"Cantidad",
		"Materiales",
		"Equipos",
		"Mano de obra",
		"Costes fijos",
		"Precio unitario",
		"Importe",
		"Inicio",
		"Fin",
		"Días",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	written := 0
	for _, item := range export.Rows {
		if item.Chapter != chapter {
			continue
		}
		row := tableRow + 1 + written
		written++

		set(fmt.Sprintf("A%d", row), item.Code)
		set(fmt.Sprintf("B%d", row), item.Description)
		set(fmt.Sprintf("C%d", row), item.Unit)
		set(fmt.Sprintf("D%d", row), item.Quantity)
		set(fmt.Sprintf("E%d", row), formatAmount(item.MaterialCost))
		set(fmt.Sprintf("F%d", row), formatAmount(item.ToolCost))
		set(fmt.Sprintf("G%d", row), formatAmount(item.LaborCost))
		set(fmt.Sprintf("H%d", row), formatAmount(item.FixedCost))
		set(fmt.Sprintf("I%d", row), formatAmount(item.UnitPrice))
		set(fmt.Sprintf("J%d", row), formatAmount(item.Total))
		if item.Unresolved {
			set(fmt.Sprintf("K%d", row), "sin programar")
			set(fmt.Sprintf("L%d", row), "")
			set(fmt.Sprintf("M%d", row), "")
			continue
		}
		set(fmt.Sprintf("K%d", row), formatDate(item.Start))
		set(fmt.Sprintf("L%d", row), formatDate(item.End))
		set(fmt.Sprintf("M%d", row), item.Duration)
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 48)
	_ = file.SetColWidth(sheet, "C", "D", 10)
	_ = file.SetColWidth(sheet, "E", "J", 14)
	_ = file.SetColWidth(sheet, "K", "L", 12)
	_ = file.SetColWidth(sheet, "M", "M", 8)
	return nil
}

func chapterOrder(rows []model.BudgetExportRow) []string {
	var order []string
	seen := map[string]bool{}
	for _, row := range rows {
		if !seen[row.Chapter] {
			seen[row.Chapter] = true
			order = append(order, row.Chapter)
		}
	}
	return order
}

func chapterLabel(chapter string) string {
	if strings.TrimSpace(chapter) == "" {
		return "Sin capítulo"
	}
	return chapter
}

func buildSheetName(base string, used map[string]struct{}) string {
	base = sanitizeSheetName(base)
	if len(base) > 31 {
		base = base[:31]
	}

	candidate := base
	counter := 2
	for {
		if _, exists := used[candidate]; !exists {
			return candidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		candidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Hoja"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Hoja"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
