package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(doc model.CertificationDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Certificación de obra"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Certificación Nº %s de %s", doc.Certification.Number, formatDate(doc.Certification.CreatedAt))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contrato %s (%s — %s)", doc.Contract.Name, formatDate(doc.Contract.StartAt), formatDate(doc.Contract.EndAt))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addOrgBlock(pdf, tr, g.fontName, "Comitente", doc.Contract.Customer)
	pdf.Ln(2)
	addOrgBlock(pdf, tr, g.fontName, "Subcontratista", doc.Contract.Subcontractor)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Período certificado"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("del %s al %s", formatDate(doc.Certification.PeriodStart), formatDate(doc.Certification.PeriodEnd))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Detalle por ítem"), "", 1, "L", false, 0, "")

	headers := []string{"Ítem", "Cantidad", "Precio unitario", "% período", "Importe"}
	colWidths := []float64{70, 25, 35, 20, 30}
	drawTableRow(pdf, tr, g.fontName, headers, colWidths, true)

	itemsByID := make(map[string]model.ContractItem, len(doc.Contract.Items))
	for _, item := range doc.Contract.Items {
		itemsByID[item.ID.String()] = item
	}
	for _, line := range doc.Certification.Lines {
		item := itemsByID[line.ContractItemID.String()]
		description := item.Description
		if strings.TrimSpace(description) == "" {
			description = line.ContractItemID.String()
		}
		row := []string{
			description,
			formatAmount(item.Quantity, 2),
			formatAmount(item.AgreedUnitPrice, 2),
			formatAmount(line.PercentThisPeriod, 2),
			formatAmount(line.Amount, 2),
		}
		drawTableRow(pdf, tr, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Importe bruto: %s", formatAmount(doc.Certification.GrossAmount, 2))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Fondo de reparo (%.2f%%): %s", doc.Certification.RetentionPct, formatAmount(doc.Certification.RetentionAmount, 2))), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Neto a pagar: %s", formatAmount(doc.Certification.NetAmount, 2))), "", 1, "R", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	paidAfter := doc.PaidBefore + doc.Certification.NetAmount
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Certificado anterior: %s — acumulado con esta certificación: %s",
		formatAmount(doc.PaidBefore, 2),
		formatAmount(paidAfter, 2),
	)), "", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Firmas"), "", 1, "L", false, 0, "")

	signatureBlock(pdf, tr, g.fontName, "Comitente", doc.Contract.Customer.HeadFullName)
	signatureBlock(pdf, tr, g.fontName, "Subcontratista", doc.Contract.Subcontractor.HeadFullName)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addOrgBlock(pdf *gofpdf.Fpdf, tr func(string) string, fontName, title string, org model.Organization) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		org.Name,
		fmt.Sprintf("CUIT: %s", safeValue(org.TaxID)),
		fmt.Sprintf("Domicilio: %s", safeValue(org.Address)),
		fmt.Sprintf("Teléfono: %s", safeValue(org.Phone)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, tr func(string) string, fontName, label, head string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(head))), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006")
}
