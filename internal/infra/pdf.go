package infra

// pdf.go renders report.Document as a single A4 page using go-pdf/fpdf:
//   - title, store name, period and generation stamp
//   - KPI cards in rows of three
//   - one key/value list per section
//   - footer with the automatic-generation notice

import (
	"bytes"
	"fmt"

	"github.com/leodymann/wi-api/internal/report"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin   = 18.0
	kpiPerRow   = 3
	kpiCardH    = 18.0
	kpiCardGap  = 6.0
	sectionRowH = 6.0
)

// RenderReportPDF returns the PDF bytes for doc.
func RenderReportPDF(doc *report.Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW/2, 7, tr(doc.Title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentW/2, 7, tr(doc.StoreName), "", 1, "R", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(contentW/2, 6, tr("Período: "+doc.PeriodLabel), "", 0, "L", false, 0, "")
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentW/2, 6, tr("Gerado em: "+doc.GeneratedAt), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	// ── KPI cards ────────────────────────────────────────────────────────────
	cardW := (contentW - kpiCardGap*(kpiPerRow-1)) / kpiPerRow
	for i, kpi := range doc.KPIs {
		col := i % kpiPerRow
		if col == 0 && i > 0 {
			pdf.Ln(kpiCardH + 4)
		}
		x := pdfMargin + float64(col)*(cardW+kpiCardGap)
		y := pdf.GetY()
		pdf.SetDrawColor(200, 200, 200)
		pdf.Rect(x, y, cardW, kpiCardH, "D")

		pdf.SetXY(x+3, y+3)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(cardW-6, 4, tr(kpi.Label), "", 0, "L", false, 0, "")

		pdf.SetXY(x+3, y+9)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(cardW-6, 6, tr(kpi.Value), "", 0, "L", false, 0, "")
		pdf.SetXY(pdfMargin, y)
	}
	if len(doc.KPIs) > 0 {
		pdf.Ln(kpiCardH + 8)
	}

	// ── Sections ─────────────────────────────────────────────────────────────
	for _, sec := range doc.Sections {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, tr(sec.Title), "B", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 9)
		for _, row := range sec.Rows {
			pdf.CellFormat(contentW*0.65, sectionRowH, tr(row.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.35, sectionRowH, tr(row.Value), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetXY(pdfMargin, pageH-12)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentW/2, 4, tr(doc.Footer), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 4, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render %s: %w", doc.Filename, err)
	}
	return buf.Bytes(), nil
}
