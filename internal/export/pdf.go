package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

var (
	columnWidths = []float64{40, 25, 18, 15, 25, 20, 20}
	columnAlign  = []string{"L", "L", "R", "L", "L", "L", "L"}
	accent       = [3]int{38, 106, 106}
)

const (
	rowHeight    = 6
	headerHeight = 7
	leftMargin   = 14
)

// WritePDF renders r as an A4 report.
func WritePDF(w io.Writer, r Report) error {
	pdf := buildPDF(r)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func buildPDF(r Report) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(leftMargin, 15, leftMargin)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	half := (pageW - 2*leftMargin) / 2

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(half, 5, ReportFooter, "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(0, 10, ReportTitle, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, "Generated on: "+r.GeneratedOn, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Total Active Subscriptions: %d", r.ActiveCount), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Estimated Monthly Total: "+tr(r.MonthlyTotal), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	tableHeader(pdf)

	_, pageH := pdf.GetPageSize()
	_, bottom := pdf.GetAutoPageBreak()

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range r.Rows {
		if pdf.GetY()+rowHeight > pageH-bottom {
			pdf.AddPage()
			tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 8)
			pdf.SetTextColor(0, 0, 0)
		}
		for i, cell := range row.Cells() {
			text := tr(fit(pdf, cell, columnWidths[i]-2))
			pdf.CellFormat(columnWidths[i], rowHeight, text, "1", 0, columnAlign[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.SetTextColor(255, 255, 255)
	for i, col := range Columns {
		pdf.CellFormat(columnWidths[i], headerHeight, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

// fit shortens s with a trailing ellipsis until it fits width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if candidate := string(runes) + "..."; pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}
