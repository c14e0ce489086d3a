package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/liftcare/internal/model"
)

const (
	pageWidth   = 267.0
	maxColWidth = 90.0
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(safeValue(report.Title)), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, section := range report.Sections {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, tr(safeValue(section.Name)), "", 1, "L", false, 0, "")

		widths := columnWidths(len(section.Headers))
		drawTableRow(pdf, g.fontName, translate(tr, section.Headers), widths, true)
		for _, row := range section.Rows {
			drawTableRow(pdf, g.fontName, translate(tr, row), widths, false)
		}
		if len(section.Rows) == 0 {
			pdf.SetFont(g.fontName, "", 10)
			pdf.CellFormat(0, 8, "No data for this period.", "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, width := range widths {
		value := ""
		if i < len(cols) {
			value = cols[i]
		}
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(width, 8, value, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func columnWidths(n int) []float64 {
	if n == 0 {
		return nil
	}
	width := pageWidth / float64(n)
	if width > maxColWidth {
		width = maxColWidth
	}
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = width
	}
	return widths
}

func translate(tr func(string) string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = tr(v)
	}
	return out
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
