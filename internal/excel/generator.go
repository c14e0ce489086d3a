package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/liftcare/internal/model"
)

const maxSheetName = 31

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a summary sheet followed by one sheet per report section.
func (g *Generator) Generate(report model.Report) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Summary"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, summarySheet, report)

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, section := range report.Sections {
		sheetName := buildSheetName(section.Name, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeSection(file, sheetName, section); err != nil {
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

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.Report) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", report.Title)
	set("A2", "Type")
	set("B2", string(report.Type))
	set("A3", "Period start")
	set("B3", formatDate(report.PeriodStart))
	set("A4", "Period end")
	set("B4", formatDate(report.PeriodEnd))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Section")
	set(fmt.Sprintf("B%d", tableRow), "Rows")
	for i, section := range report.Sections {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), section.Name)
		set(fmt.Sprintf("B%d", row), len(section.Rows))
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 32)
}

func (g *Generator) writeSection(file *excelize.File, sheet string, section model.ReportSection) error {
	for i, header := range section.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = file.SetCellValue(sheet, cell, header)
	}
	for r, row := range section.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			_ = file.SetCellValue(sheet, cell, value)
		}
	}
	if len(section.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(section.Headers))
		if err != nil {
			return err
		}
		_ = file.SetColWidth(sheet, "A", last, 20)
	}
	return nil
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	candidate := base
	counter := 2
	for {
		if _, exists := used[candidate]; !exists {
			return candidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(strings.TrimSpace(value)))
	if value == "" {
		return "Data"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
