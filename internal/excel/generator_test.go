package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/liftcare/internal/model"
)

func TestGenerateWritesSummaryAndSections(t *testing.T) {
	report := model.Report{
		Type:        model.ReportMaintenance,
		Title:       "Maintenance activity",
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Sections: []model.ReportSection{
			{Name: "Maintenance", Headers: []string{"Period", "Scheduled"}, Rows: [][]string{{"Jan 2025", "4"}}},
			{Name: "Maintenance", Headers: []string{"Period"}, Rows: nil},
		},
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"Summary", "Maintenance", "Maintenance-2"}, file.GetSheetList())

	title, err := file.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Maintenance activity", title)

	value, err := file.GetCellValue("Maintenance", "B2")
	require.NoError(t, err)
	assert.Equal(t, "4", value)
}

func TestBuildSheetName(t *testing.T) {
	used := map[string]struct{}{}
	assert.Equal(t, "Q1-Q2", buildSheetName("Q1/Q2", used))
	assert.Equal(t, "Data", buildSheetName("  ", used))

	long := "A very long section name that overflows the limit"
	first := buildSheetName(long, used)
	assert.Len(t, first, maxSheetName)
	used[first] = struct{}{}
	second := buildSheetName(long, used)
	assert.Len(t, second, maxSheetName)
	assert.NotEqual(t, first, second)
}
