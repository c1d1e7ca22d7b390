package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sampleRow struct {
	Faculty string `csv:"Faculty"`
	Day     string `csv:"Day"`
	Count   int    `csv:"Count"`
}

func sampleRows() []sampleRow {
	return []sampleRow{
		{Faculty: "Dr. A", Day: "Monday", Count: 2},
		{Faculty: "Dr. B, Jr.", Day: "Tuesday", Count: 1},
	}
}

func TestTabulateUsesStructTags(t *testing.T) {
	rows := sampleRows()
	data, err := Tabulate(&rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"Faculty", "Day", "Count"}, data.Headers)
	assert.Equal(t, [][]string{{"Dr. A", "Monday", "2"}, {"Dr. B, Jr.", "Tuesday", "1"}}, data.Rows)
}

func TestTabulateEmptyKeepsHeader(t *testing.T) {
	rows := []sampleRow{}
	data, err := Tabulate(&rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"Faculty", "Day", "Count"}, data.Headers)
	assert.Empty(t, data.Rows)
}

func TestMarshalCSVQuotesCells(t *testing.T) {
	rows := sampleRows()
	out, err := MarshalCSV(&rows)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Faculty,Day,Count\n"))
	assert.Contains(t, string(out), `"Dr. B, Jr.",Tuesday,1`)
}

func TestXLSXExporterRender(t *testing.T) {
	rows := sampleRows()
	data, err := Tabulate(&rows)
	require.NoError(t, err)

	out, err := NewXLSXExporter().Render(data, "Faculty Timetable")
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Faculty Timetable"}, book.GetSheetList())
	records, err := book.GetRows("Faculty Timetable")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Faculty", "Day", "Count"}, records[0])
	assert.Equal(t, "Dr. B, Jr.", records[2][0])
}

func TestPDFExporterRender(t *testing.T) {
	rows := make([]sampleRow, 0, 120)
	for i := 0; i < 120; i++ {
		rows = append(rows, sampleRow{Faculty: "Dr. " + strings.Repeat("Long", 20), Day: "Friday", Count: i})
	}
	data, err := Tabulate(&rows)
	require.NoError(t, err)

	out, err := NewPDFExporter().Render(data, "Faculty Timetable")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderersRequireHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	require.Error(t, err)
	_, err = NewXLSXExporter().Render(Dataset{}, "")
	require.Error(t, err)
}
