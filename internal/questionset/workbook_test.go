package questionset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var sheetHeader = []interface{}{"id", "course_code", "question", "option_a", "option_b", "option_c", "correct_answer", "section", "marks"}

func TestParseWorkbook_ValidRows(t *testing.T) {
	buf := workbook(t,
		sheetHeader,
		[]interface{}{1, "sgcev", "Which is renewable?", "Coal", "Solar", "Oil", "B", "Section A: Basics", 2},
		[]interface{}{2, "SGCEV", "Pick the catalyst", "Enzyme", "Sand", "", "Enzyme", "", ""},
		[]interface{}{"", "", "", "", "", "", "", "", ""},
	)

	qs, rejected, err := ParseWorkbook(buf)

	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, qs, 2)
	assert.Equal(t, "SGCEV", qs[0].CourseCode)
	assert.Equal(t, "Solar", qs[0].CorrectAnswer)
	assert.Equal(t, []string{"Coal", "Solar", "Oil"}, qs[0].Options)
	assert.Equal(t, 2, qs[0].Marks)
	assert.Equal(t, "Section A", qs[0].SectionLabel())
	assert.Equal(t, []string{"Enzyme", "Sand"}, qs[1].Options)
	assert.Equal(t, "Enzyme", qs[1].CorrectAnswer)
}

func TestParseWorkbook_RejectsBadRows(t *testing.T) {
	buf := workbook(t,
		sheetHeader,
		[]interface{}{1, "OFP", "Only one option", "Yes", "", "", "A", "", 1},
		[]interface{}{2, "OFP", "Answer missing from options", "Yes", "No", "", "Maybe", "", 1},
		[]interface{}{"x", "OFP", "Bad id", "Yes", "No", "", "A", "", 1},
		[]interface{}{3, "OFP", "Fine", "Yes", "No", "", "A", "", 1},
		[]interface{}{3, "OFP", "Duplicate", "Yes", "No", "", "A", "", 1},
	)

	qs, rejected, err := ParseWorkbook(buf)

	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Fine", qs[0].Text)

	rows := make(map[int]bool)
	for _, e := range rejected {
		rows[e.Row] = true
	}
	assert.Equal(t, map[int]bool{2: true, 3: true, 4: true, 6: true}, rows)
}

func TestParseWorkbook_MissingColumn(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"id", "question", "option_a"},
		[]interface{}{1, "q", "a"},
	)

	_, _, err := ParseWorkbook(buf)

	assert.ErrorContains(t, err, "course_code")
}
