// Package sheet reads the first worksheet of an xlsx upload as a table with
// a header row, for the provisioning importers.
package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowError describes why one spreadsheet row was rejected.
type RowError struct {
	Row    int
	Column string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Column, e.Reason)
}

// Table is a worksheet split into a lower-cased header and data rows.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// Read opens an xlsx workbook and returns its first sheet. The sheet must
// have a header row and at least one data row.
func Read(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q needs a header row and at least one data row", sheets[0])
	}

	t := &Table{Name: sheets[0], Rows: rows[1:], index: make(map[string]int, len(rows[0]))}
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		t.Columns = append(t.Columns, name)
		t.index[name] = i
	}
	return t, nil
}

// Require fails on the first named column the header lacks.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return fmt.Errorf("missing column %q", c)
		}
	}
	return nil
}

// Cell returns the trimmed value of column name in record, or "".
func (t *Table) Cell(record []string, name string) string {
	if idx, ok := t.index[name]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// RowNumber is the 1-based sheet row of data row i.
func RowNumber(i int) int { return i + 2 }

// Blank reports whether every cell of record is empty.
func Blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
