// Package roster parses enrolment roster uploads.
package roster

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/sheet"
	"github.com/rareminds/testportal/internal/validator"
)

// ParseWorkbook reads roster entries from the first sheet of an xlsx workbook
// with the columns roll_no, nm_id, name, semester and course_id. Only roll_no
// and nm_id are required. A roll number or NM ID may appear once.
func ParseWorkbook(r io.Reader) ([]model.RosterEntry, []sheet.RowError, error) {
	t, err := sheet.Read(r)
	if err != nil {
		return nil, nil, err
	}
	if err := t.Require("roll_no", "nm_id"); err != nil {
		return nil, nil, err
	}

	var (
		entries  []model.RosterEntry
		rejected []sheet.RowError
		byRollNo = make(map[string]int)
		byNMID   = make(map[string]int)
	)
	for i, record := range t.Rows {
		rowNum := sheet.RowNumber(i)
		if sheet.Blank(record) {
			continue
		}
		e := model.RosterEntry{
			RollNo:   strings.ToUpper(t.Cell(record, "roll_no")),
			NMID:     t.Cell(record, "nm_id"),
			Name:     t.Cell(record, "name"),
			Semester: t.Cell(record, "semester"),
		}
		if c := strings.ToLower(t.Cell(record, "course_id")); c != "" {
			e.CourseID = &c
		}

		if fields := validator.Struct(e); len(fields) > 0 {
			var errs []sheet.RowError
			for field, reason := range fields {
				errs = append(errs, sheet.RowError{Row: rowNum, Column: field, Reason: reason})
			}
			sort.Slice(errs, func(i, j int) bool { return errs[i].Column < errs[j].Column })
			rejected = append(rejected, errs...)
			continue
		}
		if prev, dup := byRollNo[e.RollNo]; dup {
			rejected = append(rejected, sheet.RowError{Row: rowNum, Column: "roll_no", Reason: fmt.Sprintf("duplicates row %d", prev)})
			continue
		}
		if prev, dup := byNMID[e.NMID]; dup {
			rejected = append(rejected, sheet.RowError{Row: rowNum, Column: "nm_id", Reason: fmt.Sprintf("duplicates row %d", prev)})
			continue
		}
		byRollNo[e.RollNo] = rowNum
		byNMID[e.NMID] = rowNum
		entries = append(entries, e)
	}
	return entries, rejected, nil
}
