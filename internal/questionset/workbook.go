package questionset

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/sheet"
	"github.com/rareminds/testportal/internal/validator"
)

// ParseWorkbook reads questions from the first sheet of an xlsx workbook.
//
// The header row names the columns: id, course_code, question, option_a,
// option_b, ... , correct_answer, section, marks. correct_answer is either
// an option letter or the exact option text. Valid rows are returned even
// when others are rejected.
func ParseWorkbook(r io.Reader) ([]model.Question, []sheet.RowError, error) {
	t, err := sheet.Read(r)
	if err != nil {
		return nil, nil, err
	}
	if err := t.Require("id", "course_code", "question", "correct_answer"); err != nil {
		return nil, nil, err
	}
	var optionCols []string
	for _, c := range t.Columns {
		if strings.HasPrefix(c, "option_") {
			optionCols = append(optionCols, c)
		}
	}
	sort.Strings(optionCols)

	var (
		questions []model.Question
		rejected  []sheet.RowError
		seen      = make(map[string]int)
	)
	for i, record := range t.Rows {
		rowNum := sheet.RowNumber(i)
		if sheet.Blank(record) {
			continue
		}
		q, errs := parseRow(t, record, optionCols, rowNum)
		if len(errs) > 0 {
			rejected = append(rejected, errs...)
			continue
		}
		key := q.CourseCode + "/" + strconv.Itoa(q.ID)
		if prev, dup := seen[key]; dup {
			rejected = append(rejected, sheet.RowError{Row: rowNum, Column: "id", Reason: fmt.Sprintf("duplicates row %d", prev)})
			continue
		}
		seen[key] = rowNum
		questions = append(questions, q)
	}
	return questions, rejected, nil
}

func parseRow(t *sheet.Table, record []string, optionCols []string, rowNum int) (model.Question, []sheet.RowError) {
	col := func(name string) string { return t.Cell(record, name) }

	var errs []sheet.RowError
	row := model.ImportQuestionRow{
		CourseCode: strings.ToUpper(col("course_code")),
		Text:       col("question"),
		Answer:     col("correct_answer"),
		Section:    col("section"),
	}
	if v := col("id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, sheet.RowError{Row: rowNum, Column: "id", Reason: "must be a whole number"})
		}
		row.ID = id
	}
	if v := col("marks"); v != "" {
		marks, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, sheet.RowError{Row: rowNum, Column: "marks", Reason: "must be a whole number"})
		}
		row.Marks = marks
	}
	for _, c := range optionCols {
		if v := col(c); v != "" {
			row.Options = append(row.Options, v)
		}
	}

	for field, reason := range validator.Struct(row) {
		errs = append(errs, sheet.RowError{Row: rowNum, Column: field, Reason: reason})
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Column < errs[j].Column })
		return model.Question{}, errs
	}

	answer, ok := resolveAnswer(row.Answer, row.Options)
	if !ok {
		return model.Question{}, []sheet.RowError{{Row: rowNum, Column: "correct_answer", Reason: "is not one of the options"}}
	}

	return model.Question{
		ID:            row.ID,
		CourseCode:    row.CourseCode,
		Text:          row.Text,
		Options:       row.Options,
		CorrectAnswer: answer,
		Section:       row.Section,
		Marks:         row.Marks,
	}, nil
}

// resolveAnswer accepts an option letter (A, B, ...) or the option text.
func resolveAnswer(answer string, options []string) (string, bool) {
	for _, o := range options {
		if o == answer {
			return o, true
		}
	}
	if len(answer) == 1 {
		idx := int(strings.ToUpper(answer)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return options[idx], true
		}
	}
	return "", false
}
