package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/edumanage/edumanage-core/internal/domain/attendance"
	"github.com/edumanage/edumanage-core/internal/domain/exam"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

// Sheet names.
const (
	SheetAttendance = "Présences"
	SheetSummary    = "Synthèse"
	SheetGrades     = "Notes"
)

// AttendanceWorkbook builds a workbook with the raw records and a per-student
// summary (present, late, absent, percentage).
func AttendanceWorkbook(records []attendance.Record, language string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetAttendance); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, SheetAttendance, AttendanceRows(records, language)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeRows(f, SheetSummary, summaryRows(records, language)); err != nil {
		return nil, err
	}

	if err := boldHeader(f, SheetAttendance, SheetSummary); err != nil {
		return nil, err
	}
	return f, nil
}

func summaryRows(records []attendance.Record, language string) [][]any {
	c := columnsFor(language)
	byStudent := make(map[shared.StudentRef][]attendance.Record)
	order := make([]shared.StudentRef, 0)
	for _, r := range records {
		if _, seen := byStudent[r.Student]; !seen {
			order = append(order, r.Student)
		}
		byStudent[r.Student] = append(byStudent[r.Student], r)
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i] < order[j] })

	rows := [][]any{{
		c.student,
		c.statuses[attendance.StatusPresent],
		c.statuses[attendance.StatusLate],
		c.statuses[attendance.StatusAbsent],
		"%",
	}}
	for _, s := range order {
		sum := attendance.Summarize(byStudent[s])
		pct, _ := attendance.Percentage(byStudent[s])
		rows = append(rows, []any{string(s), sum.Present, sum.Late, sum.Absent, pct})
	}
	return rows
}

// ExamGridWorkbook builds a one-sheet workbook from a grid. Grades are
// numeric cells; missing grades stay empty.
func ExamGridWorkbook(g exam.Grid, language string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetGrades); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range ExamGridRows(g, language) {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
			if i > 0 && j > 0 && v != "" {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cells[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetGrades, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := boldHeader(f, SheetGrades); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteXLSX serializes the workbook to w and closes it.
func WriteXLSX(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows[T any](f *excelize.File, sheet string, rows [][]T) error {
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func boldHeader(f *excelize.File, sheets ...string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for _, sheet := range sheets {
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}
	return nil
}
