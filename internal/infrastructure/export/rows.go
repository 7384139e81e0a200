package export

import (
	"strconv"

	"github.com/edumanage/edumanage-core/internal/domain/attendance"
	"github.com/edumanage/edumanage-core/internal/domain/exam"
)

type columns struct {
	date, group, student, status, exam, average string
	statuses                                     map[attendance.Status]string
}

var (
	columnsFr = columns{
		date: "Date", group: "Groupe", student: "Élève", status: "Statut", exam: "Examen", average: "Moyenne",
		statuses: map[attendance.Status]string{
			attendance.StatusPresent: "Présent",
			attendance.StatusAbsent:  "Absent",
			attendance.StatusLate:    "En retard",
		},
	}
	columnsEn = columns{
		date: "Date", group: "Group", student: "Student", status: "Status", exam: "Exam", average: "Average",
		statuses: map[attendance.Status]string{
			attendance.StatusPresent: "Present",
			attendance.StatusAbsent:  "Absent",
			attendance.StatusLate:    "Late",
		},
	}
)

func columnsFor(language string) columns {
	if language == "en" {
		return columnsEn
	}
	return columnsFr
}

// AttendanceRows flattens records into a header row plus one row per record.
func AttendanceRows(records []attendance.Record, language string) [][]string {
	c := columnsFor(language)
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{c.date, c.group, c.student, c.status})
	for _, r := range records {
		status, ok := c.statuses[r.Status]
		if !ok {
			status = string(r.Status)
		}
		rows = append(rows, []string{r.Date, string(r.Group), string(r.Student), status})
	}
	return rows
}

// ExamGridRows lays a grid out with one column per student, one row per exam
// and a trailing average row. Missing grades are empty cells.
func ExamGridRows(g exam.Grid, language string) [][]string {
	c := columnsFor(language)
	header := make([]string, 0, len(g.Students)+1)
	header = append(header, c.exam)
	for _, s := range g.Students {
		header = append(header, string(s))
	}

	rows := [][]string{header}
	for _, r := range g.Rows {
		row := make([]string, 0, len(g.Students)+1)
		row = append(row, r.ExamLabel)
		for i := range g.Students {
			row = append(row, formatGrade(r.Grades, i))
		}
		rows = append(rows, row)
	}

	avg := make([]string, 0, len(g.Students)+1)
	avg = append(avg, c.average)
	for i := range g.Students {
		if v, ok := exam.StudentAverage(g, i); ok {
			avg = append(avg, strconv.FormatFloat(v, 'f', -1, 64))
		} else {
			avg = append(avg, "")
		}
	}
	return append(rows, avg)
}

func formatGrade(grades []*float64, i int) string {
	if i >= len(grades) || grades[i] == nil {
		return ""
	}
	return strconv.FormatFloat(*grades[i], 'f', -1, 64)
}
