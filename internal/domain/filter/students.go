// Package filter описывает расширенный фильтр списка учеников.
package filter

import (
	"slices"
	"time"

	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// Range - замкнутый числовой диапазон [Min, Max].
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains проверяет попадание значения в диапазон.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Диапазоны по умолчанию.
var (
	DefaultAgeRange        = Range{Min: 13, Max: 18}
	DefaultGPARange        = Range{Min: 0, Max: 4}
	DefaultAttendanceRange = Range{Min: 0, Max: 100}
)

// Students - набор критериев. Даты зачисления - строки "YYYY-MM-DD",
// пустая строка означает отсутствие ограничения.
type Students struct {
	EnrollmentDateFrom string   `json:"enrollmentDateFrom"`
	EnrollmentDateTo   string   `json:"enrollmentDateTo"`
	AgeRange           Range    `json:"ageRange"`
	GPARange           Range    `json:"gpaRange"`
	AttendanceRange    Range    `json:"attendanceRange"`
	Classes            []string `json:"classes"`
	HasParentEmail     bool     `json:"hasParentEmail"`
	HasUnpaidFees      bool     `json:"hasUnpaidFees"`
}

// Default возвращает фильтр без ограничений.
func Default() Students {
	return Students{
		AgeRange:        DefaultAgeRange,
		GPARange:        DefaultGPARange,
		AttendanceRange: DefaultAttendanceRange,
		Classes:         []string{},
	}
}

// ActiveCount возвращает число активных критериев. Диапазон считается
// активным, только если он отличается от значения по умолчанию.
func (f Students) ActiveCount() int {
	n := 0
	if f.EnrollmentDateFrom != "" {
		n++
	}
	if f.EnrollmentDateTo != "" {
		n++
	}
	if f.AgeRange != DefaultAgeRange {
		n++
	}
	if f.GPARange != DefaultGPARange {
		n++
	}
	if f.AttendanceRange != DefaultAttendanceRange {
		n++
	}
	if len(f.Classes) > 0 {
		n++
	}
	if f.HasParentEmail {
		n++
	}
	if f.HasUnpaidFees {
		n++
	}
	return n
}

// ToggleClass добавляет или убирает класс из фильтра.
func (f Students) ToggleClass(class string, on bool) Students {
	classes := slices.DeleteFunc(slices.Clone(f.Classes), func(c string) bool { return c == class })
	if on {
		classes = append(classes, class)
	}
	f.Classes = classes
	return f
}

// Candidate - данные ученика, по которым применяется фильтр.
type Candidate struct {
	Class         string
	EnrolledAt    time.Time
	Age           float64
	GPA           float64
	Attendance    float64
	ParentEmail   string
	HasUnpaidFees bool
}

// Matches проверяет, удовлетворяет ли ученик всем активным критериям.
func (f Students) Matches(c Candidate) bool {
	if from, err := timeutil.ParseISODate(f.EnrollmentDateFrom); err == nil && c.EnrolledAt.Before(from) {
		return false
	}
	if to, err := timeutil.ParseISODate(f.EnrollmentDateTo); err == nil && c.EnrolledAt.After(timeutil.EndOfDay(to)) {
		return false
	}
	if !f.AgeRange.Contains(c.Age) || !f.GPARange.Contains(c.GPA) || !f.AttendanceRange.Contains(c.Attendance) {
		return false
	}
	if len(f.Classes) > 0 && !slices.Contains(f.Classes, c.Class) {
		return false
	}
	if f.HasParentEmail && c.ParentEmail == "" {
		return false
	}
	if f.HasUnpaidFees && !c.HasUnpaidFees {
		return false
	}
	return true
}
