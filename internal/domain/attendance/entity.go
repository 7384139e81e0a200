// Package attendance содержит доменную модель посещаемости:
// отметки присутствия ученика на конкретную дату и агрегат "процент посещаемости".
package attendance

import (
	"math"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет отметку ученика за день.
type Status string

const (
	// StatusPresent - ученик присутствовал.
	StatusPresent Status = "present"
	// StatusAbsent - ученик отсутствовал.
	StatusAbsent Status = "absent"
	// StatusLate - ученик опоздал (считается как половина присутствия).
	StatusLate Status = "late"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Key - составной ключ записи. В коллекции не больше одной записи на ключ.
type Key struct {
	Date    string
	Group   shared.GroupRef
	Student shared.StudentRef
}

// Record - отметка посещаемости одного ученика за одну дату.
type Record struct {
	Date    string            `json:"date" validate:"required,isodate"`
	Group   shared.GroupRef   `json:"group" validate:"required"`
	Student shared.StudentRef `json:"student" validate:"required"`
	Status  Status            `json:"status" validate:"oneof=present absent late"`
}

// Key возвращает составной ключ записи.
func (r Record) Key() Key {
	return Key{Date: r.Date, Group: r.Group, Student: r.Student}
}

// Validate проверяет формат даты, обязательные поля и статус.
func (r Record) Validate() error {
	return shared.ValidateStruct("attendance", "Validate", r)
}

// StudentStatus - одна строка листа посещаемости при пакетном сохранении.
type StudentStatus struct {
	Student shared.StudentRef
	Status  Status
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

// Percentage вычисляет процент посещаемости: 100 * (present + 0.5*late) / total,
// округлённый до одного знака. ok == false означает "нет данных" (ноль записей).
func Percentage(records []Record) (pct float64, ok bool) {
	if len(records) == 0 {
		return 0, false
	}
	var present, late int
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			present++
		case StatusLate:
			late++
		}
	}
	raw := 100 * (float64(present) + 0.5*float64(late)) / float64(len(records))
	return math.Round(raw*10) / 10, true
}

// Summary - сводка по отметкам.
type Summary struct {
	Present int
	Absent  int
	Late    int
}

// Total возвращает общее количество отметок.
func (s Summary) Total() int {
	return s.Present + s.Absent + s.Late
}

// Summarize считает отметки по статусам.
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			s.Present++
		case StatusAbsent:
			s.Absent++
		case StatusLate:
			s.Late++
		}
	}
	return s
}
