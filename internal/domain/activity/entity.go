// Package activity содержит журнал действий в панели администратора
// ("Activité récente"). Журнал хранит не больше MaxItems последних записей.
package activity

import (
	"sort"
)

// MaxItems - предел длины журнала.
const MaxItems = 200

// DefaultRecentLimit - сколько записей отдаёт Recent без явного лимита.
const DefaultRecentLimit = 20

// Type - закрытый перечень видов действий.
type Type string

const (
	TypeEnrollment       Type = "enrollment"
	TypePayment          Type = "payment"
	TypeCourseAdd        Type = "course_add"
	TypeCourseEdit       Type = "course_edit"
	TypeCourseDelete     Type = "course_delete"
	TypeReportGenerated  Type = "report_generated"
	TypeReportDownloaded Type = "report_downloaded"
	TypeExamCreated      Type = "exam_created"
	TypeExamUpdated      Type = "exam_updated"
	TypeStudentAdded     Type = "student_added"
	TypeStudentDeleted   Type = "student_deleted"
	TypeTeacherDeleted   Type = "teacher_deleted"
	TypeNoteChanged      Type = "note_changed"
)

// IsValid проверяет, что тип входит в перечень.
func (t Type) IsValid() bool {
	switch t {
	case TypeEnrollment, TypePayment, TypeCourseAdd, TypeCourseEdit, TypeCourseDelete,
		TypeReportGenerated, TypeReportDownloaded, TypeExamCreated, TypeExamUpdated,
		TypeStudentAdded, TypeStudentDeleted, TypeTeacherDeleted, TypeNoteChanged:
		return true
	default:
		return false
	}
}

// Item - одна запись журнала. Timestamp - Unix миллисекунды.
type Item struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Cap сортирует журнал (новые первыми) и обрезает до limit записей.
func Cap(items []Item, limit int) []Item {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
