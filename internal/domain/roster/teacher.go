// Package roster содержит локальный список преподавателей учреждения.
package roster

import (
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// Status - статус преподавателя.
type Status string

const (
	StatusActive   Status = "active"
	StatusOnLeave  Status = "on_leave"
	StatusInactive Status = "inactive"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusInactive:
		return true
	default:
		return false
	}
}

// Значения по умолчанию для новых записей.
const (
	DefaultName       = "Unnamed"
	DefaultExperience = "0 years"
)

// Teacher - запись о преподавателе. ID - Unix-время в миллисекундах
// на момент создания, если не задан явно.
type Teacher struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Email         string              `json:"email,omitempty"`
	Phone         string              `json:"phone"`
	Department    string              `json:"department"`
	Subjects      []shared.SubjectRef `json:"subjects"`
	Status        Status              `json:"status"`
	StudentsCount int                 `json:"studentsCount,omitempty"`
	Experience    string              `json:"experience,omitempty"`
	JoinDate      string              `json:"joinDate,omitempty"`
	Avatar        string              `json:"avatar,omitempty"`
}

// WithDefaults заполняет незаданные поля значениями по умолчанию.
func (t Teacher) WithDefaults(now time.Time) Teacher {
	if t.ID == 0 {
		t.ID = now.UnixMilli()
	}
	if t.Name == "" {
		t.Name = DefaultName
	}
	if t.Subjects == nil {
		t.Subjects = []shared.SubjectRef{}
	}
	if !t.Status.IsValid() {
		t.Status = StatusActive
	}
	if t.Experience == "" {
		t.Experience = DefaultExperience
	}
	if t.JoinDate == "" {
		t.JoinDate = timeutil.ISODate(now)
	}
	return t
}

// Patch перечисляет изменяемые поля преподавателя.
type Patch struct {
	Name          *string
	Email         *string
	Phone         *string
	Department    *string
	Subjects      []shared.SubjectRef
	Status        *Status
	StudentsCount *int
	Experience    *string
	JoinDate      *string
	Avatar        *string
}

// Apply возвращает копию записи с применёнными изменениями.
// Subjects заменяется целиком, если не nil.
func (p Patch) Apply(t Teacher) Teacher {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Email != nil {
		t.Email = *p.Email
	}
	if p.Phone != nil {
		t.Phone = *p.Phone
	}
	if p.Department != nil {
		t.Department = *p.Department
	}
	if p.Subjects != nil {
		t.Subjects = p.Subjects
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.StudentsCount != nil {
		t.StudentsCount = *p.StudentsCount
	}
	if p.Experience != nil {
		t.Experience = *p.Experience
	}
	if p.JoinDate != nil {
		t.JoinDate = *p.JoinDate
	}
	if p.Avatar != nil {
		t.Avatar = *p.Avatar
	}
	return t
}
