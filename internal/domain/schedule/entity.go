// Package schedule содержит доменную модель расписания занятий (emploi du temps).
// Одна сессия - это одно занятие группы в конкретный день недели.
package schedule

import (
	"sort"
	"strings"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session представляет одно занятие в недельном расписании.
// Время хранится строками "HH:mm", день недели - числом 0-6 (0 = воскресенье).
type Session struct {
	ID        string            `json:"id" validate:"required"`
	Title     string            `json:"title"`
	Teacher   shared.TeacherRef `json:"teacher"`
	Group     shared.GroupRef   `json:"group"`
	Subject   shared.SubjectRef `json:"subject"`
	Classroom string            `json:"classroom"`
	StartTime string            `json:"startTime" validate:"required,clock"`
	EndTime   string            `json:"endTime" validate:"required,clock"`
	Day       int               `json:"day" validate:"min=0,max=6"`
	Level     string            `json:"level"`
	Students  int               `json:"students" validate:"min=0"`
	Color     string            `json:"color,omitempty"`
}

// Validate проверяет инварианты сессии: формат времени, границы учебного дня
// (08:00-23:00) и то, что конец строго позже начала.
func (s Session) Validate() error {
	if err := shared.ValidateStruct("schedule", "Validate", s); err != nil {
		return err
	}
	start, _ := timeutil.ParseClock(s.StartTime)
	end, _ := timeutil.ParseClock(s.EndTime)
	if end <= start {
		return shared.NewDomainError("schedule", "Validate", shared.ErrValueOutOfRange,
			"endTime must be after startTime")
	}
	return nil
}

// DurationMinutes возвращает длительность занятия в минутах (0 при некорректном времени).
func (s Session) DurationMinutes() int {
	start, err1 := timeutil.ParseClock(s.StartTime)
	end, err2 := timeutil.ParseClock(s.EndTime)
	if err1 != nil || err2 != nil || end < start {
		return 0
	}
	return end - start
}

// Overlaps возвращает true, если две сессии идут в один день и их интервалы пересекаются.
func (s Session) Overlaps(other Session) bool {
	if s.Day != other.Day {
		return false
	}
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}

// ══════════════════════════════════════════════════════════════════════════════
// PATCH
// ══════════════════════════════════════════════════════════════════════════════

// Patch перечисляет изменяемые поля сессии. nil означает "не менять".
type Patch struct {
	Title     *string
	Teacher   *shared.TeacherRef
	Group     *shared.GroupRef
	Subject   *shared.SubjectRef
	Classroom *string
	StartTime *string
	EndTime   *string
	Day       *int
	Level     *string
	Students  *int
	Color     *string
}

// Apply возвращает копию сессии с применёнными изменениями.
func (p Patch) Apply(s Session) Session {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Teacher != nil {
		s.Teacher = *p.Teacher
	}
	if p.Group != nil {
		s.Group = *p.Group
	}
	if p.Subject != nil {
		s.Subject = *p.Subject
	}
	if p.Classroom != nil {
		s.Classroom = *p.Classroom
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.Day != nil {
		s.Day = *p.Day
	}
	if p.Level != nil {
		s.Level = *p.Level
	}
	if p.Students != nil {
		s.Students = *p.Students
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// SortByStart сортирует сессии по времени начала (строковое сравнение "HH:mm").
func SortByStart(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime < sessions[j].StartTime
	})
}

// FilterDay возвращает сессии указанного дня, отсортированные по началу.
func FilterDay(sessions []Session, day int) []Session {
	out := make([]Session, 0)
	for _, s := range sessions {
		if s.Day == day {
			out = append(out, s)
		}
	}
	SortByStart(out)
	return out
}

// FilterGroup возвращает сессии группы (сравнение без пробелов по краям).
func FilterGroup(sessions []Session, group shared.GroupRef) []Session {
	want := strings.TrimSpace(string(group))
	out := make([]Session, 0)
	for _, s := range sessions {
		if strings.TrimSpace(string(s.Group)) == want {
			out = append(out, s)
		}
	}
	return out
}
