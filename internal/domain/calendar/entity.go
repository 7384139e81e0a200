// Package calendar содержит доменную модель школьного календаря:
// мероприятия, каникулы и собрания.
package calendar

import (
	"sort"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// EventType определяет вид события.
type EventType string

const (
	// TypeSchoolEvent - школьное мероприятие.
	TypeSchoolEvent EventType = "school_event"
	// TypeHoliday - каникулы или праздник.
	TypeHoliday EventType = "holiday"
	// TypeMeeting - собрание (родительское, педсовет).
	TypeMeeting EventType = "meeting"
)

// Event - событие календаря. Start и End - ISO datetime строки.
// End >= Start предполагается, но не проверяется.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	Type        EventType `json:"type" validate:"oneof=school_event holiday meeting"`
	Location    string    `json:"location,omitempty"`
	Start       string    `json:"start" validate:"required"`
	End         string    `json:"end" validate:"required"`
	CreatedBy   string    `json:"createdBy,omitempty"`
}

// Validate проверяет обязательные поля, тип и разбираемость дат.
func (e Event) Validate() error {
	if err := shared.ValidateStruct("calendar", "Validate", e); err != nil {
		return err
	}
	if _, err := timeutil.ParseDateTime(e.Start); err != nil {
		return shared.WrapError("calendar", "Validate", shared.ErrInvalidFormat, "invalid start", err)
	}
	if _, err := timeutil.ParseDateTime(e.End); err != nil {
		return shared.WrapError("calendar", "Validate", shared.ErrInvalidFormat, "invalid end", err)
	}
	return nil
}

// StartTime возвращает разобранное начало (нулевое время, если не разбирается).
func (e Event) StartTime() time.Time {
	t, _ := timeutil.ParseDateTime(e.Start)
	return t
}

// EndTime возвращает разобранный конец (нулевое время, если не разбирается).
func (e Event) EndTime() time.Time {
	t, _ := timeutil.ParseDateTime(e.End)
	return t
}

// Overlaps возвращает true, если событие пересекается с окном [from, to]:
// end >= from && start <= to.
func (e Event) Overlaps(from, to time.Time) bool {
	return !e.EndTime().Before(from) && !e.StartTime().After(to)
}

// Patch перечисляет изменяемые поля события.
type Patch struct {
	Title       *string
	Description *string
	Type        *EventType
	Location    *string
	Start       *string
	End         *string
}

// Apply возвращает копию события с применёнными изменениями.
func (p Patch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	return e
}

// SortByStart сортирует события по началу, ранние первыми.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime().Before(events[j].StartTime())
	})
}
