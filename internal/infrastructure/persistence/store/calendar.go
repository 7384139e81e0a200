package store

import (
	"context"
	"sync"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/calendar"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// CalendarStore persists calendar events.
type CalendarStore struct {
	mu   sync.Mutex
	list *codec.List[calendar.Event]
	now  func() time.Time
}

// NewCalendarStore binds the store to KeyCalendar.
func NewCalendarStore(cfg Config) *CalendarStore {
	cfg = cfg.withDefaults()
	return &CalendarStore{
		list: codec.NewList[calendar.Event](cfg.Backend, KeyCalendar, cfg.Diagnostics),
		now:  cfg.Now,
	}
}

// All returns every event sorted by start.
func (s *CalendarStore) All(ctx context.Context) []calendar.Event {
	s.mu.Lock()
	list := s.list.Read(ctx)
	s.mu.Unlock()

	calendar.SortByStart(list)
	return list
}

// Get returns the event with id.
func (s *CalendarStore) Get(ctx context.Context, id string) (calendar.Event, bool) {
	for _, e := range s.All(ctx) {
		if e.ID == id {
			return e, true
		}
	}
	return calendar.Event{}, false
}

// ByDateRange returns the events overlapping [from, to], sorted by start.
// Both bounds are ISO date or datetime strings.
func (s *CalendarStore) ByDateRange(ctx context.Context, from, to string) ([]calendar.Event, error) {
	start, err := timeutil.ParseDateTime(from)
	if err != nil {
		return nil, shared.WrapError("calendar", "ByDateRange", shared.ErrInvalidFormat, "invalid range start", err)
	}
	end, err := timeutil.ParseDateTime(to)
	if err != nil {
		return nil, shared.WrapError("calendar", "ByDateRange", shared.ErrInvalidFormat, "invalid range end", err)
	}

	out := make([]calendar.Event, 0)
	for _, e := range s.All(ctx) {
		if e.Overlaps(start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Add validates and appends an event, generating a missing id.
func (s *CalendarStore) Add(ctx context.Context, ev calendar.Event) (calendar.Event, error) {
	if ev.ID == "" {
		ev.ID = shared.NewTimestampID(s.now())
	}
	if err := ev.Validate(); err != nil {
		return calendar.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.list.Write(ctx, append(s.list.Read(ctx), ev))
	return ev, nil
}

// Update applies p to the event with id.
func (s *CalendarStore) Update(ctx context.Context, id string, p calendar.Patch) (calendar.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		if list[i].ID != id {
			continue
		}
		updated := p.Apply(list[i])
		if err := updated.Validate(); err != nil {
			return list[i], true, err
		}
		list[i] = updated
		s.list.Write(ctx, list)
		return updated, true, nil
	}
	return calendar.Event{}, false, nil
}

// Remove deletes the event with id.
func (s *CalendarStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := list[:0]
	for _, e := range list {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, kept)
	return true
}
