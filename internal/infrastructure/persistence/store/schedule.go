package store

import (
	"context"
	"sync"

	"github.com/edumanage/edumanage-core/internal/domain/schedule"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// ScheduleStore persists timetable sessions.
type ScheduleStore struct {
	mu   sync.Mutex
	list *codec.List[schedule.Session]
}

// NewScheduleStore binds the store to KeySchedule.
func NewScheduleStore(cfg Config) *ScheduleStore {
	cfg = cfg.withDefaults()
	return &ScheduleStore{list: codec.NewList[schedule.Session](cfg.Backend, KeySchedule, cfg.Diagnostics)}
}

// All returns every session in stored order.
func (s *ScheduleStore) All(ctx context.Context) []schedule.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Read(ctx)
}

// ByDay returns the sessions of a weekday sorted by start time.
func (s *ScheduleStore) ByDay(ctx context.Context, day int) []schedule.Session {
	return schedule.FilterDay(s.All(ctx), day)
}

// ByGroup returns the sessions of a group.
func (s *ScheduleStore) ByGroup(ctx context.Context, group shared.GroupRef) []schedule.Session {
	return schedule.FilterGroup(s.All(ctx), group)
}

// Get returns the session with id.
func (s *ScheduleStore) Get(ctx context.Context, id string) (schedule.Session, bool) {
	for _, sess := range s.All(ctx) {
		if sess.ID == id {
			return sess, true
		}
	}
	return schedule.Session{}, false
}

// Add validates and stores a session. A missing id is generated; an
// existing id is replaced in place.
func (s *ScheduleStore) Add(ctx context.Context, sess schedule.Session) (schedule.Session, error) {
	if sess.ID == "" {
		sess.ID = shared.NewID()
	}
	if err := sess.Validate(); err != nil {
		return schedule.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	replaced := false
	for i := range list {
		if list[i].ID == sess.ID {
			list[i] = sess
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, sess)
	}
	s.list.Write(ctx, list)
	return sess, nil
}

// Update applies p to the session with id. The result is validated before
// it is stored. ok is false when no session has that id.
func (s *ScheduleStore) Update(ctx context.Context, id string, p schedule.Patch) (schedule.Session, bool, error) {
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
	return schedule.Session{}, false, nil
}

// Remove deletes the session with id.
func (s *ScheduleStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := list[:0]
	for _, sess := range list {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, kept)
	return true
}

// ReplaceAll validates every session and replaces the whole collection.
func (s *ScheduleStore) ReplaceAll(ctx context.Context, sessions []schedule.Session) error {
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = shared.NewID()
		}
		if err := sessions[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.Write(ctx, sessions)
	return nil
}

// ReplaceGroup replaces the sessions of one group and keeps the rest.
// Incoming sessions are assigned to the group.
func (s *ScheduleStore) ReplaceGroup(ctx context.Context, group shared.GroupRef, sessions []schedule.Session) error {
	group = group.Trimmed()
	for i := range sessions {
		sessions[i].Group = group
		if sessions[i].ID == "" {
			sessions[i].ID = shared.NewID()
		}
		if err := sessions[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := make([]schedule.Session, 0, len(list)+len(sessions))
	for _, sess := range list {
		if sess.Group.Trimmed() != group {
			kept = append(kept, sess)
		}
	}
	s.list.Write(ctx, append(kept, sessions...))
	return nil
}

// Clear removes every session.
func (s *ScheduleStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.Write(ctx, nil)
}
