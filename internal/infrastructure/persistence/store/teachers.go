package store

import (
	"context"
	"sync"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/roster"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// TeacherStore persists the local teacher roster.
type TeacherStore struct {
	mu   sync.Mutex
	list *codec.List[roster.Teacher]
	now  func() time.Time
}

// NewTeacherStore binds the store to KeyTeachers.
func NewTeacherStore(cfg Config) *TeacherStore {
	cfg = cfg.withDefaults()
	return &TeacherStore{
		list: codec.NewList[roster.Teacher](cfg.Backend, KeyTeachers, cfg.Diagnostics),
		now:  cfg.Now,
	}
}

// All returns every teacher in stored order.
func (s *TeacherStore) All(ctx context.Context) []roster.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Read(ctx)
}

// Get returns the teacher with id.
func (s *TeacherStore) Get(ctx context.Context, id int64) (roster.Teacher, bool) {
	for _, t := range s.All(ctx) {
		if t.ID == id {
			return t, true
		}
	}
	return roster.Teacher{}, false
}

// SeedIfEmpty writes defaults when the roster is empty and reports whether
// it did.
func (s *TeacherStore) SeedIfEmpty(ctx context.Context, defaults []roster.Teacher) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(defaults) == 0 || len(s.list.Read(ctx)) > 0 {
		return false
	}
	s.list.Write(ctx, defaults)
	return true
}

// Add fills missing fields with defaults and appends the teacher.
func (s *TeacherStore) Add(ctx context.Context, t roster.Teacher) roster.Teacher {
	t = t.WithDefaults(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.list.Write(ctx, append(s.list.Read(ctx), t))
	return t
}

// Update applies p to the teacher with id.
func (s *TeacherStore) Update(ctx context.Context, id int64, p roster.Patch) (roster.Teacher, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		if list[i].ID == id {
			list[i] = p.Apply(list[i])
			s.list.Write(ctx, list)
			return list[i], true
		}
	}
	return roster.Teacher{}, false
}

// Remove deletes the teacher with id.
func (s *TeacherStore) Remove(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := list[:0]
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, kept)
	return true
}
