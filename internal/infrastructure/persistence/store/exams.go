package store

import (
	"context"
	"sync"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/exam"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// ExamStore persists exam grids keyed by (group id, subject, semester).
type ExamStore struct {
	mu   sync.Mutex
	list *codec.List[exam.Grid]
	now  func() time.Time
}

// NewExamStore binds the store to KeyExams.
func NewExamStore(cfg Config) *ExamStore {
	cfg = cfg.withDefaults()
	return &ExamStore{
		list: codec.NewList[exam.Grid](cfg.Backend, KeyExams, cfg.Diagnostics),
		now:  cfg.Now,
	}
}

// All returns every grid in stored order.
func (s *ExamStore) All(ctx context.Context) []exam.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Read(ctx)
}

// Find returns the first grid matching key. An empty semester matches any
// semester; the subject must always match, so a grid of another subject
// is never returned in its place. An empty subject finds only a grid saved
// without a subject, not the group's first grid; use ForGroup to list every
// subject of a group.
func (s *ExamStore) Find(ctx context.Context, key exam.Key) (exam.Grid, bool) {
	for _, g := range s.All(ctx) {
		if key.MatchesLookup(g) {
			return g, true
		}
	}
	return exam.Grid{}, false
}

// ForGroup returns every grid of a group, across subjects and semesters.
func (s *ExamStore) ForGroup(ctx context.Context, id string) []exam.Grid {
	out := make([]exam.Grid, 0)
	for _, g := range s.All(ctx) {
		if g.ID == id {
			out = append(out, g)
		}
	}
	return out
}

// Save validates the grid, stamps UpdatedAt and replaces the grid with the
// same full key, or appends it.
func (s *ExamStore) Save(ctx context.Context, grid exam.Grid) (exam.Grid, error) {
	if err := grid.Validate(); err != nil {
		return exam.Grid{}, err
	}
	if grid.Students == nil {
		grid.Students = []shared.StudentRef{}
	}
	if grid.Rows == nil {
		grid.Rows = []exam.Row{}
	}
	grid.UpdatedAt = s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	key := grid.Key()
	for i := range list {
		if key.Matches(list[i]) {
			list[i] = grid
			s.list.Write(ctx, list)
			return grid, nil
		}
	}
	s.list.Write(ctx, append(list, grid))
	return grid, nil
}

// Update applies p to the grid with the exact key.
func (s *ExamStore) Update(ctx context.Context, key exam.Key, p exam.Patch) (exam.Grid, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		if !key.Matches(list[i]) {
			continue
		}
		updated := p.Apply(list[i])
		if err := updated.Validate(); err != nil {
			return list[i], true, err
		}
		updated.UpdatedAt = s.now().UnixMilli()
		list[i] = updated
		s.list.Write(ctx, list)
		return updated, true, nil
	}
	return exam.Grid{}, false, nil
}

// Remove deletes the grid with the exact key.
func (s *ExamStore) Remove(ctx context.Context, key exam.Key) bool {
	return s.removeWhere(ctx, key.Matches)
}

// RemoveGroup deletes every grid of a group.
func (s *ExamStore) RemoveGroup(ctx context.Context, id string) bool {
	return s.removeWhere(ctx, func(g exam.Grid) bool { return g.ID == id })
}

// RemoveFor deletes the grids of a group; a non-empty subject or semester
// narrows the selection.
func (s *ExamStore) RemoveFor(ctx context.Context, id string, subject shared.SubjectRef, semester string) bool {
	return s.removeWhere(ctx, func(g exam.Grid) bool {
		return g.ID == id &&
			(subject == "" || g.Subject.EqualFold(subject)) &&
			(semester == "" || g.Semester == semester)
	})
}

func (s *ExamStore) removeWhere(ctx context.Context, match func(exam.Grid) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := make([]exam.Grid, 0, len(list))
	for _, g := range list {
		if !match(g) {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, kept)
	return true
}
