package store

import (
	"context"
	"strings"
	"sync"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// SubjectStore persists the list of custom subjects: unique, non-empty strings.
type SubjectStore struct {
	mu   sync.Mutex
	list *codec.List[shared.SubjectRef]
}

// NewSubjectStore binds the store to KeySubjects.
func NewSubjectStore(cfg Config) *SubjectStore {
	cfg = cfg.withDefaults()
	return &SubjectStore{list: codec.NewList[shared.SubjectRef](cfg.Backend, KeySubjects, cfg.Diagnostics)}
}

// List returns the custom subjects in insertion order.
func (s *SubjectStore) List(ctx context.Context) []shared.SubjectRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Read(ctx)
}

// SetAll replaces the list, dropping empty entries and duplicates.
func (s *SubjectStore) SetAll(ctx context.Context, subjects []shared.SubjectRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.Write(ctx, uniqueSubjects(subjects))
}

// Add appends a subject unless it is blank or already present.
func (s *SubjectStore) Add(ctx context.Context, subject shared.SubjectRef) bool {
	subject = shared.SubjectRef(strings.TrimSpace(string(subject)))
	if subject == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for _, existing := range list {
		if existing == subject {
			return false
		}
	}
	s.list.Write(ctx, uniqueSubjects(append(list, subject)))
	return true
}

// Remove deletes a subject.
func (s *SubjectStore) Remove(ctx context.Context, subject shared.SubjectRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := make([]shared.SubjectRef, 0, len(list))
	for _, existing := range list {
		if existing != subject {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, uniqueSubjects(kept))
	return true
}

func uniqueSubjects(in []shared.SubjectRef) []shared.SubjectRef {
	seen := make(map[shared.SubjectRef]struct{}, len(in))
	out := make([]shared.SubjectRef, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
