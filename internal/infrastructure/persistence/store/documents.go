package store

import (
	"context"
	"sync"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/document"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// DocumentStore persists document records, newest first.
type DocumentStore struct {
	mu   sync.Mutex
	list *codec.List[document.Record]
	now  func() time.Time
}

// NewDocumentStore binds the store to KeyDocuments.
func NewDocumentStore(cfg Config) *DocumentStore {
	cfg = cfg.withDefaults()
	return &DocumentStore{
		list: codec.NewList[document.Record](cfg.Backend, KeyDocuments, cfg.Diagnostics),
		now:  cfg.Now,
	}
}

// All returns every record, newest first.
func (s *DocumentStore) All(ctx context.Context) []document.Record {
	s.mu.Lock()
	list := s.list.Read(ctx)
	s.mu.Unlock()

	document.SortNewestFirst(list)
	return list
}

// Get returns the record with id.
func (s *DocumentStore) Get(ctx context.Context, id string) (document.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.list.Read(ctx) {
		if d.ID == id {
			return d, true
		}
	}
	return document.Record{}, false
}

// ByOwner returns the records whose owner name or id contains term, ignoring case.
func (s *DocumentStore) ByOwner(ctx context.Context, term string) []document.Record {
	out := make([]document.Record, 0)
	for _, d := range s.All(ctx) {
		if d.MatchesOwner(term) {
			out = append(out, d)
		}
	}
	return out
}

// Add stores a new record at the head of the collection. A missing id
// ("<unix-ms>-<6 chars>") and creation time are generated.
func (s *DocumentStore) Add(ctx context.Context, rec document.Record) (document.Record, error) {
	if rec.Type == "" {
		rec.Type = document.TypeOther
	}
	if !rec.Type.IsValid() {
		return document.Record{}, shared.NewDomainError("document", "Add", shared.ErrValidation,
			"invalid document type "+string(rec.Type))
	}
	now := s.now()
	if rec.ID == "" {
		rec.ID = shared.NewTimestampID(now)
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now.UnixMilli()
	}
	if rec.Size == 0 && rec.DataURL != "" {
		rec.Size = len(rec.DataURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	s.list.Write(ctx, append([]document.Record{rec}, list...))
	return rec, nil
}

// Update applies p to the record with id.
func (s *DocumentStore) Update(ctx context.Context, id string, p document.Patch) (document.Record, bool) {
	rec, ok, _ := s.Modify(ctx, id, func(r document.Record) (document.Record, error) {
		return p.Apply(r), nil
	})
	return rec, ok
}

// Modify replaces the record with id by fn's result. Nothing is written
// when fn fails. ok is false when no record has that id.
func (s *DocumentStore) Modify(ctx context.Context, id string, fn func(document.Record) (document.Record, error)) (document.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		if list[i].ID != id {
			continue
		}
		updated, err := fn(list[i])
		if err != nil {
			return list[i], true, err
		}
		updated.ID = id
		list[i] = updated
		s.list.Write(ctx, list)
		return updated, true, nil
	}
	return document.Record{}, false, nil
}

// Remove deletes the record with id.
func (s *DocumentStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := list[:0]
	for _, d := range list {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, kept)
	return true
}
