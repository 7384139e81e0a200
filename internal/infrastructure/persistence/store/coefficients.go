package store

import (
	"context"
	"sync"

	"github.com/edumanage/edumanage-core/internal/domain/coefficient"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// CoefficientStore persists explicit subject weights as one JSON object.
// Subjects without an explicit weight fall back to coefficient.Infer.
type CoefficientStore struct {
	mu  sync.Mutex
	obj *codec.Object[coefficient.Map]
}

// NewCoefficientStore binds the store to KeyCoefficients.
func NewCoefficientStore(cfg Config) *CoefficientStore {
	cfg = cfg.withDefaults()
	return &CoefficientStore{
		obj: codec.NewObject(cfg.Backend, KeyCoefficients, func() coefficient.Map { return coefficient.Map{} }, cfg.Diagnostics),
	}
}

func (s *CoefficientStore) read(ctx context.Context) coefficient.Map {
	m := s.obj.Read(ctx)
	if m == nil {
		m = coefficient.Map{}
	}
	return m
}

// All returns the explicit overrides.
func (s *CoefficientStore) All(ctx context.Context) coefficient.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Get returns the weight of subject with coefficient.DefaultFallback.
func (s *CoefficientStore) Get(ctx context.Context, subject shared.SubjectRef) float64 {
	return s.GetOr(ctx, subject, coefficient.DefaultFallback)
}

// GetOr returns the explicit weight of subject, the inferred one, or fallback.
func (s *CoefficientStore) GetOr(ctx context.Context, subject shared.SubjectRef, fallback float64) float64 {
	return s.All(ctx).Lookup(subject, fallback)
}

// Set stores an explicit weight for subject.
func (s *CoefficientStore) Set(ctx context.Context, subject shared.SubjectRef, value float64) error {
	if subject == "" {
		return shared.NewDomainError("coefficient", "Set", shared.ErrEmptyValue, "subject is required")
	}
	if err := coefficient.Validate(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.read(ctx)
	m[subject.Key()] = value
	s.obj.Write(ctx, m)
	return nil
}

// Remove drops the explicit weight of subject.
func (s *CoefficientStore) Remove(ctx context.Context, subject shared.SubjectRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.read(ctx)
	if _, ok := m[subject.Key()]; !ok {
		return false
	}
	delete(m, subject.Key())
	s.obj.Write(ctx, m)
	return true
}

// DefaultsFor returns the inferred weights of subjects, ignoring overrides.
func (s *CoefficientStore) DefaultsFor(subjects []shared.SubjectRef) coefficient.Map {
	return coefficient.Defaults(subjects)
}

// Resolver snapshots the overrides and returns a lookup function suitable
// for exam.WeightedAverage.
func (s *CoefficientStore) Resolver(ctx context.Context) func(shared.SubjectRef) float64 {
	m := s.All(ctx)
	return func(subject shared.SubjectRef) float64 {
		return m.Lookup(subject, coefficient.DefaultFallback)
	}
}
