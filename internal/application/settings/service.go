// Package settings owns the institution settings for the running process.
// Every successful change is persisted first and then broadcast to
// subscribers on a typed topic.
package settings

import (
	"context"
	"log/slog"

	domain "github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/infrastructure/messaging"
)

// TopicName is the name of the settings change topic.
const TopicName = "settings.changed"

// Listener receives the settings value that was just saved.
type Listener = messaging.Handler[domain.Institution]

// Service is the single writer of the settings slot.
type Service struct {
	repo   domain.Repository
	topic  *messaging.Topic[domain.Institution]
	logger *slog.Logger
}

// NewService creates a settings service over repo.
func NewService(repo domain.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		topic:  messaging.NewTopic[domain.Institution](TopicName, logger),
		logger: logger,
	}
}

// Get returns the stored settings merged over the defaults.
func (s *Service) Get(ctx context.Context) domain.Institution {
	return s.repo.Load(ctx)
}

// Put replaces the settings. Invalid settings are rejected before anything
// is written or broadcast. Listeners run synchronously before Put returns.
func (s *Service) Put(ctx context.Context, v domain.Institution) (domain.Institution, error) {
	if err := v.Validate(); err != nil {
		return domain.Institution{}, err
	}
	s.repo.Save(ctx, v)
	s.logger.InfoContext(ctx, "settings saved", "name", v.Name, "language", v.Language)

	// a closed topic only means nobody is listening any more
	if err := s.topic.Publish(v); err != nil {
		s.logger.WarnContext(ctx, "settings broadcast skipped", "error", err)
	}
	return v, nil
}

// Update merges p into the current settings and saves the result.
func (s *Service) Update(ctx context.Context, p domain.Patch) (domain.Institution, error) {
	return s.Put(ctx, p.Apply(s.Get(ctx)))
}

// Reset restores the default settings.
func (s *Service) Reset(ctx context.Context) (domain.Institution, error) {
	return s.Put(ctx, domain.Defaults())
}

// Subscribe registers l for future changes. Call Unsubscribe on the
// returned subscription to stop receiving them.
func (s *Service) Subscribe(l Listener) (*messaging.Subscription, error) {
	return s.topic.Subscribe(l)
}

// Stats reports broadcast counters.
func (s *Service) Stats() messaging.Stats {
	return s.topic.Stats()
}

// Close stops broadcasting and drops all subscribers.
func (s *Service) Close() error {
	return s.topic.Close()
}
