package store

import (
	"context"
	"sync"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/activity"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// ActivityStore persists the activity feed, capped at activity.MaxItems.
type ActivityStore struct {
	mu   sync.Mutex
	list *codec.List[activity.Item]
	now  func() time.Time
}

var _ activity.Repository = (*ActivityStore)(nil)

// NewActivityStore binds the store to KeyActivity.
func NewActivityStore(cfg Config) *ActivityStore {
	cfg = cfg.withDefaults()
	return &ActivityStore{
		list: codec.NewList[activity.Item](cfg.Backend, KeyActivity, cfg.Diagnostics),
		now:  cfg.Now,
	}
}

// Add stores an item and drops the oldest items beyond the cap.
func (s *ActivityStore) Add(ctx context.Context, item activity.Item) (activity.Item, error) {
	if !item.Type.IsValid() {
		return activity.Item{}, shared.NewDomainError("activity", "Add", shared.ErrValidation,
			"unknown activity type "+string(item.Type))
	}
	if item.ID == "" {
		item.ID = shared.NewID()
	}
	if item.Timestamp == 0 {
		item.Timestamp = s.now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.list.Read(ctx), item)
	s.list.Write(ctx, activity.Cap(list, activity.MaxItems))
	return item, nil
}

// Recent returns up to limit newest items; limit <= 0 means
// activity.DefaultRecentLimit.
func (s *ActivityStore) Recent(ctx context.Context, limit int) []activity.Item {
	if limit <= 0 {
		limit = activity.DefaultRecentLimit
	}

	s.mu.Lock()
	list := s.list.Read(ctx)
	s.mu.Unlock()

	return activity.Cap(list, limit)
}

// Clear removes every item.
func (s *ActivityStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.Write(ctx, nil)
}
