package store

import (
	"context"
	"sync"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/notification"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// NotificationStore persists the notification feed, capped at
// notification.MaxItems most recent items.
type NotificationStore struct {
	mu   sync.Mutex
	list *codec.List[notification.Item]
	now  func() time.Time
}

// NewNotificationStore binds the store to KeyNotifications.
func NewNotificationStore(cfg Config) *NotificationStore {
	cfg = cfg.withDefaults()
	return &NotificationStore{
		list: codec.NewList[notification.Item](cfg.Backend, KeyNotifications, cfg.Diagnostics),
		now:  cfg.Now,
	}
}

// All returns every item, newest first.
func (s *NotificationStore) All(ctx context.Context) []notification.Item {
	s.mu.Lock()
	list := s.list.Read(ctx)
	s.mu.Unlock()

	notification.SortNewestFirst(list)
	return list
}

// Latest returns the newest item.
func (s *NotificationStore) Latest(ctx context.Context) (notification.Item, bool) {
	list := s.All(ctx)
	if len(list) == 0 {
		return notification.Item{}, false
	}
	return list[0], true
}

// UnreadCount returns the number of unread items.
func (s *NotificationStore) UnreadCount(ctx context.Context) int {
	return notification.UnreadCount(s.All(ctx))
}

// Add validates and stores an item, then drops the oldest items beyond the cap.
func (s *NotificationStore) Add(ctx context.Context, item notification.Item) (notification.Item, error) {
	if item.Type == "" {
		item.Type = notification.TypeInfo
	}
	if err := item.Validate(); err != nil {
		return notification.Item{}, err
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
	s.list.Write(ctx, notification.Cap(list, notification.MaxItems))
	return item, nil
}

// MarkRead flags the item with id as read.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			s.list.Write(ctx, list)
			return true
		}
	}
	return false
}

// MarkAllRead flags every item as read.
func (s *NotificationStore) MarkAllRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		list[i].Read = true
	}
	s.list.Write(ctx, list)
}

// Remove deletes the item with id.
func (s *NotificationStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := list[:0]
	for _, n := range list {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, kept)
	return true
}

// Clear removes every item.
func (s *NotificationStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.Write(ctx, nil)
}
