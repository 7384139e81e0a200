package store

import (
	"context"
	"sync"

	"github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// SettingsSlot persists the single institution settings object. Stored
// fields are read over settings.Defaults.
type SettingsSlot struct {
	mu  sync.Mutex
	obj *codec.Object[settings.Institution]
}

var _ settings.Repository = (*SettingsSlot)(nil)

// NewSettingsSlot binds the slot to KeySettings.
func NewSettingsSlot(cfg Config) *SettingsSlot {
	cfg = cfg.withDefaults()
	return &SettingsSlot{obj: codec.NewObject(cfg.Backend, KeySettings, settings.Defaults, cfg.Diagnostics)}
}

// Load implements settings.Repository.
func (s *SettingsSlot) Load(ctx context.Context) settings.Institution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.obj.Read(ctx)
}

// Save implements settings.Repository.
func (s *SettingsSlot) Save(ctx context.Context, v settings.Institution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obj.Write(ctx, v)
}
