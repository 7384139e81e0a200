package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/store"
)

func newTestService(t *testing.T) (*Service, *store.SettingsSlot) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	slot := store.NewSettingsSlot(store.Config{Backend: kv.NewMemory(), Logger: logger})
	svc := NewService(slot, logger)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, slot
}

func TestService_PutPersistsThenBroadcasts(t *testing.T) {
	svc, slot := newTestService(t)
	ctx := context.Background()

	var got []domain.Institution
	sub, err := svc.Subscribe(func(v domain.Institution) {
		// the value is already readable from the slot when listeners run
		assert.Equal(t, v.Name, slot.Load(ctx).Name)
		got = append(got, v)
	})
	require.NoError(t, err)

	v := domain.Defaults()
	v.Name = "Lycée Ibn Sina"
	v.Language = "ar"
	saved, err := svc.Put(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, v, saved)

	require.Len(t, got, 1)
	assert.Equal(t, v, got[0])
	assert.Equal(t, "ar", svc.Get(ctx).Language)

	sub.Unsubscribe()
	_, err = svc.Put(ctx, domain.Defaults())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(2), svc.Stats().Published)
}

func TestService_PutRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	calls := 0
	_, err := svc.Subscribe(func(domain.Institution) { calls++ })
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*domain.Institution)
	}{
		{"bad email", func(v *domain.Institution) { v.Email = "not-an-email" }},
		{"empty name", func(v *domain.Institution) { v.Name = "" }},
		{"unknown language", func(v *domain.Institution) { v.Language = "de" }},
		{"unknown font size", func(v *domain.Institution) { v.FontSize = "huge" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := domain.Defaults()
			tt.mutate(&v)
			_, err := svc.Put(ctx, v)
			assert.True(t, shared.IsValidation(err), "got %v", err)
		})
	}

	assert.Zero(t, calls)
	assert.Equal(t, domain.Defaults(), svc.Get(ctx))
}

func TestService_UpdateAndReset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dark := true
	phone := "+212 600 000 000"
	updated, err := svc.Update(ctx, domain.Patch{DarkMode: &dark, Phone: &phone})
	require.NoError(t, err)
	assert.True(t, updated.DarkMode)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, domain.Defaults().Name, updated.Name)

	reset, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), reset)
	assert.False(t, svc.Get(ctx).DarkMode)
}

func TestService_SubscribeAfterClose(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Close())

	_, err := svc.Subscribe(func(domain.Institution) {})
	assert.Error(t, err)
}
