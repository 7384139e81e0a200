package activity

import (
	"context"
)

// Recorder - то, что нужно остальным модулям для записи в журнал.
// Реализация находится в infrastructure/persistence/store.
type Recorder interface {
	// Add добавляет запись; пустые ID и Timestamp заполняются автоматически.
	Add(ctx context.Context, item Item) (Item, error)
}

// Repository определяет полный контракт хранилища журнала.
type Repository interface {
	Recorder

	// Recent возвращает до limit последних записей (limit <= 0 - DefaultRecentLimit).
	Recent(ctx context.Context, limit int) []Item

	// Clear очищает журнал.
	Clear(ctx context.Context)
}
