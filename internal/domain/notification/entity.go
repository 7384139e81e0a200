// Package notification содержит доменную модель уведомлений панели администратора.
// Лента хранит не больше MaxItems последних уведомлений.
package notification

import (
	"sort"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

// MaxItems - предел длины ленты уведомлений.
const MaxItems = 300

// Type определяет визуальный тип уведомления.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Item - одно уведомление. Timestamp - Unix миллисекунды.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message"`
	Type      Type   `json:"type" validate:"oneof=info success warning error"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
}

// Validate проверяет заголовок и тип.
func (n Item) Validate() error {
	return shared.ValidateStruct("notification", "Validate", n)
}

// SortNewestFirst сортирует уведомления по времени, новые первыми.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
}

// Cap сортирует ленту и обрезает её до limit самых свежих элементов.
func Cap(items []Item, limit int) []Item {
	SortNewestFirst(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// UnreadCount возвращает количество непрочитанных уведомлений.
func UnreadCount(items []Item) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}
