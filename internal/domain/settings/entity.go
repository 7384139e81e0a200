// Package settings содержит настройки учреждения: название, контакты,
// язык интерфейса и оформление печатных документов.
package settings

import (
	"context"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

// Institution - единственный объект настроек учреждения.
type Institution struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	TimeZone    string `json:"timeZone" validate:"omitempty,timezone"`
	Language    string `json:"language" validate:"oneof=fr en ar"`
	DarkMode    bool   `json:"darkMode"`
	FontSize    string `json:"fontSize" validate:"oneof=small medium large"`
	AutoPrint   *bool  `json:"autoPrint,omitempty"`
	LogoDataURL string `json:"logoDataUrl,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Defaults возвращает настройки по умолчанию.
func Defaults() Institution {
	autoPrint := true
	return Institution{
		Name:      "École Privée Excellence",
		Address:   "123 Avenue Mohammed V, Casablanca, Maroc",
		Phone:     "+212 522 123 456",
		Email:     "contact@excellence.ma",
		TimeZone:  "Africa/Casablanca",
		Language:  "fr",
		DarkMode:  false,
		FontSize:  "medium",
		AutoPrint: &autoPrint,
		Location:  "Casablanca, Maroc",
	}
}

// Validate проверяет настройки перед сохранением.
func (s Institution) Validate() error {
	return shared.ValidateStruct("settings", "Validate", s)
}

// Patch перечисляет изменяемые поля настроек.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	TimeZone    *string `json:"timeZone,omitempty"`
	Language    *string `json:"language,omitempty"`
	DarkMode    *bool   `json:"darkMode,omitempty"`
	FontSize    *string `json:"fontSize,omitempty"`
	AutoPrint   *bool   `json:"autoPrint,omitempty"`
	LogoDataURL *string `json:"logoDataUrl,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// Apply возвращает копию настроек с применёнными изменениями.
func (p Patch) Apply(s Institution) Institution {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.TimeZone != nil {
		s.TimeZone = *p.TimeZone
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.AutoPrint != nil {
		v := *p.AutoPrint
		s.AutoPrint = &v
	}
	if p.LogoDataURL != nil {
		s.LogoDataURL = *p.LogoDataURL
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	return s
}

// Repository - хранилище единственного объекта настроек.
type Repository interface {
	// Load возвращает сохранённые настройки поверх значений по умолчанию.
	Load(ctx context.Context) Institution
	// Save сохраняет настройки целиком.
	Save(ctx context.Context, s Institution)
}
