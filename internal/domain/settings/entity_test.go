package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

func TestDefaults_AreValid(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())
	assert.Equal(t, "École Privée Excellence", d.Name)
	require.NotNil(t, d.AutoPrint)
	assert.True(t, *d.AutoPrint)
}

func TestInstitution_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Institution)
	}{
		{"bad email", func(s *Institution) { s.Email = "not-an-email" }},
		{"unknown language", func(s *Institution) { s.Language = "de" }},
		{"unknown font size", func(s *Institution) { s.FontSize = "huge" }},
		{"empty name", func(s *Institution) { s.Name = "" }},
		{"bad timezone", func(s *Institution) { s.TimeZone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	name := "Lycée Al Massira"
	dark := true

	got := Patch{Name: &name, DarkMode: &dark}.Apply(Defaults())

	assert.Equal(t, name, got.Name)
	assert.True(t, got.DarkMode)
	assert.Equal(t, "fr", got.Language)
}
