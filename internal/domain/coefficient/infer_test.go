package coefficient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		subject shared.SubjectRef
		want    float64
	}{
		{"Mathématiques", 7},
		{"MATHS", 7},
		{"الرياضيات", 7},
		{"Physique-Chimie", 6},
		{"SVT", 5},
		{"Sciences de la Vie et de la Terre", 1},
		{"Arabe", 4},
		{"Français", 4},
		{"Francais", 4},
		{"English", 3},
		{"Histoire-Géographie", 2},
		{"Éducation Islamique", 2},
		{"Sport", 1},
		{"Philosophie", 1},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.subject), func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.subject, DefaultFallback))
		})
	}
}

func TestInfer_Fallback(t *testing.T) {
	assert.Equal(t, 3.0, Infer("Musique", 3))
}

func TestMap_Lookup(t *testing.T) {
	m := Map{"mathématiques": 9}

	assert.Equal(t, 9.0, m.Lookup("Mathématiques", 1))
	assert.Equal(t, 6.0, m.Lookup("Physique", 1))
	assert.Equal(t, 2.0, m.Lookup("", 2))
}

func TestDefaults(t *testing.T) {
	m := Defaults([]shared.SubjectRef{"Mathématiques", "Anglais"})
	assert.Equal(t, Map{"mathématiques": 7, "anglais": 1}, m)
}

func TestClampAndValidate(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(0))
	assert.Equal(t, 10.0, Clamp(42))
	assert.Equal(t, 4.5, Clamp(4.5))

	assert.NoError(t, Validate(4))
	assert.ErrorIs(t, Validate(0), shared.ErrValueOutOfRange)
	assert.ErrorIs(t, Validate(11), shared.ErrValueOutOfRange)
}
