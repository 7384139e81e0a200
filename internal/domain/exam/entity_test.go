package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

func TestKey_MatchesLookup(t *testing.T) {
	math := Grid{ID: "g1", Subject: "Mathématiques", Semester: "2024-S1"}
	noSubject := Grid{ID: "g1", Semester: "2024-S1"}

	assert.True(t, Key{ID: "g1", Subject: "mathématiques"}.MatchesLookup(math))
	assert.True(t, Key{ID: "g1", Subject: "MATHÉMATIQUES", Semester: "2024-S1"}.MatchesLookup(math))
	assert.False(t, Key{ID: "g1", Subject: "Mathématiques", Semester: "2024-S2"}.MatchesLookup(math))
	assert.False(t, Key{ID: "g1", Subject: "Physique"}.MatchesLookup(math))
	assert.False(t, Key{ID: "g2", Subject: "Mathématiques"}.MatchesLookup(math))

	// An empty subject only finds grids that also have no subject.
	assert.False(t, Key{ID: "g1"}.MatchesLookup(math))
	assert.True(t, Key{ID: "g1"}.MatchesLookup(noSubject))
}

func TestStudentAverage(t *testing.T) {
	g := Grid{
		Students: []shared.StudentRef{"Amine", "Sara"},
		Rows: []Row{
			{ExamLabel: "Exam 1", Grades: []*float64{Grade(12), nil}},
			{ExamLabel: "Exam 2", Grades: []*float64{Grade(15), nil}},
		},
	}

	avg, ok := StudentAverage(g, 0)
	assert.True(t, ok)
	assert.Equal(t, 13.5, avg)

	_, ok = StudentAverage(g, 1)
	assert.False(t, ok)

	_, ok = StudentAverage(g, 5)
	assert.False(t, ok)
}

func TestWeightedAverage(t *testing.T) {
	weights := map[shared.SubjectRef]float64{"Maths": 7, "Sport": 1, "Ignored": 0}
	coef := func(s shared.SubjectRef) float64 { return weights[s] }

	avg, ok := WeightedAverage([]SubjectAverage{
		{Subject: "Maths", Average: 16},
		{Subject: "Sport", Average: 8},
		{Subject: "Ignored", Average: 0},
	}, coef)

	assert.True(t, ok)
	assert.Equal(t, 15.0, avg)

	_, ok = WeightedAverage(nil, coef)
	assert.False(t, ok)
}

func TestGrid_Validate(t *testing.T) {
	g := Grid{ID: "g1", Semester: "2024-S1", Students: []shared.StudentRef{"A"}}
	assert.NoError(t, g.Validate())

	g.Rows = []Row{{ExamLabel: "Exam 1", Grades: []*float64{Grade(1), Grade(2)}}}
	assert.Error(t, g.Validate())

	assert.Error(t, Grid{Semester: "2024-S1"}.Validate())
	assert.Error(t, Grid{ID: "g1"}.Validate())
}
