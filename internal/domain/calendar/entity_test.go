package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

func TestEvent_Overlaps(t *testing.T) {
	e := Event{Start: "2025-03-10T09:00", End: "2025-03-12T17:00"}
	day := func(s string) (from, to string) { return s + "T00:00", s + "T23:59" }

	check := func(d string) bool {
		f, to := day(d)
		from, _ := timeutil.ParseDateTime(f)
		until, _ := timeutil.ParseDateTime(to)
		return e.Overlaps(from, until)
	}

	assert.False(t, check("2025-03-09"))
	assert.True(t, check("2025-03-10"))
	assert.True(t, check("2025-03-11"))
	assert.True(t, check("2025-03-12"))
	assert.False(t, check("2025-03-13"))
}

func TestSortByStart(t *testing.T) {
	events := []Event{
		{ID: "late", Start: "2025-06-01T10:00"},
		{ID: "early", Start: "2025-01-15T08:00:00Z"},
		{ID: "mid", Start: "2025-03-01"},
	}
	SortByStart(events)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, "mid", events[1].ID)
	assert.Equal(t, "late", events[2].ID)
}

func TestEvent_Validate(t *testing.T) {
	ok := Event{Title: "Conseil de classe", Type: TypeMeeting, Start: "2025-03-10T09:00", End: "2025-03-10T11:00"}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Type = "party"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.End = "tomorrow"
	assert.Error(t, bad.Validate())
}
