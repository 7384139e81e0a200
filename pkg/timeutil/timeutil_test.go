package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"23:00", 1380, false},
		{"13:45", 825, false},
		{"8:00", 0, true},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"ab:cd", 0, true},
		{"+9:00", 0, true},
		{"08:+5", 0, true},
		{"-1:30", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, FormatClock(got))
		})
	}
}

func TestWithinSchoolDay(t *testing.T) {
	assert.True(t, WithinSchoolDay(SchoolDayStart))
	assert.True(t, WithinSchoolDay(SchoolDayEnd))
	assert.False(t, WithinSchoolDay(7*60+59))
	assert.False(t, WithinSchoolDay(23*60+1))
}

func TestParseDateTime(t *testing.T) {
	for _, in := range []string{
		"2025-03-10T09:30:00Z",
		"2025-03-10T09:30:00+01:00",
		"2025-03-10T09:30",
		"2025-03-10 09:30",
		"2025-03-10",
	} {
		got, err := ParseDateTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2025, got.Year())
		assert.Equal(t, time.March, got.Month())
	}

	_, err := ParseDateTime("10/03/2025")
	assert.Error(t, err)
}

func TestISODate(t *testing.T) {
	d, err := ParseISODate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", ISODate(d))

	_, err = ParseISODate("2025-02-30")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 3, 9, 14, 5, 0, 0, CasablancaTZ)
	assert.Equal(t, "09/03/2025", FormatDate(d, "fr"))
	assert.Equal(t, "03/09/2025", FormatDate(d, "en"))
	assert.Equal(t, "09/03/2025 14:05", FormatDateTime(d, "fr"))
	assert.Equal(t, "Lundi", WeekdayNameFr(1))
	assert.Equal(t, "", WeekdayNameFr(7))
}
