package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumanage/edumanage-core/internal/domain/schedule"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

func session(id string, day int, start, end string, group shared.GroupRef) schedule.Session {
	return schedule.Session{
		ID: id, Title: "Cours", Teacher: "M. Alaoui", Group: group, Subject: "Mathématiques",
		Classroom: "Salle 3", StartTime: start, EndTime: end, Day: day, Level: "2BAC", Students: 28,
	}
}

func TestScheduleStore_ByDaySortedByStart(t *testing.T) {
	cfg, _ := testConfig(t)
	s := NewScheduleStore(cfg)
	ctx := context.Background()

	for _, sess := range []schedule.Session{
		session("a", 1, "14:00", "16:00", "G1"),
		session("b", 1, "08:30", "10:00", "G1"),
		session("c", 2, "09:00", "10:00", "G1"),
		session("d", 1, "10:15", "12:00", "G2"),
	} {
		_, err := s.Add(ctx, sess)
		require.NoError(t, err)
	}

	monday := s.ByDay(ctx, 1)
	require.Len(t, monday, 3)
	assert.Equal(t, []string{"b", "d", "a"}, []string{monday[0].ID, monday[1].ID, monday[2].ID})

	assert.Len(t, s.ByGroup(ctx, " G1 "), 3)
}

func TestScheduleStore_AddRejectsInvalidSessions(t *testing.T) {
	cfg, _ := testConfig(t)
	s := NewScheduleStore(cfg)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end string
	}{
		{"before school day", "07:30", "09:00"},
		{"after school day", "22:00", "23:30"},
		{"end before start", "10:00", "09:00"},
		{"equal times", "10:00", "10:00"},
		{"malformed", "9h", "10:00"},
		{"signed hour", "+9:00", "+9:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(ctx, session("", 1, tt.start, tt.end, "G1"))
			assert.True(t, shared.IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, s.All(ctx))
}

func TestScheduleStore_AddGeneratesIDAndReplacesExisting(t *testing.T) {
	cfg, _ := testConfig(t)
	s := NewScheduleStore(cfg)
	ctx := context.Background()

	created, err := s.Add(ctx, session("", 3, "08:00", "09:00", "G1"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	created.Classroom = "Labo"
	_, err = s.Add(ctx, created)
	require.NoError(t, err)

	all := s.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "Labo", all[0].Classroom)
}

func TestScheduleStore_Update(t *testing.T) {
	cfg, _ := testConfig(t)
	s := NewScheduleStore(cfg)
	ctx := context.Background()

	_, err := s.Add(ctx, session("a", 1, "08:00", "09:00", "G1"))
	require.NoError(t, err)

	end := "10:00"
	updated, ok, err := s.Update(ctx, "a", schedule.Patch{EndTime: &end})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10:00", updated.EndTime)

	bad := "07:00"
	_, ok, err = s.Update(ctx, "a", schedule.Patch{EndTime: &bad})
	assert.True(t, ok)
	assert.Error(t, err)
	got, _ := s.Get(ctx, "a")
	assert.Equal(t, "10:00", got.EndTime, "invalid patch is not persisted")

	_, ok, err = s.Update(ctx, "missing", schedule.Patch{EndTime: &end})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduleStore_ReplaceGroupAndClear(t *testing.T) {
	cfg, _ := testConfig(t)
	s := NewScheduleStore(cfg)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, []schedule.Session{
		session("a", 1, "08:00", "09:00", "G1"),
		session("b", 1, "09:00", "10:00", "G2"),
	}))

	require.NoError(t, s.ReplaceGroup(ctx, "G1", []schedule.Session{
		session("", 2, "08:00", "09:00", ""),
		session("", 3, "08:00", "09:00", ""),
	}))

	g1 := s.ByGroup(ctx, "G1")
	assert.Len(t, g1, 2)
	assert.Len(t, s.ByGroup(ctx, "G2"), 1)

	assert.True(t, s.Remove(ctx, "b"))
	assert.False(t, s.Remove(ctx, "b"))

	s.Clear(ctx)
	assert.Empty(t, s.All(ctx))
}
