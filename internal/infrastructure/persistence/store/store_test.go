package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumanage/edumanage-core/internal/domain/activity"
	"github.com/edumanage/edumanage-core/internal/domain/attendance"
	"github.com/edumanage/edumanage-core/internal/domain/calendar"
	"github.com/edumanage/edumanage-core/internal/domain/document"
	"github.com/edumanage/edumanage-core/internal/domain/exam"
	"github.com/edumanage/edumanage-core/internal/domain/notification"
	"github.com/edumanage/edumanage-core/internal/domain/roster"
	"github.com/edumanage/edumanage-core/internal/domain/schedule"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// fakeClock advances by one millisecond on every call.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, timeutil.CasablancaTZ)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func testConfig(t *testing.T) (Config, *kv.Memory) {
	t.Helper()
	b := kv.NewMemory()
	return Config{
		Backend: b,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     newFakeClock().Now,
	}, b
}

func TestNew_BindsEveryKey(t *testing.T) {
	cfg, b := testConfig(t)
	ctx := context.Background()
	s := New(cfg)

	s.Schedule.Clear(ctx)
	s.Notifications.Clear(ctx)
	s.Activity.Clear(ctx)
	s.Subjects.SetAll(ctx, nil)
	s.Settings.Save(ctx, s.Settings.Load(ctx))

	for _, key := range []string{KeySchedule, KeyNotifications, KeyActivity, KeySubjects, KeySettings} {
		_, err := b.Get(ctx, key)
		assert.NoError(t, err, key)
	}
}

func TestStores_SurviveCorruptContent(t *testing.T) {
	cfg, b := testConfig(t)
	ctx := context.Background()

	var diags []codec.Diagnostic
	cfg.Diagnostics = func(_ context.Context, d codec.Diagnostic) { diags = append(diags, d) }

	require.NoError(t, b.Set(ctx, KeyDocuments, "{not json"))
	s := New(cfg)

	assert.Empty(t, s.Documents.All(ctx))
	require.Len(t, diags, 1)
	assert.Equal(t, KeyDocuments, diags[0].Key)
}

// seedEveryStore writes one representative record per key, with optional
// and pointer fields both set and left empty.
func seedEveryStore(ctx context.Context, t *testing.T, s *Stores) {
	t.Helper()

	_, err := s.Schedule.Add(ctx, schedule.Session{
		ID: "s1", Title: "Algèbre", Teacher: "M. Alaoui", Group: "1BAC-SM", Subject: "Mathématiques",
		Classroom: "Salle 3", StartTime: "08:30", EndTime: "10:00", Day: 1, Students: 28, Color: "#3b82f6",
	})
	require.NoError(t, err)

	require.NoError(t, s.Attendance.SaveBatch(ctx, "2025-03-10", "1BAC-SM", []attendance.StudentStatus{
		{Student: "Amine Tazi", Status: attendance.StatusPresent},
		{Student: "Sara Bennani", Status: attendance.StatusLate},
	}))

	_, err = s.Exams.Save(ctx, exam.Grid{
		ID: "g1", Title: "1BAC SM", Subject: "Physique", Semester: "2024-S1",
		Students: []shared.StudentRef{"Amine Tazi", "Sara Bennani"},
		Rows: []exam.Row{
			{ExamLabel: "Contrôle 1", Grades: []*float64{exam.Grade(14.5), nil}, Date: "2025-01-15"},
			{ExamLabel: "Contrôle 2", Grades: []*float64{nil, exam.Grade(9)}},
		},
	})
	require.NoError(t, err)

	_, err = s.Documents.Add(ctx, document.Record{
		Title: "Bulletin", Type: document.TypeReportCard, OwnerName: "Sara Bennani", OwnerID: "42",
		DataURL: "data:application/pdf;base64,JVBERi0=",
		Template: &document.Template{
			GroupName:  "1BAC-SM",
			Subjects:   []document.SubjectLine{{Subject: "Physique", Average: 11.75}},
			OverallAvg: exam.Grade(11.75),
		},
	})
	require.NoError(t, err)
	_, err = s.Documents.Add(ctx, document.Record{Title: "Scan <CIN>", OwnerName: "Amine & fils"})
	require.NoError(t, err)

	_, err = s.Calendar.Add(ctx, calendar.Event{
		Title: "Conseil de classe", Type: calendar.TypeMeeting, Location: "Salle des profs",
		Start: "2025-03-10T15:00", End: "2025-03-10T17:00",
	})
	require.NoError(t, err)

	_, err = s.Notifications.Add(ctx, notification.Item{Title: "Paiement reçu", Message: "1 200 MAD", Type: notification.TypeSuccess})
	require.NoError(t, err)

	_, err = s.Activity.Add(ctx, activity.Item{Type: activity.TypeEnrollment, Message: "Inscription de Sara"})
	require.NoError(t, err)

	require.NoError(t, s.Coefficients.Set(ctx, "Mathématiques", 7))
	require.NoError(t, s.Coefficients.Set(ctx, "Éducation physique", 1.5))

	s.Subjects.SetAll(ctx, []shared.SubjectRef{"Robotique", "Théâtre"})

	s.Teachers.Add(ctx, roster.Teacher{Name: "Mme Benali", Phone: "0612345678", Subjects: []shared.SubjectRef{"Français"}})
	s.Teachers.Add(ctx, roster.Teacher{Name: "M. Idrissi", Phone: "0698765432"})

	inst := s.Settings.Load(ctx)
	autoPrint := true
	inst.Name = "Lycée Ibn Sina"
	inst.AutoPrint = &autoPrint
	s.Settings.Save(ctx, inst)
}

func TestStores_WriteReadIsByteIdentical(t *testing.T) {
	cfg, b := testConfig(t)
	ctx := context.Background()
	s := New(cfg)
	seedEveryStore(ctx, t, s)

	tests := []struct {
		key   string
		cycle func()
	}{
		{KeySchedule, func() { s.Schedule.list.Write(ctx, s.Schedule.list.Read(ctx)) }},
		{KeyAttendance, func() { s.Attendance.list.Write(ctx, s.Attendance.list.Read(ctx)) }},
		{KeyExams, func() { s.Exams.list.Write(ctx, s.Exams.list.Read(ctx)) }},
		{KeyDocuments, func() { s.Documents.list.Write(ctx, s.Documents.list.Read(ctx)) }},
		{KeyCalendar, func() { s.Calendar.list.Write(ctx, s.Calendar.list.Read(ctx)) }},
		{KeyNotifications, func() { s.Notifications.list.Write(ctx, s.Notifications.list.Read(ctx)) }},
		{KeyActivity, func() { s.Activity.list.Write(ctx, s.Activity.list.Read(ctx)) }},
		{KeyCoefficients, func() { s.Coefficients.obj.Write(ctx, s.Coefficients.obj.Read(ctx)) }},
		{KeySubjects, func() { s.Subjects.list.Write(ctx, s.Subjects.list.Read(ctx)) }},
		{KeyTeachers, func() { s.Teachers.list.Write(ctx, s.Teachers.list.Read(ctx)) }},
		{KeySettings, func() { s.Settings.obj.Write(ctx, s.Settings.obj.Read(ctx)) }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			before, err := b.Get(ctx, tt.key)
			require.NoError(t, err)
			require.NotEqual(t, "[]", before)

			tt.cycle()

			after, err := b.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}
