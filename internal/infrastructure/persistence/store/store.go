// Package store implements the record stores. Every store owns one storage
// key, reads the whole collection through the codec, applies the change in
// memory and writes the whole collection back.
//
// Each store serializes its own read-modify-write cycle with a mutex, so
// concurrent callers in one process never interleave. Nothing coordinates
// separate processes sharing a backend: the last full write wins.
package store

import (
	"log/slog"
	"time"

	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/kv"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORAGE KEYS
// ══════════════════════════════════════════════════════════════════════════════

const (
	KeySchedule      = "schedule-sessions"
	KeyAttendance    = "attendance-records"
	KeyExams         = "exams-grids"
	KeyDocuments     = "documents"
	KeyCalendar      = "calendar-events"
	KeyNotifications = "notifications"
	KeyActivity      = "activity-feed"
	KeyCoefficients  = "subject-coefficients"
	KeySubjects      = "custom-subjects"
	KeyTeachers      = "teachers-list"
	KeySettings      = "institution-settings"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config is shared by all stores.
type Config struct {
	// Backend is the storage medium. Required.
	Backend kv.Backend

	// Logger receives swallowed storage failures.
	Logger *slog.Logger

	// Diagnostics overrides the default logging sink.
	Diagnostics codec.DiagnosticFunc

	// Now returns the current time; used for ids and timestamps.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Diagnostics == nil {
		c.Diagnostics = codec.LogDiagnostics(c.Logger)
	}
	if c.Now == nil {
		c.Now = timeutil.Now
	}
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY
// ══════════════════════════════════════════════════════════════════════════════

// Stores groups every store bound to one backend.
type Stores struct {
	Schedule      *ScheduleStore
	Attendance    *AttendanceStore
	Exams         *ExamStore
	Documents     *DocumentStore
	Calendar      *CalendarStore
	Notifications *NotificationStore
	Activity      *ActivityStore
	Coefficients  *CoefficientStore
	Subjects      *SubjectStore
	Teachers      *TeacherStore
	Settings      *SettingsSlot
}

// New builds all stores over cfg.Backend.
func New(cfg Config) *Stores {
	return &Stores{
		Schedule:      NewScheduleStore(cfg),
		Attendance:    NewAttendanceStore(cfg),
		Exams:         NewExamStore(cfg),
		Documents:     NewDocumentStore(cfg),
		Calendar:      NewCalendarStore(cfg),
		Notifications: NewNotificationStore(cfg),
		Activity:      NewActivityStore(cfg),
		Coefficients:  NewCoefficientStore(cfg),
		Subjects:      NewSubjectStore(cfg),
		Teachers:      NewTeacherStore(cfg),
		Settings:      NewSettingsSlot(cfg),
	}
}
