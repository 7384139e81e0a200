package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// Soft References
// ═══════════════════════════════════════════════════════════════════════════
//
// Records link to each other by display name only. Nothing checks that the
// referenced group, student, teacher or subject exists, and renaming one of
// them silently orphans the records that point at the old name.

// GroupRef names a class group (e.g. "2BAC-SM-1").
type GroupRef string

// StudentRef names a student as typed by staff.
type StudentRef string

// TeacherRef names a teacher.
type TeacherRef string

// SubjectRef names a subject (e.g. "Mathématiques").
type SubjectRef string

// String returns the string representation.
func (g GroupRef) String() string { return string(g) }

// Trimmed returns the reference without surrounding whitespace.
func (g GroupRef) Trimmed() GroupRef { return GroupRef(strings.TrimSpace(string(g))) }

// EqualFold reports whether two group references name the same group, ignoring case.
func (g GroupRef) EqualFold(other GroupRef) bool {
	return strings.EqualFold(string(g), string(other))
}

// String returns the string representation.
func (s StudentRef) String() string { return string(s) }

// EqualFold reports whether two student references name the same student, ignoring case.
func (s StudentRef) EqualFold(other StudentRef) bool {
	return strings.EqualFold(string(s), string(other))
}

// String returns the string representation.
func (t TeacherRef) String() string { return string(t) }

// String returns the string representation.
func (s SubjectRef) String() string { return string(s) }

// Key returns the case-insensitive lookup key of a subject.
func (s SubjectRef) Key() string { return strings.ToLower(string(s)) }

// EqualFold reports whether two subject references name the same subject, ignoring case.
func (s SubjectRef) EqualFold(other SubjectRef) bool {
	return s.Key() == other.Key()
}

// ═══════════════════════════════════════════════════════════════════════════
// Identifiers
// ═══════════════════════════════════════════════════════════════════════════

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// NewTimestampID returns an identifier of the form "<unix-ms>-<6 random chars>".
func NewTimestampID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}
