package store

import (
	"context"
	"sync"

	"github.com/edumanage/edumanage-core/internal/domain/attendance"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/persistence/codec"
)

// AttendanceStore persists attendance marks. At most one record exists per
// (date, group, student) key.
type AttendanceStore struct {
	mu   sync.Mutex
	list *codec.List[attendance.Record]
}

// NewAttendanceStore binds the store to KeyAttendance.
func NewAttendanceStore(cfg Config) *AttendanceStore {
	cfg = cfg.withDefaults()
	return &AttendanceStore{list: codec.NewList[attendance.Record](cfg.Backend, KeyAttendance, cfg.Diagnostics)}
}

// All returns every record in stored order.
func (s *AttendanceStore) All(ctx context.Context) []attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Read(ctx)
}

// Get returns the record with key.
func (s *AttendanceStore) Get(ctx context.Context, key attendance.Key) (attendance.Record, bool) {
	for _, r := range s.All(ctx) {
		if r.Key() == key {
			return r, true
		}
	}
	return attendance.Record{}, false
}

// Add validates and stores one record, replacing any record with the same key.
func (s *AttendanceStore) Add(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if err := rec.Validate(); err != nil {
		return attendance.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		if list[i].Key() == rec.Key() {
			list[i] = rec
			s.list.Write(ctx, list)
			return rec, nil
		}
	}
	s.list.Write(ctx, append(list, rec))
	return rec, nil
}

// SaveBatch records one sheet: the statuses of several students of a group
// on one date. Existing records for the same keys are dropped first, so
// saving the same sheet twice leaves a single record per student. Within
// the batch the last entry for a student wins.
func (s *AttendanceStore) SaveBatch(ctx context.Context, date string, group shared.GroupRef, students []attendance.StudentStatus) error {
	incoming := make([]attendance.Record, 0, len(students))
	index := make(map[shared.StudentRef]int, len(students))
	for _, st := range students {
		rec := attendance.Record{Date: date, Group: group, Student: st.Student, Status: st.Status}
		if err := rec.Validate(); err != nil {
			return err
		}
		if i, ok := index[st.Student]; ok {
			incoming[i] = rec
			continue
		}
		index[st.Student] = len(incoming)
		incoming = append(incoming, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := make([]attendance.Record, 0, len(list)+len(incoming))
	for _, r := range list {
		if r.Date == date && r.Group == group {
			if _, replaced := index[r.Student]; replaced {
				continue
			}
		}
		kept = append(kept, r)
	}
	s.list.Write(ctx, append(kept, incoming...))
	return nil
}

// UpdateStatus changes the status of the record with key.
func (s *AttendanceStore) UpdateStatus(ctx context.Context, key attendance.Key, status attendance.Status) (attendance.Record, bool, error) {
	if !status.IsValid() {
		return attendance.Record{}, false, shared.NewDomainError("attendance", "UpdateStatus", shared.ErrValidation,
			"invalid status "+string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	for i := range list {
		if list[i].Key() == key {
			list[i].Status = status
			s.list.Write(ctx, list)
			return list[i], true, nil
		}
	}
	return attendance.Record{}, false, nil
}

// Remove deletes the record with key.
func (s *AttendanceStore) Remove(ctx context.Context, key attendance.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list.Read(ctx)
	kept := list[:0]
	for _, r := range list {
		if r.Key() != key {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.list.Write(ctx, kept)
	return true
}

// ForStudent returns the records of a student in a group, ignoring case.
func (s *AttendanceStore) ForStudent(ctx context.Context, group shared.GroupRef, student shared.StudentRef) []attendance.Record {
	out := make([]attendance.Record, 0)
	for _, r := range s.All(ctx) {
		if r.Group.EqualFold(group) && r.Student.EqualFold(student) {
			out = append(out, r)
		}
	}
	return out
}

// ForDate returns the sheet of a group on one date.
func (s *AttendanceStore) ForDate(ctx context.Context, date string, group shared.GroupRef) []attendance.Record {
	out := make([]attendance.Record, 0)
	for _, r := range s.All(ctx) {
		if r.Date == date && r.Group.EqualFold(group) {
			out = append(out, r)
		}
	}
	return out
}

// Percentage returns the attendance rate of a student; ok is false when
// the student has no records.
func (s *AttendanceStore) Percentage(ctx context.Context, group shared.GroupRef, student shared.StudentRef) (float64, bool) {
	return attendance.Percentage(s.ForStudent(ctx, group, student))
}
