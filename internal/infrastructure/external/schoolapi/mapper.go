package schoolapi

import (
	"strings"

	"github.com/edumanage/edumanage-core/internal/domain/roster"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

func displayName(full, name string) string {
	if s := strings.TrimSpace(full); s != "" {
		return s
	}
	return strings.TrimSpace(name)
}

// ToStudent maps a DTO to the domain student.
func (d StudentDTO) ToStudent() roster.Student {
	return roster.Student{
		ID:    d.ID.String(),
		Name:  displayName(d.FullName, d.Name),
		Email: d.Email,
		Phone: d.Phone,
		Group: shared.GroupRef(d.GroupID.String()),
	}
}

// ToContact maps a DTO to the domain contact.
func (d TeacherDTO) ToContact() roster.Contact {
	return roster.Contact{
		ID:         d.ID.String(),
		Name:       displayName(d.FullName, d.Name),
		Email:      d.Email,
		Phone:      d.Phone,
		Speciality: d.Speciality,
	}
}

func toStudents(in []StudentDTO) []roster.Student {
	out := make([]roster.Student, 0, len(in))
	for _, d := range in {
		out = append(out, d.ToStudent())
	}
	return out
}

func toContacts(in []TeacherDTO) []roster.Contact {
	out := make([]roster.Contact, 0, len(in))
	for _, d := range in {
		out = append(out, d.ToContact())
	}
	return out
}
