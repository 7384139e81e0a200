package roster

import "github.com/edumanage/edumanage-core/internal/domain/shared"

// Student - ученик из удалённого справочника учреждения. Локально не
// хранится: документы ссылаются на него по имени и ID.
type Student struct {
	ID    string
	Name  string
	Email string
	Phone string
	Group shared.GroupRef
}

// Contact - сотрудник из удалённого справочника.
type Contact struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Speciality string
}
