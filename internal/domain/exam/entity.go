// Package exam содержит доменную модель сеток оценок (exam grids).
// Сетка принадлежит паре (группа, предмет, семестр): строки - контрольные,
// столбцы - ученики группы.
package exam

import (
	"math"
	"strings"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: GRID
// ══════════════════════════════════════════════════════════════════════════════

// Row - одна контрольная: по оценке на каждого ученика (nil = нет оценки).
type Row struct {
	ExamLabel string     `json:"examLabel"`
	Grades    []*float64 `json:"grades"`
	Comments  []*string  `json:"comments,omitempty"`
	Date      string     `json:"date,omitempty"`
}

// Grid - сетка оценок группы по предмету за семестр.
// ID - идентификатор группы, а не самой сетки: у группы много сеток.
type Grid struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Subject   shared.SubjectRef   `json:"subject,omitempty"`
	Students  []shared.StudentRef `json:"students"`
	Rows      []Row               `json:"rows"`
	Semester  string              `json:"semester"`
	UpdatedAt int64               `json:"updatedAt"`
}

// Key - составной ключ сетки. Предмет сравнивается без учёта регистра.
type Key struct {
	ID       string
	Subject  shared.SubjectRef
	Semester string
}

// Key возвращает составной ключ сетки.
func (g Grid) Key() Key {
	return Key{ID: g.ID, Subject: g.Subject, Semester: g.Semester}
}

// Matches проверяет точное совпадение ключа (предмет без учёта регистра).
func (k Key) Matches(g Grid) bool {
	return g.ID == k.ID && g.Subject.EqualFold(k.Subject) && g.Semester == k.Semester
}

// MatchesLookup проверяет совпадение для поиска: пустой семестр означает "любой",
// предмет же сравнивается всегда. Сетка другого предмета никогда не подставляется.
func (k Key) MatchesLookup(g Grid) bool {
	if g.ID != k.ID || !g.Subject.EqualFold(k.Subject) {
		return false
	}
	return k.Semester == "" || g.Semester == k.Semester
}

// Validate проверяет, что у сетки есть группа и семестр,
// а длина каждой строки совпадает с числом учеников.
func (g Grid) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return shared.NewDomainError("exam", "Validate", shared.ErrEmptyValue, "grid id is required")
	}
	if strings.TrimSpace(g.Semester) == "" {
		return shared.NewDomainError("exam", "Validate", shared.ErrEmptyValue, "semester is required")
	}
	for _, r := range g.Rows {
		if len(r.Grades) > len(g.Students) {
			return shared.NewDomainError("exam", "Validate", shared.ErrValueOutOfRange,
				"row "+r.ExamLabel+" has more grades than students")
		}
	}
	return nil
}

// Patch перечисляет изменяемые поля сетки. Ключевые поля не меняются.
type Patch struct {
	Title    *string
	Students *[]shared.StudentRef
	Rows     *[]Row
}

// Apply возвращает копию сетки с применёнными изменениями.
func (p Patch) Apply(g Grid) Grid {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Students != nil {
		g.Students = *p.Students
	}
	if p.Rows != nil {
		g.Rows = *p.Rows
	}
	return g
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

// StudentAverage возвращает среднюю оценку ученика с индексом idx по всем
// контрольным сетки. ok == false, если у ученика нет ни одной оценки.
func StudentAverage(g Grid, idx int) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, r := range g.Rows {
		if idx < 0 || idx >= len(r.Grades) || r.Grades[idx] == nil {
			continue
		}
		sum += *r.Grades[idx]
		n++
	}
	if n == 0 {
		return 0, false
	}
	return round2(sum / float64(n)), true
}

// SubjectAverage - средняя оценка по предмету.
type SubjectAverage struct {
	Subject shared.SubjectRef
	Average float64
}

// WeightedAverage считает средневзвешенную по коэффициентам предметов.
// coefficient возвращает вес предмета; нулевые и отрицательные веса игнорируются.
func WeightedAverage(averages []SubjectAverage, coefficient func(shared.SubjectRef) float64) (avg float64, ok bool) {
	var sum, weights float64
	for _, a := range averages {
		w := coefficient(a.Subject)
		if w <= 0 {
			continue
		}
		sum += a.Average * w
		weights += w
	}
	if weights == 0 {
		return 0, false
	}
	return round2(sum / weights), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Grade - удобный конструктор оценки для строк сетки.
func Grade(v float64) *float64 {
	return &v
}
