// Package coefficient вычисляет веса предметов для средневзвешенного балла.
// Явные значения хранятся в карте переопределений, остальные выводятся
// из названия предмета по упорядоченному списку правил.
package coefficient

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

const (
	// Min и Max - допустимые границы коэффициента.
	Min = 1.0
	Max = 10.0
	// DefaultFallback возвращается, если ни одно правило не сработало.
	DefaultFallback = 1.0
)

// Map - карта переопределений: ключ - название предмета в нижнем регистре.
type Map map[string]float64

// rule - правило вывода: первое совпадение по подстроке побеждает.
type rule struct {
	weight   float64
	patterns []string
}

// Порядок важен: "éducation physique" попадает в правило физики раньше спорта.
var rules = compile([]rule{
	{7, []string{"math", "رياضيات"}},
	{6, []string{"phys", "chim", "physics", "chem", "فيزياء", "كيمياء"}},
	{5, []string{"svt", "life", "earth", "أرض", "أحياء", "علوم الحياة"}},
	{4, []string{"arab", "عرب"}},
	{4, []string{"fran", "فرن"}},
	{3, []string{"engl", "انج", "إنج", "english"}},
	{2, []string{"history", "geo", "تاريخ", "جغ"}},
	{2, []string{"islam", "دين", "تربية إسلامية"}},
	{1, []string{"sport", "pe", "رياض"}},
})

func compile(in []rule) []rule {
	out := make([]rule, len(in))
	for i, r := range in {
		out[i] = rule{weight: r.weight, patterns: make([]string, len(r.patterns))}
		for j, p := range r.patterns {
			out[i].patterns[j] = Fold(p)
		}
	}
	return out
}

// Fold приводит строку к нижнему регистру и снимает диакритику
// ("Mathématiques" -> "mathematiques").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Infer выводит коэффициент по названию предмета.
func Infer(subject shared.SubjectRef, fallback float64) float64 {
	s := Fold(string(subject))
	if s == "" {
		return fallback
	}
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(s, p) {
				return r.weight
			}
		}
	}
	return fallback
}

// Lookup возвращает переопределение, если оно есть, иначе выведенное значение.
func (m Map) Lookup(subject shared.SubjectRef, fallback float64) float64 {
	if subject == "" {
		return fallback
	}
	if v, ok := m[subject.Key()]; ok {
		return v
	}
	return Infer(subject, fallback)
}

// Defaults строит карту выведенных коэффициентов для списка предметов.
func Defaults(subjects []shared.SubjectRef) Map {
	m := make(Map, len(subjects))
	for _, s := range subjects {
		m[s.Key()] = Infer(s, DefaultFallback)
	}
	return m
}

// Clamp ограничивает значение диапазоном [Min, Max].
func Clamp(v float64) float64 {
	switch {
	case v < Min:
		return Min
	case v > Max:
		return Max
	default:
		return v
	}
}

// Validate проверяет, что явно заданный коэффициент лежит в допустимых границах.
func Validate(v float64) error {
	if v < Min || v > Max {
		return shared.NewDomainError("coefficient", "Validate", shared.ErrValueOutOfRange, "coefficient must be between 1 and 10")
	}
	return nil
}
