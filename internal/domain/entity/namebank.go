package entity

import "strings"

// NameKind categoría de nombres sugeridos.
type NameKind string

const (
	NamesEmployees     NameKind = "employees"
	NamesProjects      NameKind = "projects"
	NamesOpportunities NameKind = "opportunities"
	NamesTasks         NameKind = "tasks"
	NamesManufactured  NameKind = "manufactured"
	NamesDepartments   NameKind = "departments"
)

// NameBank nombres sugeridos por el generador que se pasan entre etapas de una corrida.
// El valor cero es utilizable y siempre recurre al fallback.
type NameBank struct {
	names map[NameKind][]string
}

// NewNameBank construye el banco a partir de las sugerencias (nil permitido).
func NewNameBank(s *NameSuggestions) NameBank {
	b := NameBank{names: map[NameKind][]string{}}
	if s == nil {
		return b
	}
	b.put(NamesEmployees, s.Employees)
	b.put(NamesProjects, s.Projects)
	b.put(NamesOpportunities, s.Opportunities)
	b.put(NamesTasks, s.Tasks)
	b.put(NamesManufactured, s.Manufactured)
	b.put(NamesDepartments, s.Departments)
	return b
}

func (b NameBank) put(kind NameKind, names []string) {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			b.names[kind] = append(b.names[kind], n)
		}
	}
}

// Len número de nombres disponibles de un tipo.
func (b NameBank) Len(kind NameKind) int {
	return len(b.names[kind])
}

// Name devuelve el i-ésimo nombre sugerido o el fallback si no hay suficientes.
func (b NameBank) Name(kind NameKind, i int, fallback string) string {
	list := b.names[kind]
	if i >= 0 && i < len(list) {
		return list[i]
	}
	return fallback
}
