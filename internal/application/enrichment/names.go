package enrichment

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Fold normaliza un nombre para comparaciones sin distinción de mayúsculas (incluye ß/ss).
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// FoldEqual compara dos nombres sin distinguir mayúsculas.
func FoldEqual(a, b string) bool {
	return Fold(a) == Fold(b)
}

// NameSet conjunto de nombres comparados sin distinguir mayúsculas.
type NameSet map[string]struct{}

// NewNameSet crea el conjunto con nombres existentes.
func NewNameSet(names ...string) NameSet {
	s := NameSet{}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add agrega un nombre.
func (s NameSet) Add(name string) {
	s[Fold(name)] = struct{}{}
}

// Contains indica si el nombre ya está en el conjunto.
func (s NameSet) Contains(name string) bool {
	_, ok := s[Fold(name)]
	return ok
}

// Unique devuelve name o name + " (n)" con n desde 2 hasta que no colisione, y lo agrega.
func (s NameSet) Unique(name string) string {
	name = strings.TrimSpace(name)
	candidate := name
	for n := 2; s.Contains(candidate); n++ {
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
	s.Add(candidate)
	return candidate
}
