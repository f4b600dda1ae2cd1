package ports

import "encoding/json"

// Cond condición de búsqueda (campo, operador, valor).
type Cond struct {
	Field string
	Op    string
	Value any
}

// MarshalJSON serializa la condición como tripleta ["campo", "op", valor].
func (c Cond) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Field, c.Op, c.Value})
}

// Domain conjunción (AND) de condiciones. nil significa "todos los registros".
type Domain []Cond

// Where crea un dominio con una condición.
func Where(field, op string, value any) Domain {
	return Domain{{Field: field, Op: op, Value: value}}
}

// And agrega una condición.
func (d Domain) And(field, op string, value any) Domain {
	out := make(Domain, len(d), len(d)+1)
	copy(out, d)
	return append(out, Cond{Field: field, Op: op, Value: value})
}

// MarshalJSON serializa siempre como arreglo (nunca null).
func (d Domain) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Cond(d))
}
