package ports

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record registro devuelto por SearchRead.
type Record map[string]any

// ID devuelve el campo "id" normalizado.
func (r Record) ID() int {
	id, _ := AsID(r["id"])
	return id
}

// Ref devuelve un campo many2one normalizado a id.
func (r Record) Ref(field string) (int, bool) {
	return AsID(r[field])
}

// Str devuelve un campo de texto; Odoo usa false para vacío.
func (r Record) Str(field string) string {
	s, _ := r[field].(string)
	return s
}

// Label devuelve la etiqueta de un many2one ([id, "nombre"]) o "".
func (r Record) Label(field string) string {
	if pair, ok := r[field].([]any); ok && len(pair) == 2 {
		s, _ := pair[1].(string)
		return s
	}
	return ""
}

// Float devuelve un campo numérico.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// IDs devuelve un campo x2many normalizado.
func (r Record) IDs(field string) []int {
	list, ok := r[field].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, v := range list {
		if id, ok := AsID(v); ok {
			out = append(out, id)
		}
	}
	return out
}

// AsID normaliza una referencia a id entero. Acepta enteros, flotantes integrales,
// json.Number, strings numéricos y pares [id, etiqueta]. false/nil devuelven (0, false).
func AsID(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, x > 0
	case int64:
		return int(x), x > 0
	case int32:
		return int(x), x > 0
	case float64:
		if x != math.Trunc(x) || x <= 0 {
			return 0, false
		}
		return int(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil || n <= 0 {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	case []any:
		if len(x) == 0 {
			return 0, false
		}
		return AsID(x[0])
	case []int:
		if len(x) == 0 {
			return 0, false
		}
		return AsID(x[0])
	}
	return 0, false
}

// AsIDs normaliza el resultado de un create por lotes o de un método que devuelve ids.
func AsIDs(v any) []int {
	switch x := v.(type) {
	case []int:
		return x
	case []any:
		out := make([]int, 0, len(x))
		for _, item := range x {
			if id, ok := AsID(item); ok {
				out = append(out, id)
			}
		}
		return out
	}
	if id, ok := AsID(v); ok {
		return []int{id}
	}
	return nil
}

// RecordIDs extrae los ids de una lista de registros.
func RecordIDs(records []Record) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		if id := r.ID(); id > 0 {
			out = append(out, id)
		}
	}
	return out
}
