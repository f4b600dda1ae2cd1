package sandbox

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
)

// compiledCond condición con el valor ya normalizado a forma JSON.
type compiledCond struct {
	field string
	op    string
	value any
}

func compileDomain(d ports.Domain) ([]compiledCond, error) {
	out := make([]compiledCond, 0, len(d))
	for _, c := range d {
		v, err := normalize(c.Value)
		if err != nil {
			return nil, fmt.Errorf("valor de %s: %w", c.Field, err)
		}
		switch c.Op {
		case "=", "!=", "in", "not in", "like", "ilike", "=ilike", "<", "<=", ">", ">=":
		default:
			return nil, fmt.Errorf("operador no soportado %q", c.Op)
		}
		out = append(out, compiledCond{field: c.Field, op: c.Op, value: v})
	}
	return out, nil
}

func matchAll(r row, conds []compiledCond) bool {
	for _, c := range conds {
		if !match(r[c.field], c) {
			return false
		}
	}
	return true
}

func match(field any, c compiledCond) bool {
	// x2many: la condición se cumple si algún id la cumple.
	if list, ok := field.([]any); ok && c.op != "=" && c.op != "!=" {
		if c.op == "not in" {
			for _, item := range list {
				if contains(c.value, item) {
					return false
				}
			}
			return true
		}
		for _, item := range list {
			if match(item, c) {
				return true
			}
		}
		return false
	}
	switch c.op {
	case "=":
		return equal(field, c.value)
	case "!=":
		return !equal(field, c.value)
	case "in":
		return contains(c.value, field)
	case "not in":
		return !contains(c.value, field)
	case "like":
		fs, ok1 := field.(string)
		vs, ok2 := c.value.(string)
		return ok1 && ok2 && strings.Contains(fs, vs)
	case "ilike":
		fs, ok1 := field.(string)
		vs, ok2 := c.value.(string)
		fold := cases.Fold()
		return ok1 && ok2 && strings.Contains(fold.String(fs), fold.String(vs))
	case "=ilike":
		fs, ok1 := field.(string)
		vs, ok2 := c.value.(string)
		fold := cases.Fold()
		return ok1 && ok2 && fold.String(fs) == fold.String(vs)
	case "<", "<=", ">", ">=":
		return compare(field, c.value, c.op)
	}
	return false
}

// equal trata nil y false como equivalentes (vacío en el ERP).
func equal(a, b any) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		// x2many contra un id: pertenencia
		for _, item := range av {
			if equal(item, b) {
				return true
			}
		}
	}
	return false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}

func contains(list any, v any) bool {
	items, ok := list.([]any)
	if !ok {
		return equal(v, list)
	}
	for _, item := range items {
		if equal(v, item) {
			return true
		}
	}
	return false
}

func compare(a, b any, op string) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return false
		}
		return cmpResult(av < bv, av == bv, op)
	case string:
		bv, ok := b.(string)
		if !ok {
			return false
		}
		return cmpResult(av < bv, av == bv, op)
	}
	return false
}

func cmpResult(less, eq bool, op string) bool {
	switch op {
	case "<":
		return less
	case "<=":
		return less || eq
	case ">":
		return !less && !eq
	case ">=":
		return !less
	}
	return false
}
