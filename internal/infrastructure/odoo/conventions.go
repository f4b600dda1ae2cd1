package odoo

import (
	"fmt"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

type opKind int

const (
	opCreate opKind = iota
	opWrite
	opSearchRead
	opMethod
)

// operation llamada lógica al ERP, independiente de la forma del endpoint.
type operation struct {
	kind   opKind
	model  string
	method string
	ids    []int
	args   []any
	kwargs map[string]any
	values entity.Values
	domain ports.Domain
	fields []string
	limit  int
}

// Convention forma de endpoint del ERP. Build devuelve ok=false si la operación
// no se puede expresar con esta convención.
type Convention struct {
	Name  string
	Build func(op operation) (path string, payload map[string]any, ok bool)
}

// DefaultConventions orden de prueba: JSON-2 directo, call_kw y la forma heredada.
var DefaultConventions = []Convention{PrimaryConvention, CallKwConvention, LegacyConvention}

// PrimaryConvention /json/2/{model}/{method} con argumentos con nombre.
var PrimaryConvention = Convention{
	Name: "json2",
	Build: func(op operation) (string, map[string]any, bool) {
		path := fmt.Sprintf("/%s/%s", op.model, op.method)
		switch op.kind {
		case opCreate:
			return path, map[string]any{"vals_list": []any{op.values}}, true
		case opWrite:
			return path, map[string]any{"ids": op.ids, "vals": op.values}, true
		case opSearchRead:
			return path, searchPayload(op), true
		}
		if len(op.args) > 0 {
			return "", nil, false
		}
		payload := map[string]any{}
		for k, v := range op.kwargs {
			payload[k] = v
		}
		if len(op.ids) > 0 {
			payload["ids"] = op.ids
		}
		return path, payload, true
	},
}

// CallKwConvention /json/2/call_kw/{model}/{method} con args/kwargs posicionales.
var CallKwConvention = Convention{
	Name: "call_kw",
	Build: func(op operation) (string, map[string]any, bool) {
		return fmt.Sprintf("/call_kw/%s/%s", op.model, op.method), positionalPayload(op), true
	},
}

// LegacyConvention /json/2/call/{model}/{method}; create usa {"values": ...} en la ruta directa.
var LegacyConvention = Convention{
	Name: "legacy",
	Build: func(op operation) (string, map[string]any, bool) {
		if op.kind == opCreate {
			return fmt.Sprintf("/%s/create", op.model), map[string]any{"values": op.values}, true
		}
		return fmt.Sprintf("/call/%s/%s", op.model, op.method), positionalPayload(op), true
	},
}

func searchPayload(op operation) map[string]any {
	payload := map[string]any{"domain": op.domain}
	if op.fields != nil {
		payload["fields"] = op.fields
	}
	if op.limit > 0 {
		payload["limit"] = op.limit
	}
	return payload
}

func positionalPayload(op operation) map[string]any {
	kwargs := map[string]any{}
	for k, v := range op.kwargs {
		kwargs[k] = v
	}
	var args []any
	switch op.kind {
	case opCreate:
		args = []any{op.values}
	case opWrite:
		args = []any{op.ids, op.values}
	case opSearchRead:
		args = []any{}
		for k, v := range searchPayload(op) {
			kwargs[k] = v
		}
	default:
		if len(op.ids) > 0 {
			args = append(args, op.ids)
		}
		args = append(args, op.args...)
		if args == nil {
			args = []any{}
		}
	}
	return map[string]any{"args": args, "kwargs": kwargs}
}
