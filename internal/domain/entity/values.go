package entity

import (
	"sort"
	"strings"
)

// Values es el payload suelto que se envía al ERP (create/write) o que devuelve el generador.
// Las claves son nombres de campos del modelo remoto.
type Values map[string]any

// Clone devuelve una copia superficial. Un mapa nil produce un mapa vacío.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Str devuelve el valor de key como string recortado; "" si falta o no es texto.
func (v Values) Str(key string) string {
	s, _ := v[key].(string)
	return strings.TrimSpace(s)
}

// Has indica si key existe con un valor distinto de nil.
func (v Values) Has(key string) bool {
	val, ok := v[key]
	return ok && val != nil
}

// Keys devuelve las claves ordenadas (para registrar payload_keys sin exponer valores).
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithoutNil elimina las entradas con valor nil.
func (v Values) WithoutNil() Values {
	out := make(Values, len(v))
	for k, val := range v {
		if val != nil {
			out[k] = val
		}
	}
	return out
}

// Without devuelve una copia sin las claves indicadas.
func (v Values) Without(keys ...string) Values {
	out := v.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
