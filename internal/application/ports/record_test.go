package ports_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
)

func TestAsID_FormasAceptadas(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"entero", 7, 7, true},
		{"flotante integral", float64(42), 42, true},
		{"json.Number", json.Number("15"), 15, true},
		{"par id-etiqueta", []any{float64(3), "Mesa"}, 3, true},
		{"string numérico", " 9 ", 9, true},
		{"false de Odoo", false, 0, false},
		{"nil", nil, 0, false},
		{"flotante no integral", 2.5, 0, false},
		{"par vacío", []any{}, 0, false},
		{"cero", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ports.AsID(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAsIDs_ListaMixta(t *testing.T) {
	got := ports.AsIDs([]any{float64(1), []any{float64(2), "x"}, false, "4"})
	assert.Equal(t, []int{1, 2, 4}, got)
	assert.Equal(t, []int{5}, ports.AsIDs(float64(5)))
	assert.Nil(t, ports.AsIDs(false))
}

func TestRecord_Accesores(t *testing.T) {
	rec := ports.Record{
		"id":         float64(10),
		"partner_id": []any{float64(4), "Muster GmbH"},
		"name":       "SO001",
		"ref":        false,
		"amount":     json.Number("12.50"),
		"line_ids":   []any{float64(1), float64(2)},
	}
	assert.Equal(t, 10, rec.ID())
	pid, ok := rec.Ref("partner_id")
	require.True(t, ok)
	assert.Equal(t, 4, pid)
	assert.Equal(t, "Muster GmbH", rec.Label("partner_id"))
	assert.Equal(t, "SO001", rec.Str("name"))
	assert.Equal(t, "", rec.Str("ref"), "false de Odoo se lee como string vacío")
	assert.InDelta(t, 12.5, rec.Float("amount"), 0.0001)
	assert.Equal(t, []int{1, 2}, rec.IDs("line_ids"))
}

func TestDomain_SerializaTripletas(t *testing.T) {
	d := ports.Where("type", "=", "bank").And("id", "in", []int{1, 2})
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `[["type","=","bank"],["id","in",[1,2]]]`, string(raw))

	var empty ports.Domain
	raw, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw), "dominio nil debe serializarse como lista vacía")
}
