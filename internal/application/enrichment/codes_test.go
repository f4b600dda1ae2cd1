package enrichment_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
)

var defaultCodeRe = regexp.MustCompile(`^[A-Z0-9]{3}-\d{5}$`)

func TestEAN13CheckDigit_EjemplosConocidos(t *testing.T) {
	// 4006381333931 es un EAN-13 real de ejemplo.
	assert.Equal(t, 1, enrichment.EAN13CheckDigit("400638133393"))
	assert.True(t, enrichment.ValidEAN13("4006381333931"))
	assert.False(t, enrichment.ValidEAN13("4006381333932"), "dígito de control incorrecto")
	assert.False(t, enrichment.ValidEAN13("40063813339"), "longitud incorrecta")
	assert.False(t, enrichment.ValidEAN13("40063813339A1"), "caracter no numérico")
}

func TestNextBarcode_UnicosYValidos(t *testing.T) {
	reg := enrichment.NewCodeRegistry([]string{"4006381333931"}, nil)
	seen := map[string]bool{"4006381333931": true}
	for range 500 {
		code := reg.NextBarcode()
		require.True(t, enrichment.ValidEAN13(code), "barcode %s no pasa el checksum", code)
		require.False(t, seen[code], "barcode repetido %s", code)
		seen[code] = true
	}
}

func TestClaimBarcode_RechazaExistentes(t *testing.T) {
	reg := enrichment.NewCodeRegistry([]string{"4006381333931"}, nil)
	assert.False(t, reg.ClaimBarcode("4006381333931"))
	assert.False(t, reg.ClaimBarcode(""))
	assert.True(t, reg.ClaimBarcode("5901234123457"))
	assert.False(t, reg.ClaimBarcode("5901234123457"), "un barcode reservado no se reserva dos veces")
}

func TestNextDefaultCode_FormatoYUnicidad(t *testing.T) {
	reg := enrichment.NewCodeRegistry(nil, []string{"SCH-00001"})
	seen := map[string]bool{}
	for range 300 {
		code := reg.NextDefaultCode("Schraube M8")
		require.Regexp(t, defaultCodeRe, code)
		assert.Equal(t, "SCH", code[:3])
		require.False(t, seen[code], "referencia repetida %s", code)
		require.NotEqual(t, "SCH-00001", code)
		seen[code] = true
	}
}

func TestValidDefaultCode_Formato(t *testing.T) {
	assert.True(t, enrichment.ValidDefaultCode("SCH-00001"))
	assert.True(t, enrichment.ValidDefaultCode("A1B-12345"))
	assert.False(t, enrichment.ValidDefaultCode("sku-1"))
	assert.False(t, enrichment.ValidDefaultCode("sch-00001"), "minúsculas")
	assert.False(t, enrichment.ValidDefaultCode("SCHR-00001"))
	assert.False(t, enrichment.ValidDefaultCode("SCH-0001"))
	assert.False(t, enrichment.ValidDefaultCode(""))
}

func TestCodePrefix_Casos(t *testing.T) {
	cases := map[string]string{
		"Schraube":      "SCH",
		"Öl-Filter":     "OLF",
		"a":             "AXX",
		"":              "XXX",
		"3D Drucker":    "3DD",
		"  ##  x":       "XXX",
		"Café crème":    "CAF",
		"IT-Beratung":   "ITB",
		"ß-Verschluss":  "VER",
	}
	for in, want := range cases {
		assert.Equal(t, want, enrichment.CodePrefix(in), "prefijo de %q", in)
	}
}
