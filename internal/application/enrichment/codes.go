package enrichment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
)

const (
	maxCodeAttempts = 100
	codePrefixLen   = 3
	codePadChar     = 'X'
)

// CodeRegistry conjuntos de códigos de barras y referencias internas ya usados.
// Se siembra una sola vez desde el ERP y crece con cada código generado en la corrida.
type CodeRegistry struct {
	barcodes map[string]struct{}
	codes    map[string]struct{}
	now      func() time.Time
}

// NewCodeRegistry crea un registro a partir de conjuntos existentes.
func NewCodeRegistry(barcodes, codes []string) *CodeRegistry {
	r := &CodeRegistry{
		barcodes: make(map[string]struct{}, len(barcodes)),
		codes:    make(map[string]struct{}, len(codes)),
		now:      time.Now,
	}
	for _, b := range barcodes {
		if b != "" {
			r.barcodes[b] = struct{}{}
		}
	}
	for _, c := range codes {
		if c != "" {
			r.codes[c] = struct{}{}
		}
	}
	return r
}

// ScanCodes lee una vez los barcodes y default_code existentes de product.product.
func ScanCodes(ctx context.Context, gw ports.ObjectGateway) (*CodeRegistry, error) {
	recs, err := gw.SearchRead(ctx, "product.product", nil, []string{"barcode", "default_code"}, 0)
	if err != nil {
		return nil, fmt.Errorf("escanear códigos existentes: %w", err)
	}
	var barcodes, codes []string
	for _, r := range recs {
		barcodes = append(barcodes, r.Str("barcode"))
		codes = append(codes, r.Str("default_code"))
	}
	return NewCodeRegistry(barcodes, codes), nil
}

// Counts tamaños actuales de los conjuntos (barcodes, referencias).
func (r *CodeRegistry) Counts() (int, int) {
	return len(r.barcodes), len(r.codes)
}

// ClaimBarcode reserva un barcode sugerido. Devuelve false si ya estaba en uso.
func (r *CodeRegistry) ClaimBarcode(code string) bool {
	if code == "" {
		return false
	}
	if _, used := r.barcodes[code]; used {
		return false
	}
	r.barcodes[code] = struct{}{}
	return true
}

// ClaimDefaultCode reserva una referencia interna sugerida. Devuelve false si ya estaba en uso.
func (r *CodeRegistry) ClaimDefaultCode(code string) bool {
	if code == "" {
		return false
	}
	if _, used := r.codes[code]; used {
		return false
	}
	r.codes[code] = struct{}{}
	return true
}

// NextBarcode genera un EAN-13 no usado y lo reserva.
func (r *CodeRegistry) NextBarcode() string {
	for range maxCodeAttempts {
		body := fmt.Sprintf("%012d", rand.Int64N(1_000_000_000_000))
		code := body + string(rune('0'+EAN13CheckDigit(body)))
		if r.ClaimBarcode(code) {
			return code
		}
	}
	// Agotados los intentos: derivar de la hora y avanzar hasta encontrar uno libre.
	seed := r.now().UnixNano() % 1_000_000_000_000
	for {
		body := fmt.Sprintf("%012d", seed)
		code := body + string(rune('0'+EAN13CheckDigit(body)))
		if r.ClaimBarcode(code) {
			return code
		}
		seed = (seed + 1) % 1_000_000_000_000
	}
}

// NextDefaultCode genera una referencia PPP-NNNNN derivada del nombre y la reserva.
func (r *CodeRegistry) NextDefaultCode(name string) string {
	prefix := CodePrefix(name)
	for range maxCodeAttempts {
		code := fmt.Sprintf("%s-%05d", prefix, rand.IntN(100_000))
		if r.ClaimDefaultCode(code) {
			return code
		}
	}
	n := int(r.now().UnixNano() % 100_000)
	for i := 0; i < 100_000; i++ {
		code := fmt.Sprintf("%s-%05d", prefix, (n+i)%100_000)
		if r.ClaimDefaultCode(code) {
			return code
		}
	}
	// prefijo saturado: usar uno genérico
	return r.NextDefaultCode(string(rune('A' + rand.IntN(26))))
}

// EAN13CheckDigit calcula el dígito de control sobre los 12 primeros dígitos
// (pesos alternos 1 y 3 desde la izquierda).
func EAN13CheckDigit(body string) int {
	sum := 0
	for i, ch := range body[:12] {
		d := int(ch - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return (10 - sum%10) % 10
}

// ValidEAN13 verifica longitud, dígitos y dígito de control.
func ValidEAN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return EAN13CheckDigit(code[:12]) == int(code[12]-'0')
}

var defaultCodeRe = regexp.MustCompile(`^[A-Z0-9]{3}-\d{5}$`)

// ValidDefaultCode verifica el formato PPP-NNNNN de una referencia interna.
func ValidDefaultCode(code string) bool {
	return defaultCodeRe.MatchString(code)
}

// CodePrefix toma los 3 primeros caracteres alfanuméricos ASCII del nombre en mayúsculas
// (sin tildes ni diéresis) y rellena con 'X' si faltan.
func CodePrefix(name string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, name)
	if err != nil {
		plain = name
	}
	var b strings.Builder
	for _, ch := range strings.ToUpper(plain) {
		if b.Len() == codePrefixLen {
			break
		}
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		}
	}
	for b.Len() < codePrefixLen {
		b.WriteByte(codePadChar)
	}
	return b.String()
}
