package entity

import (
	"strings"
	"sync"
	"time"
)

// ErrorRecord fallo de una llamada remota. Se acumula y se informa al final de la corrida.
type ErrorRecord struct {
	URL          string   `json:"url"`
	Method       string   `json:"method"`
	StatusCode   int      `json:"status_code"`
	ErrorMessage string   `json:"error_message"`
	ErrorBody    string   `json:"error_body"`
	PayloadKeys  []string `json:"payload_keys"`
}

// MaxErrorBody longitud máxima del cuerpo de error guardado.
const MaxErrorBody = 500

// TruncateBody recorta el cuerpo de error a MaxErrorBody bytes sin partir runas.
func TruncateBody(body string) string {
	if len(body) <= MaxErrorBody {
		return body
	}
	cut := MaxErrorBody
	for cut > 0 && !utf8Start(body[cut]) {
		cut--
	}
	return body[:cut]
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

// ErrorLog acumulador de fallos por instancia de gateway.
// El pipeline es secuencial; el mutex cubre el uso desde el servidor HTTP.
type ErrorLog struct {
	mu      sync.Mutex
	records []ErrorRecord
}

// Add agrega un registro.
func (l *ErrorLog) Add(rec ErrorRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec.ErrorBody = TruncateBody(rec.ErrorBody)
	l.records = append(l.records, rec)
}

// Records devuelve una copia de los registros acumulados.
func (l *ErrorLog) Records() []ErrorRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ErrorRecord, len(l.records))
	copy(out, l.records)
	return out
}

// RunResult ids ancla producidos por la corrida.
type RunResult struct {
	ProductIDs       []int            `json:"product_ids"`
	CompanyIDs       []int            `json:"company_ids"`
	OrderIDs         []int            `json:"order_ids"`
	TrackingProducts []TrackedProduct `json:"tracking_products"`
}

// ModuleReport ids creados por cada etapa del orquestador, indexados por modelo.
type ModuleReport struct {
	Created map[string][]int `json:"created"`
	Skipped []string         `json:"skipped,omitempty"`
}

// NewModuleReport crea un reporte vacío.
func NewModuleReport() *ModuleReport {
	return &ModuleReport{Created: map[string][]int{}}
}

// Add registra ids creados para un modelo.
func (r *ModuleReport) Add(model string, ids ...int) {
	r.Created[model] = append(r.Created[model], ids...)
}

// Skip registra una etapa omitida con su motivo.
func (r *ModuleReport) Skip(stage, reason string) {
	r.Skipped = append(r.Skipped, stage+": "+reason)
}

// Count número de registros creados para un modelo.
func (r *ModuleReport) Count(model string) int {
	return len(r.Created[model])
}

// RunStatus estado de una corrida persistida.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run corrida persistida (historial).
type Run struct {
	ID         string
	Industry   string
	Status     RunStatus
	Result     RunResult
	Modules    *ModuleReport
	Errors     []ErrorRecord
	Failure    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Summary texto corto para logs y listados.
func (r Run) Summary() string {
	var b strings.Builder
	b.WriteString(string(r.Status))
	if r.Failure != "" {
		b.WriteString(": ")
		b.WriteString(r.Failure)
	}
	return b.String()
}
