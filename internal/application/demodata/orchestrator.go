package demodata

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// Config parámetros de realismo del orquestador.
type Config struct {
	WonStageNames      []string // nombres (sin distinguir mayúsculas) de la etapa ganada del CRM
	PerturbationRatio  float64  // fracción de líneas bancarias de clientes con discrepancia
	ConfirmLimit       int      // pedidos que se intentan confirmar
	ActivityContactCap int      // contactos individuales que reciben actividades
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{
		WonStageNames:      []string{"won"},
		PerturbationRatio:  0.2,
		ConfirmLimit:       5,
		ActivityContactCap: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.WonStageNames) == 0 {
		c.WonStageNames = d.WonStageNames
	}
	if c.PerturbationRatio <= 0 || c.PerturbationRatio > 1 {
		c.PerturbationRatio = d.PerturbationRatio
	}
	if c.ConfirmLimit <= 0 {
		c.ConfirmLimit = d.ConfirmLimit
	}
	if c.ActivityContactCap < 0 {
		c.ActivityContactCap = d.ActivityContactCap
	}
	return c
}

// Input datos de una corrida del orquestador.
type Input struct {
	Industry   string
	Language   string
	Installed  map[string]bool
	Selections entity.ModuleSelections
	Toggles    entity.Toggles
	Anchors    entity.RunResult
	Names      entity.NameBank
	Codes      *enrichment.CodeRegistry // opcional; sin él los productos nuevos no llevan códigos
}

// Option modifica el Orchestrator.
type Option func(*Orchestrator)

// WithRand fija la fuente de aleatoriedad.
func WithRand(r *rand.Rand) Option { return func(o *Orchestrator) { o.rng = r } }

// WithNow fija el reloj usado para fechas de facturas, extractos y actividades.
func WithNow(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// Orchestrator ejecuta las etapas por módulo en orden fijo.
type Orchestrator struct {
	gen ports.EntityGenerator
	cfg Config
	log zerolog.Logger
	rng *rand.Rand
	now func() time.Time
}

// New construye el orquestador.
func New(gen ports.EntityGenerator, cfg Config, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen: gen,
		cfg: cfg.withDefaults(),
		log: log.With().Str("component", "orchestrator").Logger(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		seed := uint64(o.now().UnixNano())
		o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return o
}

// stage etapa del pipeline. enabled devuelve el motivo cuando se omite.
type stage struct {
	name    string
	enabled func(r *run) (bool, string)
	exec    func(r *run, ctx context.Context) error
}

// pipeline orden fijo: fabricación antes de ventas, facturas después de confirmar,
// extracto bancario después de publicar y actividades al final.
var pipeline = []stage{
	{"anchors", (*run).needsAnchors, (*run).ensureAnchors},
	{entity.ModuleMRP, requested(entity.ModuleMRP), (*run).manufacturing},
	{entity.ModuleCRM, requested(entity.ModuleCRM), (*run).opportunities},
	{entity.ModuleSale, requested(entity.ModuleSale), (*run).sales},
	{"invoices", (*run).wantsInvoices, (*run).invoices},
	{"bank", (*run).wantsBank, (*run).bankStatement},
	{entity.ModuleRecruitment, requested(entity.ModuleRecruitment), (*run).recruitment},
	{entity.ModuleHR, requested(entity.ModuleHR), (*run).employees},
	{entity.ModuleProject, requested(entity.ModuleProject), (*run).projects},
	{entity.ModuleTimesheet, requested(entity.ModuleTimesheet), (*run).timesheets},
	{"activities", (*run).wantsActivities, (*run).activities},
}

// Run ejecuta el pipeline sobre gw. Solo devuelve error ante fallos fatales; el
// reporte parcial se devuelve siempre.
func (o *Orchestrator) Run(ctx context.Context, gw ports.ObjectGateway, in Input) (*entity.ModuleReport, error) {
	r := &run{
		Orchestrator: o,
		gw:           gw,
		in:           in,
		report:       entity.NewModuleReport(),
		partners:     append([]int(nil), in.Anchors.CompanyIDs...),
		oppPartner:   map[int]int{},
	}
	if r.in.Installed == nil {
		r.in.Installed = map[string]bool{}
	}
	if r.in.Industry == "" {
		r.in.Industry = "Demo"
	}
	if r.in.Language == "" {
		r.in.Language = enrichment.DefaultLanguage
	}

	for _, st := range pipeline {
		if err := ctx.Err(); err != nil {
			return r.report, err
		}
		ok, reason := st.enabled(r)
		if !ok {
			if reason != "" {
				r.report.Skip(st.name, reason)
			}
			continue
		}
		log := o.log.With().Str("stage", st.name).Logger()
		log.Info().Msg("etapa iniciada")
		r.log = log
		if err := st.exec(r, ctx); err != nil {
			log.Error().Err(err).Msg("etapa abortada")
			return r.report, err
		}
	}
	return r.report, nil
}

// run estado mutable de una corrida.
type run struct {
	*Orchestrator
	gw     ports.ObjectGateway
	in     Input
	report *entity.ModuleReport
	log    zerolog.Logger

	partners        []int
	oppPartner      map[int]int // oportunidad -> partner
	oppIDs          []int
	confirmedOrders []int
	departments     []int
	employeeIDs     []int
	applicants      []int
	projectIDs      []int
	tasks           []taskRef
}

type taskRef struct {
	id, project int
	name        string
}

func requested(module string) func(r *run) (bool, string) {
	return func(r *run) (bool, string) {
		if !r.in.Selections.Requested(module) {
			return false, ""
		}
		if !r.in.Installed[module] {
			return false, "módulo no instalado"
		}
		return true, ""
	}
}

// soft registra un fallo por registro y lo descarta, salvo que sea fatal.
func (r *run) soft(err error, msg string) error {
	if domain.IsFatal(err) {
		return err
	}
	r.log.Warn().Err(err).Msg(msg)
	return nil
}

// create crea un registro y lo anota en el reporte. ok=false si se omitió.
func (r *run) create(ctx context.Context, model string, vals entity.Values, what string) (int, bool, error) {
	id, err := r.gw.Create(ctx, model, vals)
	if err != nil {
		return 0, false, r.soft(err, what+" omitido")
	}
	r.report.Add(model, id)
	return id, true, nil
}

// ── aleatoriedad ──────────────────────────────────────────────────────────────

// between entero uniforme en [lo, hi].
func (r *run) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.IntN(hi-lo+1)
}

func pick[T any](r *run, items []T) T {
	return items[r.rng.IntN(len(items))]
}

// sample hasta k elementos distintos en orden aleatorio.
func sample[T any](r *run, items []T, k int) []T {
	idx := r.rng.Perm(len(items))
	k = min(k, len(items))
	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = items[idx[i]]
	}
	return out
}

// amount importe aleatorio en [lo, hi] redondeado a céntimos.
func (r *run) amount(lo, hi float64) float64 {
	v := decimal.NewFromFloat(lo + r.rng.Float64()*(hi-lo))
	return v.Round(2).InexactFloat64()
}

// active indica si una etapa de módulo se ejecuta en esta corrida.
func (r *run) active(module string) bool {
	ok, _ := requested(module)(r)
	return ok
}

func (r *run) today() time.Time {
	y, m, d := r.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateStr(t time.Time) string { return t.Format(time.DateOnly) }
