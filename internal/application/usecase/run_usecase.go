package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/demo-data-assistant/internal/application/demodata"
	"github.com/jhoicas/demo-data-assistant/internal/application/dto"
	"github.com/jhoicas/demo-data-assistant/internal/application/enrichment"
	"github.com/jhoicas/demo-data-assistant/internal/application/masterdata"
	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/domain/repository"
)

// DemoDataConfig parámetros fijos de todas las corridas.
type DemoDataConfig struct {
	SerialSlot   int
	LotSlot      int
	Orchestrator demodata.Config
}

// DemoDataOption modifica el caso de uso al construirlo.
type DemoDataOption func(*DemoDataUseCase)

// WithRunRepository activa el historial de corridas.
func WithRunRepository(repo repository.RunRepository) DemoDataOption {
	return func(uc *DemoDataUseCase) { uc.runs = repo }
}

// WithSeed fija la semilla de cada corrida (mismo resultado ante el mismo ERP).
func WithSeed(seed uint64) DemoDataOption {
	return func(uc *DemoDataUseCase) { uc.seed = &seed }
}

// WithClock fija el reloj de timestamps y fechas generadas.
func WithClock(now func() time.Time) DemoDataOption {
	return func(uc *DemoDataUseCase) { uc.now = now }
}

// DemoDataUseCase ejecuta una corrida completa: datos maestros y luego datos por módulo.
type DemoDataUseCase struct {
	gateways ports.GatewayFactory
	gen      ports.EntityGenerator
	runs     repository.RunRepository
	validate *validator.Validate
	cfg      DemoDataConfig
	log      zerolog.Logger
	now      func() time.Time
	seed     *uint64
}

// NewDemoDataUseCase construye el caso de uso. gateways abre una sesión por corrida.
func NewDemoDataUseCase(gateways ports.GatewayFactory, gen ports.EntityGenerator, cfg DemoDataConfig,
	log zerolog.Logger, opts ...DemoDataOption) *DemoDataUseCase {
	uc := &DemoDataUseCase{
		gateways: gateways,
		gen:      gen,
		validate: validator.New(),
		cfg:      cfg,
		log:      log.With().Str("component", "demodata").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute valida la petición y ejecuta la corrida. La respuesta siempre incluye los
// errores acumulados del gateway, también cuando se devuelve error.
func (uc *DemoDataUseCase) Execute(ctx context.Context, req dto.RunRequest) (*dto.RunResponse, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, newValidationError(err)
	}

	run := &entity.Run{
		ID:        uuid.NewString(),
		Industry:  strings.TrimSpace(req.Criteria.Industry),
		Status:    entity.RunRunning,
		StartedAt: uc.now(),
	}
	req.Criteria.Industry = run.Industry
	log := uc.log.With().Str("run_id", run.ID).Str("industry", run.Industry).Logger()
	uc.persist(ctx, log, run, true)

	gw := uc.gateways()
	err := uc.guarded(ctx, log, gw, req, run)
	run.Errors = gw.Errors()

	finished := uc.now()
	run.FinishedAt = &finished
	run.Status = entity.RunSucceeded
	if err != nil {
		run.Status = entity.RunFailed
		run.Failure = err.Error()
	}
	// El historial se guarda aunque el contexto de la petición ya no sirva.
	uc.persist(context.WithoutCancel(ctx), log, run, false)

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Int("errors", len(run.Errors)).Dur("took", finished.Sub(run.StartedAt)).Msg(run.Summary())
	return dto.ToRunResponse(run), err
}

// guarded convierte un pánico del pipeline en error; la corrida se cierra igual y
// conserva los errores acumulados hasta ese punto.
func (uc *DemoDataUseCase) guarded(ctx context.Context, log zerolog.Logger, gw ports.ObjectGateway,
	req dto.RunRequest, run *entity.Run) (err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("stack", string(debug.Stack())).Msg("pánico en la corrida")
			err = fmt.Errorf("corrida interrumpida: %v", p)
		}
	}()
	return uc.execute(ctx, log, gw, req, run)
}

func (uc *DemoDataUseCase) execute(ctx context.Context, log zerolog.Logger, gw ports.ObjectGateway,
	req dto.RunRequest, run *entity.Run) error {
	lookups := enrichment.NewLookups(gw, log)
	lang := lookups.MainCompanyLanguage(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	installed, err := lookups.InstalledModules(ctx)
	if err != nil {
		if domain.IsFatal(err) {
			return err
		}
		log.Warn().Err(err).Msg("módulos instalados desconocidos, se omiten las etapas por módulo")
		installed = map[string]bool{}
	}

	data, err := uc.gen.FetchCreativeData(ctx, req.Criteria, lang)
	if err != nil || data == nil {
		if err != nil && domain.IsFatal(err) {
			return err
		}
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrGeneratorUnavailable, err)
		}
		return domain.ErrGeneratorUnavailable
	}

	suggestions, err := uc.gen.FetchNameSuggestions(ctx, req.Criteria, lang)
	if err != nil {
		log.Warn().Err(err).Msg("sin sugerencias de nombres, se usan plantillas")
	}
	names := entity.NewNameBank(suggestions)

	codes, err := enrichment.ScanCodes(ctx, gw)
	if err != nil {
		if domain.IsFatal(err) {
			return err
		}
		log.Warn().Err(err).Msg("no se pudieron escanear códigos existentes")
		codes = enrichment.NewCodeRegistry(nil, nil)
	} else {
		barcodes, refs := codes.Counts()
		log.Debug().Int("barcodes", barcodes).Int("default_codes", refs).Msg("códigos existentes")
	}

	populator := masterdata.NewPopulator(gw, uc.gen, lookups, codes, log, uc.rng())
	result, err := populator.Populate(ctx, data, req.Criteria, masterdata.Options{
		Tracking:   req.Toggles.Tracking(),
		SerialSlot: uc.cfg.SerialSlot,
		LotSlot:    uc.cfg.LotSlot,
		Language:   lang,
	})
	run.Result = result
	if err != nil {
		return err
	}

	var orchOpts []demodata.Option
	orchOpts = append(orchOpts, demodata.WithNow(uc.now))
	if uc.seed != nil {
		orchOpts = append(orchOpts, demodata.WithRand(uc.rng()))
	}
	orch := demodata.New(uc.gen, uc.cfg.Orchestrator, log, orchOpts...)
	report, err := orch.Run(ctx, gw, demodata.Input{
		Industry:   req.Criteria.Industry,
		Language:   lang,
		Installed:  installed,
		Selections: req.Modules,
		Toggles:    req.Toggles,
		Anchors:    result,
		Names:      names,
		Codes:      codes,
	})
	run.Modules = report
	return err
}

// rng nil deja que cada componente siembre con el reloj.
func (uc *DemoDataUseCase) rng() *rand.Rand {
	if uc.seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(*uc.seed, *uc.seed>>7|1))
}

func (uc *DemoDataUseCase) persist(ctx context.Context, log zerolog.Logger, run *entity.Run, create bool) {
	if uc.runs == nil {
		return
	}
	var err error
	if create {
		err = uc.runs.Create(ctx, run)
	} else {
		err = uc.runs.Update(ctx, run)
	}
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo guardar la corrida en el historial")
	}
}

// GetRun devuelve una corrida del historial.
func (uc *DemoDataUseCase) GetRun(ctx context.Context, id string) (*dto.RunResponse, error) {
	if uc.runs == nil {
		return nil, fmt.Errorf("%w: historial de corridas desactivado", domain.ErrNotFound)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: id de corrida inválido", domain.ErrInvalidInput)
	}
	run, err := uc.runs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToRunResponse(run), nil
}

// ListRuns devuelve una página del historial, de la más reciente a la más antigua.
func (uc *DemoDataUseCase) ListRuns(ctx context.Context, page dto.PageRequest) (*dto.RunListResponse, error) {
	page.DefaultPage()
	if err := uc.validate.Struct(page); err != nil {
		return nil, newValidationError(err)
	}
	out := &dto.RunListResponse{Items: []dto.RunResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	if uc.runs == nil {
		return out, nil
	}
	runs, err := uc.runs.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		out.Items = append(out.Items, *dto.ToRunResponse(r))
	}
	return out, nil
}

// Modules lista los módulos soportados en el orden del pipeline.
func (uc *DemoDataUseCase) Modules() []dto.ModuleInfo {
	out := make([]dto.ModuleInfo, len(entity.SupportedModules))
	for i, m := range entity.SupportedModules {
		out[i] = dto.ModuleInfo{Name: m, Order: i}
	}
	return out
}

// ValidationError entrada inválida con el detalle por campo (campo → regla).
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Namespace()] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "entrada inválida: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }
