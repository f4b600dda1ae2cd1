package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// Verificar en tiempo de compilación que Generator implementa EntityGenerator.
var _ ports.EntityGenerator = (*Generator)(nil)

// Completer envía un prompt a un modelo de lenguaje y devuelve el texto crudo.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewCompleter elige el proveedor configurado: gemini, openai o anthropic.
func NewCompleter(provider, apiKey, model, baseURL string) (Completer, error) {
	switch strings.ToLower(provider) {
	case "", "gemini":
		if model == "" {
			model = "gemini-1.5-flash"
		}
		return NewGeminiCompleter(apiKey, model), nil
	case "openai":
		return NewOpenAICompleter(apiKey, model, baseURL), nil
	case "anthropic":
		if model == "" {
			model = "claude-3-5-haiku-20241022"
		}
		return NewAnthropicCompleter(apiKey, model), nil
	}
	return nil, fmt.Errorf("%w: proveedor de IA desconocido %q", domain.ErrInvalidInput, provider)
}

// DefaultTimeout plazo por consulta.
const DefaultTimeout = 120 * time.Second

// Generator implementa EntityGenerator sobre cualquier Completer.
type Generator struct {
	completer Completer
	clock     Clock
	timeout   time.Duration
	log       zerolog.Logger
}

// GeneratorOption modifica el Generator al construirlo.
type GeneratorOption func(*Generator)

// WithClock inyecta el reloj usado para el plazo.
func WithClock(c Clock) GeneratorOption { return func(g *Generator) { g.clock = c } }

// WithTimeout cambia el plazo por consulta.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGenerator construye el generador.
func NewGenerator(c Completer, log zerolog.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		completer: c,
		clock:     SystemClock,
		timeout:   DefaultTimeout,
		log:       log.With().Str("component", "generator").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type uomResponse struct {
	UOMID any `json:"uom_id"`
}

type componentsResponse struct {
	Components []string `json:"components"`
}

type stagesResponse struct {
	Stages []string `json:"stages"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// ask consulta al modelo con plazo y decodifica la respuesta JSON en T.
func ask[T any](ctx context.Context, g *Generator, op, prompt string) (T, error) {
	var out T
	raw, err := CallWithDeadline(ctx, g.clock, g.timeout, func(ctx context.Context) (string, error) {
		return g.completer.Complete(ctx, systemPrompt, prompt)
	})
	if err != nil {
		g.log.Warn().Err(err).Str("op", op).Msg("consulta al generador fallida")
		return out, err
	}
	clean := extractJSON(raw)
	if clean == "" {
		g.log.Warn().Str("op", op).Msg("el generador no devolvió JSON")
		return out, fmt.Errorf("%w: %s sin JSON", domain.ErrContract, op)
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		g.log.Warn().Err(err).Str("op", op).Msg("JSON inválido del generador")
		return out, fmt.Errorf("%w: %s: %v", domain.ErrContract, op, err)
	}
	g.log.Debug().Str("op", op).Msg("respuesta del generador recibida")
	return out, nil
}

// FetchCreativeData pide empresas, contactos y productos. Sin esta respuesta la corrida no puede seguir.
func (g *Generator) FetchCreativeData(ctx context.Context, c entity.Criteria, language string) (*entity.CreativeData, error) {
	data, err := ask[*entity.CreativeData](ctx, g, "creative_data", creativePrompt(c, language))
	if err != nil {
		if errors.Is(err, domain.ErrGeneratorTimeout) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneratorUnavailable, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: respuesta vacía", domain.ErrGeneratorUnavailable)
	}
	return data, nil
}

// FetchNameSuggestions pide nombres para las etapas del orquestador.
func (g *Generator) FetchNameSuggestions(ctx context.Context, c entity.Criteria, language string) (*entity.NameSuggestions, error) {
	return ask[*entity.NameSuggestions](ctx, g, "name_suggestions", namesPrompt(c, language))
}

// FetchUOMAssignment devuelve el id elegido; 0 si el modelo propone algo fuera de options.
func (g *Generator) FetchUOMAssignment(ctx context.Context, productName string, options []ports.UOMOption, language string) (int, error) {
	if len(options) == 0 {
		return 0, nil
	}
	resp, err := ask[uomResponse](ctx, g, "uom_assignment", uomPrompt(productName, options, language))
	if err != nil {
		return 0, err
	}
	id, ok := ports.AsID(resp.UOMID)
	if !ok {
		return 0, nil
	}
	for _, o := range options {
		if o.ID == id {
			return id, nil
		}
	}
	return 0, nil
}

// FetchBOMComponentNames devuelve hasta count nombres de componentes.
func (g *Generator) FetchBOMComponentNames(ctx context.Context, industry, productName string, count int, language string) ([]string, error) {
	resp, err := ask[componentsResponse](ctx, g, "bom_components", bomPrompt(industry, productName, count, language))
	if err != nil {
		return nil, err
	}
	names := cleanNames(resp.Components)
	if len(names) > count {
		names = names[:count]
	}
	return names, nil
}

// FetchProjectStageNames devuelve las etapas sugeridas para un proyecto.
func (g *Generator) FetchProjectStageNames(ctx context.Context, industry, projectName, language string) ([]string, error) {
	resp, err := ask[stagesResponse](ctx, g, "project_stages", stagesPrompt(industry, projectName, language))
	if err != nil {
		return nil, err
	}
	return cleanNames(resp.Stages), nil
}

// FetchRecruitingData pide puestos, candidatos y taxonomía de habilidades.
func (g *Generator) FetchRecruitingData(ctx context.Context, industry string, jobs, candidates int, language string) (*entity.RecruitingData, error) {
	data, err := ask[*entity.RecruitingData](ctx, g, "recruiting", recruitingPrompt(industry, jobs, candidates, language))
	if err != nil || data == nil {
		return nil, err
	}
	data.Jobs = cleanNames(data.Jobs)
	data.Candidates = cleanNames(data.Candidates)
	return data, nil
}

// FetchJobSummary pide una descripción breve del puesto.
func (g *Generator) FetchJobSummary(ctx context.Context, industry, jobName, language string) (string, error) {
	resp, err := ask[summaryResponse](ctx, g, "job_summary", jobSummaryPrompt(industry, jobName, language))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Summary), nil
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// jsonBlockRe captura desde el primer '{' hasta el último '}'.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON quita bloques de código markdown y devuelve el primer objeto JSON.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
