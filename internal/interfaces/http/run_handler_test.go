package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/demo-data-assistant/internal/application/demodata"
	"github.com/jhoicas/demo-data-assistant/internal/application/dto"
	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/application/usecase"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/memory"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/report"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/sandbox"
	apphttp "github.com/jhoicas/demo-data-assistant/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/demo-data-assistant/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// cannedGenerator solo entrega datos maestros; el resto usa plantillas.
type cannedGenerator struct{ empty bool }

func (g cannedGenerator) FetchCreativeData(context.Context, entity.Criteria, string) (*entity.CreativeData, error) {
	if g.empty {
		return nil, nil
	}
	return &entity.CreativeData{
		Companies: []entity.CompanyScenario{{CompanyData: entity.Values{"name": "Holzbau Meier GmbH"}}},
		Products:  entity.ProductBuckets{Services: []entity.Values{{"name": "Montage", "list_price": 80.0}}},
	}, nil
}
func (cannedGenerator) FetchNameSuggestions(context.Context, entity.Criteria, string) (*entity.NameSuggestions, error) {
	return nil, nil
}
func (cannedGenerator) FetchUOMAssignment(context.Context, string, []ports.UOMOption, string) (int, error) {
	return 0, nil
}
func (cannedGenerator) FetchBOMComponentNames(context.Context, string, string, int, string) ([]string, error) {
	return nil, nil
}
func (cannedGenerator) FetchProjectStageNames(context.Context, string, string, string) ([]string, error) {
	return nil, nil
}
func (cannedGenerator) FetchRecruitingData(context.Context, string, int, int, string) (*entity.RecruitingData, error) {
	return nil, nil
}
func (cannedGenerator) FetchJobSummary(context.Context, string, string, string) (string, error) {
	return "", nil
}

func buildAPI(t *testing.T, gen ports.EntityGenerator) *fiber.App {
	t.Helper()
	store, err := sandbox.OpenStore(context.Background(), ":memory:", zerolog.Nop(), sandbox.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	uc := usecase.NewDemoDataUseCase(
		func() ports.ObjectGateway { return store.Session() },
		gen,
		usecase.DemoDataConfig{SerialSlot: 0, LotSlot: 1, Orchestrator: demodata.DefaultConfig()},
		zerolog.Nop(),
		usecase.WithRunRepository(memory.NewRunRepository()),
		usecase.WithSeed(7),
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{DemoData: uc, JWTSecret: testJWTSecret})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

const runBody = `{
	"criteria": {"industry": "Zimmerei", "mode": "master_only", "num_companies": 1, "num_services": 1},
	"modules": {"crm": 2, "project": {"projects": 1, "tasks_per_project": 2}}
}`

// ──────────────────────────────────────────────────────────────────────────────
// Tests RunHandler
// ──────────────────────────────────────────────────────────────────────────────

func TestRunHandler_CrearYConsultar(t *testing.T) {
	app := buildAPI(t, cannedGenerator{})

	resp := call(t, app, http.MethodPost, "/api/demo-data/runs", pkgjwt.RoleAdmin, runBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, entity.RunSucceeded, created.Status)
	assert.Equal(t, "Zimmerei", created.Industry)
	require.NotNil(t, created.Modules)
	assert.Equal(t, 2, created.Modules.Count("crm.lead"))
	assert.Equal(t, 1, created.Modules.Count("project.project"))

	resp = call(t, app, http.MethodGet, "/api/demo-data/runs/"+created.ID, pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, created.ID, got.ID)

	resp = call(t, app, http.MethodGet, "/api/demo-data/runs", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.RunListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list.Items, 1)
}

func TestRunHandler_ReporteXLSX(t *testing.T) {
	app := buildAPI(t, cannedGenerator{})
	resp := call(t, app, http.MethodPost, "/api/demo-data/runs", pkgjwt.RoleAdmin, runBody)
	var created dto.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = call(t, app, http.MethodGet, "/api/demo-data/runs/"+created.ID+"/report", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, report.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), created.ID)

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	id, _ := f.GetCellValue(report.SheetSummary, "B1")
	assert.Equal(t, created.ID, id)
}

func TestRunHandler_OperadorNoPuedeLanzar(t *testing.T) {
	app := buildAPI(t, cannedGenerator{})
	resp := call(t, app, http.MethodPost, "/api/demo-data/runs", pkgjwt.RoleOperator, runBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRunHandler_Validacion(t *testing.T) {
	app := buildAPI(t, cannedGenerator{})
	resp := call(t, app, http.MethodPost, "/api/demo-data/runs", pkgjwt.RoleAdmin,
		`{"criteria": {"industry": "", "mode": "master_only"}}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "required", body.Fields["RunRequest.Criteria.Industry"])
}

func TestRunHandler_CuerpoInvalido(t *testing.T) {
	app := buildAPI(t, cannedGenerator{})
	resp := call(t, app, http.MethodPost, "/api/demo-data/runs", pkgjwt.RoleAdmin, `{"criteria": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunHandler_GeneradorSinDatos_503(t *testing.T) {
	app := buildAPI(t, cannedGenerator{empty: true})
	resp := call(t, app, http.MethodPost, "/api/demo-data/runs", pkgjwt.RoleAdmin, runBody)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var out dto.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.RunFailed, out.Status)
	assert.NotNil(t, out.Errors)
}

func TestRunHandler_NoEncontrada(t *testing.T) {
	app := buildAPI(t, cannedGenerator{})
	resp := call(t, app, http.MethodGet, "/api/demo-data/runs/7f0c2d4e-1111-4222-8333-444455556666", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/demo-data/runs/abc", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunHandler_Modulos(t *testing.T) {
	app := buildAPI(t, cannedGenerator{})
	resp := call(t, app, http.MethodGet, "/api/demo-data/modules", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mods []dto.ModuleInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mods))
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name
	}
	assert.Equal(t, strings.Join(entity.SupportedModules, ","), strings.Join(names, ","))
}
