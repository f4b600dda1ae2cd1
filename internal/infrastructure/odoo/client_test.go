package odoo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/odoo"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor falso
// ──────────────────────────────────────────────────────────────────────────────

type hit struct {
	Path     string
	Query    string
	DBHeader string
	Auth     string
	Payload  map[string]any
}

type fakeServer struct {
	mu      sync.Mutex
	hits    []hit
	handler func(h hit) (int, any)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	_ = json.NewDecoder(r.Body).Decode(&payload)
	h := hit{
		Path:     r.URL.Path,
		Query:    r.URL.RawQuery,
		DBHeader: r.Header.Get("X-Odoo-Database"),
		Auth:     r.Header.Get("Authorization"),
		Payload:  payload,
	}
	f.mu.Lock()
	f.hits = append(f.hits, h)
	f.mu.Unlock()

	status, body := f.handler(h)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeServer) Hits() []hit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]hit(nil), f.hits...)
}

func newClient(t *testing.T, handler func(h hit) (int, any)) (*odoo.Client, *fakeServer) {
	t.Helper()
	fs := &fakeServer{handler: handler}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)

	c, err := odoo.New(odoo.Config{URL: srv.URL, DB: "demo", APIKey: "secret"}, zerolog.Nop(),
		odoo.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, fs
}

// ──────────────────────────────────────────────────────────────────────────────
// Construcción
// ──────────────────────────────────────────────────────────────────────────────

func TestNew_ValidaConfiguracion(t *testing.T) {
	_, err := odoo.New(odoo.Config{APIKey: "x"}, zerolog.Nop())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = odoo.New(odoo.Config{URL: "http://erp"}, zerolog.Nop())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Convenciones de endpoint
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ConvencionPrimaria(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) { return 200, []int{42} })

	id, err := c.Create(context.Background(), "res.partner", entity.Values{"name": "Muster GmbH"})
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	hits := fs.Hits()
	require.Len(t, hits, 1)
	assert.Equal(t, "/json/2/res.partner/create", hits[0].Path)
	assert.Equal(t, "demo", hits[0].DBHeader)
	assert.Equal(t, "Bearer secret", hits[0].Auth)
	assert.Contains(t, hits[0].Payload, "vals_list")
	assert.Empty(t, c.Errors())
}

func TestCreate_CaeACallKwTras404(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) {
		if h.Path == "/json/2/call_kw/res.partner/create" {
			return 200, 7
		}
		return 404, map[string]any{"message": "not found"}
	})

	id, err := c.Create(context.Background(), "res.partner", entity.Values{"name": "X"})
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	hits := fs.Hits()
	require.Len(t, hits, 3, "json2, json2 con barra final y call_kw")
	assert.Equal(t, "/json/2/res.partner/create/", hits[1].Path)
	args, ok := hits[2].Payload["args"].([]any)
	require.True(t, ok)
	assert.Len(t, args, 1)
	assert.Empty(t, c.Errors(), "un intento exitoso no registra error")
}

func TestCreate_VarianteConBarraFinal(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) {
		if h.Path == "/json/2/res.partner/create/" {
			return 200, []int{11}
		}
		return 404, map[string]any{"message": "not found"}
	})

	id, err := c.Create(context.Background(), "res.partner", entity.Values{"name": "X"})
	require.NoError(t, err)
	assert.Equal(t, 11, id)
	assert.Len(t, fs.Hits(), 2)
	assert.Empty(t, c.Errors())
}

func TestCreate_TodasFallanUnSoloRegistro(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) {
		return 422, map[string]any{"message": "Invalid field 'detailed_type'"}
	})

	_, err := c.Create(context.Background(), "product.product", entity.Values{"name": "X", "detailed_type": "product"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteWrite))

	var re *odoo.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 422, re.StatusCode)

	assert.Len(t, fs.Hits(), 3, "json2, call_kw y legacy")
	errs := c.Errors()
	require.Len(t, errs, 1, "una llamada lógica produce un único registro")
	assert.Equal(t, "create", errs[0].Method)
	assert.Equal(t, 422, errs[0].StatusCode)
	assert.Contains(t, errs[0].ErrorBody, "detailed_type")
	assert.Contains(t, errs[0].PayloadKeys, "detailed_type")
	assert.Contains(t, errs[0].ErrorMessage, "call_kw")
}

func TestWrite_ErrorNoRecuperableNoProbarOtras(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) { return 500, map[string]any{"message": "boom"} })

	_, err := c.Write(context.Background(), "res.partner", []int{1}, entity.Values{"name": "Y"})
	require.Error(t, err)
	assert.Len(t, fs.Hits(), 1)
	require.Len(t, c.Errors(), 1)
	assert.Equal(t, 500, c.Errors()[0].StatusCode)
}

func TestSearchRead_LimitCeroSeOmite(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) {
		return 200, []map[string]any{{"id": 1, "name": "Units"}, {"id": 2, "name": "kg"}}
	})
	ctx := context.Background()

	recs, err := c.SearchRead(ctx, "uom.uom", nil, []string{"name"}, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[1].ID())

	_, err = c.SearchRead(ctx, "uom.uom", ports.Where("name", "=", "kg"), []string{"name"}, 5)
	require.NoError(t, err)

	hits := fs.Hits()
	require.Len(t, hits, 2)
	assert.NotContains(t, hits[0].Payload, "limit")
	assert.Equal(t, []any{}, hits[0].Payload["domain"])
	assert.Equal(t, float64(5), hits[1].Payload["limit"])
	assert.Equal(t, []any{[]any{"name", "=", "kg"}}, hits[1].Payload["domain"])
}

func TestCallMethod_ConArgsUsaCallKw(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) { return 200, true })

	_, err := c.CallMethod(context.Background(), "sale.order", "action_confirm", []int{3, 4}, []any{"extra"}, nil)
	require.NoError(t, err)

	hits := fs.Hits()
	require.Len(t, hits, 1)
	assert.Equal(t, "/json/2/call_kw/sale.order/action_confirm", hits[0].Path)
	assert.Equal(t, []any{[]any{float64(3), float64(4)}, "extra"}, hits[0].Payload["args"])
}

func TestCallMethod_SobreJSONRPC(t *testing.T) {
	c, _ := newClient(t, func(h hit) (int, any) {
		return 200, map[string]any{"jsonrpc": "2.0", "id": nil, "result": true}
	})
	res, err := c.CallMethod(context.Background(), "account.move", "action_post", []int{1}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, res)
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_Reintento401ConDBEnQuery(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) {
		if h.DBHeader != "" {
			return 401, map[string]any{"message": "unauthorized"}
		}
		return 200, []int{9}
	})
	ctx := context.Background()

	id, err := c.Create(ctx, "res.partner", entity.Values{"name": "A"})
	require.NoError(t, err)
	assert.Equal(t, 9, id)

	hits := fs.Hits()
	require.Len(t, hits, 2)
	assert.Equal(t, "db=demo", hits[1].Query)
	assert.Empty(t, hits[1].DBHeader)

	// la forma aceptada se recuerda también en sesiones nuevas
	_, err = c.Session().Create(ctx, "res.partner", entity.Values{"name": "B"})
	require.NoError(t, err)
	hits = fs.Hits()
	require.Len(t, hits, 3)
	assert.Equal(t, "db=demo", hits[2].Query)
}

func TestAuth_401PersistenteSoloUnReintento(t *testing.T) {
	c, fs := newClient(t, func(h hit) (int, any) { return 401, map[string]any{"message": "bad key"} })

	_, err := c.Create(context.Background(), "res.partner", entity.Values{"name": "A"})
	require.Error(t, err)
	assert.Len(t, fs.Hits(), 2, "un intento y un único reintento")
	require.Len(t, c.Errors(), 1)
	assert.Equal(t, 401, c.Errors()[0].StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transporte y sesiones
// ──────────────────────────────────────────────────────────────────────────────

type failingTransport struct{}

func (failingTransport) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransporte_ErrorEsFatal(t *testing.T) {
	c, err := odoo.New(odoo.Config{URL: "http://erp.invalid", DB: "demo", APIKey: "k"}, zerolog.Nop(),
		odoo.WithHTTPClient(failingTransport{}))
	require.NoError(t, err)

	_, err = c.Create(context.Background(), "res.partner", entity.Values{"name": "A"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.False(t, errors.Is(err, domain.ErrRemoteWrite))
	require.Len(t, c.Errors(), 1)
}

func TestSession_ErroresAislados(t *testing.T) {
	c, _ := newClient(t, func(h hit) (int, any) { return 500, map[string]any{} })
	ctx := context.Background()

	s1, s2 := c.Session(), c.Session()
	_, _ = s1.Create(ctx, "res.partner", entity.Values{"name": "A"})

	assert.Len(t, s1.Errors(), 1)
	assert.Empty(t, s2.Errors())
	assert.Empty(t, c.Errors())
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos de red puntuales
// ──────────────────────────────────────────────────────────────────────────────

// slowClient servidor que tarda más que el timeout del cliente en las primeras slow peticiones.
func slowClient(t *testing.T, slow int32) (*odoo.Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= slow {
			time.Sleep(250 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]int{7})
	}))
	t.Cleanup(srv.Close)

	c, err := odoo.New(odoo.Config{URL: srv.URL, DB: "demo", APIKey: "secret"}, zerolog.Nop(),
		odoo.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	require.NoError(t, err)
	return c, &calls
}

func TestTransitorio_ReintentoUnicoRecupera(t *testing.T) {
	c, calls := slowClient(t, 1)

	id, err := c.Create(context.Background(), "res.partner", entity.Values{"name": "A"})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, int32(2), calls.Load(), "un intento y un reintento")
	assert.Empty(t, c.Errors())
}

func TestTransitorio_RegistroOmitidoSinAbortar(t *testing.T) {
	c, _ := slowClient(t, 2)
	ctx := context.Background()

	_, err := c.Create(ctx, "res.partner", entity.Values{"name": "Lento"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteWrite))
	assert.False(t, domain.IsFatal(err), "un timeout aislado no aborta la corrida")
	require.Len(t, c.Errors(), 1)
	assert.Zero(t, c.Errors()[0].StatusCode)

	id, err := c.Create(ctx, "res.partner", entity.Values{"name": "Rápido"})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type timeoutTransport struct{ calls atomic.Int32 }

func (tt *timeoutTransport) Do(*http.Request) (*http.Response, error) {
	tt.calls.Add(1)
	return nil, timeoutErr{}
}

func TestTransitorio_CaidaSostenidaEsFatal(t *testing.T) {
	tt := &timeoutTransport{}
	c, err := odoo.New(odoo.Config{URL: "http://erp.invalid", DB: "demo", APIKey: "k"}, zerolog.Nop(),
		odoo.WithHTTPClient(tt))
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err = c.Create(ctx, "res.partner", entity.Values{"name": "A"})
		require.Error(t, err)
		assert.False(t, domain.IsFatal(err), "llamada %d", i+1)
	}
	_, err = c.Create(ctx, "res.partner", entity.Values{"name": "A"})
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Equal(t, int32(6), tt.calls.Load())
	assert.Len(t, c.Errors(), 3)
}
