package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// Verificar en tiempo de compilación que Client implementa ObjectGateway.
var _ ports.ObjectGateway = (*Client)(nil)

const defaultUserAgent = "odoo-daten-generator"

// maxTransientStreak llamadas lógicas seguidas sin respuesta del servidor a partir de
// las cuales se considera caído el ERP.
const maxTransientStreak = 3

// HTTPClient permite sustituir el transporte en tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config parámetros de conexión al ERP.
type Config struct {
	URL       string
	DB        string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64 // peticiones por segundo, 0 = sin límite
	Burst     int
}

// Option modifica el Client al construirlo.
type Option func(*Client)

// WithHTTPClient reemplaza el cliente HTTP por defecto.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithConventions reemplaza el orden de convenciones de endpoint.
func WithConventions(conv ...Convention) Option {
	return func(c *Client) { c.conventions = conv }
}

// Client gateway JSON-2 contra un servidor Odoo.
type Client struct {
	baseURL     string
	db          string
	apiKey      string
	userAgent   string
	http        HTTPClient
	limiter     *rate.Limiter
	conventions []Convention
	log         zerolog.Logger

	// dbInQuery se comparte entre sesiones: una vez que el servidor aceptó
	// la base en la query string, se sigue usando esa forma.
	dbInQuery *atomic.Bool
	streak    *atomic.Int32
	errs      *entity.ErrorLog
}

// New construye el cliente. La URL base termina en /json/2.
func New(cfg Config, log zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: url del ERP vacía", domain.ErrInvalidInput)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key del ERP vacía", domain.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/") + "/json/2",
		db:          cfg.DB,
		apiKey:      cfg.APIKey,
		userAgent:   cfg.UserAgent,
		http:        &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(limit, burst),
		conventions: DefaultConventions,
		log:         log.With().Str("component", "odoo").Logger(),
		dbInQuery:   &atomic.Bool{},
		streak:      &atomic.Int32{},
		errs:        &entity.ErrorLog{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session devuelve un cliente con el mismo transporte y un acumulador de errores propio.
func (c *Client) Session() *Client {
	s := *c
	s.errs = &entity.ErrorLog{}
	return &s
}

// Errors devuelve los fallos acumulados por esta sesión.
func (c *Client) Errors() []entity.ErrorRecord {
	return c.errs.Records()
}

// Create crea un registro y devuelve su id.
func (c *Client) Create(ctx context.Context, model string, values entity.Values) (int, error) {
	res, err := c.execute(ctx, operation{kind: opCreate, model: model, method: "create", values: values})
	if err != nil {
		return 0, err
	}
	if id, ok := ports.AsID(res); ok {
		return id, nil
	}
	return 0, c.contract(model, "create", res)
}

// Write actualiza ids con values.
func (c *Client) Write(ctx context.Context, model string, ids []int, values entity.Values) (bool, error) {
	res, err := c.execute(ctx, operation{kind: opWrite, model: model, method: "write", ids: ids, values: values})
	if err != nil {
		return false, err
	}
	ok, _ := res.(bool)
	return ok, nil
}

// SearchRead filtra por dominio; limit 0 se omite del payload (sin límite).
func (c *Client) SearchRead(ctx context.Context, model string, dom ports.Domain, fields []string, limit int) ([]ports.Record, error) {
	res, err := c.execute(ctx, operation{
		kind: opSearchRead, model: model, method: "search_read",
		domain: dom, fields: fields, limit: limit,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	rows, ok := res.([]any)
	if !ok {
		return nil, c.contract(model, "search_read", res)
	}
	out := make([]ports.Record, 0, len(rows))
	for _, r := range rows {
		if m, ok := r.(map[string]any); ok {
			out = append(out, ports.Record(m))
		}
	}
	return out, nil
}

// CallMethod invoca un método de negocio sobre ids.
func (c *Client) CallMethod(ctx context.Context, model, method string, ids []int, args []any, kwargs map[string]any) (any, error) {
	return c.execute(ctx, operation{kind: opMethod, model: model, method: method, ids: ids, args: args, kwargs: kwargs})
}

// execute prueba las convenciones en orden hasta que una responde. Todos los
// intentos fallidos de una misma llamada se agregan en un único ErrorRecord.
func (c *Client) execute(ctx context.Context, op operation) (any, error) {
	var (
		attempts []*RemoteError
		keys     []string
	)
	for _, conv := range c.conventions {
		path, payload, ok := conv.Build(op)
		if !ok {
			continue
		}
		if keys == nil {
			keys = payloadKeys(payload)
		}
		res, err := c.send(ctx, conv.Name, path, payload)
		var re *RemoteError
		if errors.As(err, &re) && re.routeMissing() && !strings.HasSuffix(path, "/") {
			attempts = append(attempts, re)
			res, err = c.send(ctx, conv.Name, path+"/", payload)
		}
		if err == nil {
			return res, nil
		}
		if !errors.As(err, &re) {
			c.record(op, keys, attempts, err)
			return nil, fmt.Errorf("%s.%s: %w", op.model, op.method, err)
		}
		attempts = append(attempts, re)
		if !re.shapeMismatch() {
			break
		}
	}
	if len(attempts) == 0 {
		err := fmt.Errorf("%w: ninguna convención admite %s.%s", domain.ErrContract, op.model, op.method)
		c.record(op, keys, nil, err)
		return nil, err
	}
	c.record(op, keys, attempts, nil)
	errs := make([]error, len(attempts))
	for i, a := range attempts {
		errs[i] = a
	}
	return nil, fmt.Errorf("%s.%s: %w", op.model, op.method, errors.Join(errs...))
}

// send hace una petición. Ante un 401 con la base en cabecera reintenta una
// sola vez pasando la base en la query string.
func (c *Client) send(ctx context.Context, conv, path string, payload map[string]any) (any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: serializar payload: %v", domain.ErrContract, err)
	}

	inQuery := c.dbInQuery.Load()
	res, err := c.attempt(ctx, conv, path, body, inQuery)
	var re *RemoteError
	if inQuery || c.db == "" || !errors.As(err, &re) || re.StatusCode != http.StatusUnauthorized {
		return res, err
	}

	c.log.Warn().Str("path", path).Msg("401 con cabecera X-Odoo-Database, reintentando con ?db=")
	res, err = c.attempt(ctx, conv, path, body, true)
	if err == nil {
		c.dbInQuery.Store(true)
	}
	return res, err
}

// attempt hace la petición y la repite una vez ante un fallo de red puntual. Si el
// reintento también falla el error es un RemoteError sin estado HTTP (fallo por registro),
// salvo que se acumulen maxTransientStreak llamadas seguidas sin respuesta.
func (c *Client) attempt(ctx context.Context, conv, path string, body []byte, dbInQuery bool) (any, error) {
	var te *transientError
	res, err := c.do(ctx, conv, path, body, dbInQuery)
	if errors.As(err, &te) {
		c.log.Warn().Err(te.err).Str("path", path).Msg("fallo de red puntual, reintentando")
		res, err = c.do(ctx, conv, path, body, dbInQuery)
	}
	if !errors.As(err, &te) {
		var re *RemoteError
		if err == nil || errors.As(err, &re) {
			c.streak.Store(0)
		}
		return res, err
	}
	if n := c.streak.Add(1); n >= maxTransientStreak {
		return nil, fmt.Errorf("%w: %d llamadas seguidas sin respuesta: %v", domain.ErrTransport, n, te.err)
	}
	return nil, &RemoteError{Convention: conv, URL: te.url, Cause: te.err}
}

func (c *Client) do(ctx context.Context, conv, path string, body []byte, dbInQuery bool) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	endpoint := c.baseURL + path
	if dbInQuery && c.db != "" {
		endpoint += "?db=" + url.QueryEscape(c.db)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if !dbInQuery && c.db != "" {
		req.Header.Set("X-Odoo-Database", c.db)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, endpoint, fmt.Errorf("leer respuesta: %w", err))
	}

	c.log.Debug().Str("url", endpoint).Int("status", resp.StatusCode).Msg("odoo request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{Convention: conv, URL: endpoint, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return decodeResult(conv, endpoint, resp.StatusCode, raw)
}

// transientError fallo de red que merece un reintento: timeout o conexión cortada.
type transientError struct {
	url string
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

// classify separa los cortes puntuales del resto de fallos de transporte, que son fatales.
func classify(ctx context.Context, endpoint string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var ne net.Error
	if (errors.As(err, &ne) && ne.Timeout()) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return &transientError{url: endpoint, err: err}
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}

// decodeResult acepta el resultado JSON-2 directo y el sobre JSON-RPC de call_kw.
func decodeResult(conv, endpoint string, status int, raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var res any
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &RemoteError{Convention: conv, URL: endpoint, StatusCode: status, Body: string(raw)}
	}
	env, ok := res.(map[string]any)
	if !ok {
		return res, nil
	}
	if _, rpc := env["jsonrpc"]; !rpc {
		return res, nil
	}
	if e, failed := env["error"]; failed && e != nil {
		msg, _ := json.Marshal(e)
		return nil, &RemoteError{Convention: conv, URL: endpoint, StatusCode: http.StatusInternalServerError, Body: string(msg)}
	}
	return env["result"], nil
}

func (c *Client) record(op operation, keys []string, attempts []*RemoteError, cause error) {
	rec := entity.ErrorRecord{Method: op.method, PayloadKeys: keys}
	var msgs []string
	for _, a := range attempts {
		msgs = append(msgs, a.Error())
		rec.URL, rec.StatusCode, rec.ErrorBody = a.URL, a.StatusCode, a.Body
	}
	if cause != nil {
		msgs = append(msgs, cause.Error())
		if rec.URL == "" {
			rec.URL = fmt.Sprintf("%s/%s/%s", c.baseURL, op.model, op.method)
		}
	}
	rec.ErrorMessage = strings.Join(msgs, "; ")
	c.errs.Add(rec)
	c.log.Warn().
		Str("model", op.model).
		Str("method", op.method).
		Int("status", rec.StatusCode).
		Int("attempts", len(attempts)).
		Msg(rec.ErrorMessage)
}

func (c *Client) contract(model, method string, res any) error {
	err := fmt.Errorf("%w: respuesta inesperada de %s.%s: %T", domain.ErrContract, model, method, res)
	c.errs.Add(entity.ErrorRecord{
		URL:          fmt.Sprintf("%s/%s/%s", c.baseURL, model, method),
		Method:       method,
		StatusCode:   http.StatusOK,
		ErrorMessage: err.Error(),
	})
	return err
}

func payloadKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for k, v := range payload {
		keys = append(keys, k)
		if vals, ok := v.(entity.Values); ok {
			keys = append(keys, vals.Keys()...)
		}
		if list, ok := v.([]any); ok && len(list) == 1 {
			if vals, ok := list[0].(entity.Values); ok {
				keys = append(keys, vals.Keys()...)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
