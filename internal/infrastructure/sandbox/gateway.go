package sandbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/demo-data-assistant/internal/application/ports"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// Verificar en tiempo de compilación que Gateway implementa ObjectGateway.
var _ ports.ObjectGateway = (*Gateway)(nil)

// remoteError rechazo simulado del ERP (validación, registro inexistente, método desconocido).
type remoteError struct {
	status int
	msg    string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return domain.ErrRemoteWrite }

func invalid(format string, args ...any) error {
	return &remoteError{status: http.StatusUnprocessableEntity, msg: fmt.Sprintf(format, args...)}
}

func missing(format string, args ...any) error {
	return &remoteError{status: http.StatusNotFound, msg: fmt.Sprintf(format, args...)}
}

// Store almacén en proceso compartido por todas las sesiones (corridas).
type Store struct {
	db      *sql.DB
	records *recordStore
	log     zerolog.Logger
	mu      sync.Mutex
}

// NewStore migra la base y siembra los datos de referencia si está vacía.
func NewStore(ctx context.Context, db *sql.DB, log zerolog.Logger, opts Options) (*Store, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	s := &Store{db: db, records: &recordStore{db: db}, log: log}
	if err := s.seed(ctx, opts.withDefaults()); err != nil {
		return nil, fmt.Errorf("sembrar sandbox: %w", err)
	}
	return s, nil
}

// OpenStore abre la base en dsn y construye el Store.
func OpenStore(ctx context.Context, dsn string, log zerolog.Logger, opts Options) (*Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	s, err := NewStore(ctx, db, log, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session abre un gateway con su propio acumulador de errores.
func (s *Store) Session() *Gateway {
	return &Gateway{store: s, errs: &entity.ErrorLog{}}
}

// Gateway implementación en proceso del gateway de objetos.
type Gateway struct {
	store *Store
	errs  *entity.ErrorLog
}

// Create crea un registro aplicando valores por defecto, validación y comandos x2many.
func (g *Gateway) Create(ctx context.Context, model string, values entity.Values) (int, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	id, err := g.store.create(ctx, model, values)
	if err != nil {
		return 0, g.fail(model, "create", values.Keys(), err)
	}
	g.store.log.Debug().Str("model", model).Int("id", id).Msg("sandbox: create")
	return id, nil
}

// Write actualiza los registros indicados. Falla completo si alguno no existe.
func (g *Gateway) Write(ctx context.Context, model string, ids []int, values entity.Values) (bool, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	if err := g.store.write(ctx, model, ids, values); err != nil {
		return false, g.fail(model, "write", values.Keys(), err)
	}
	return true, nil
}

// SearchRead filtra por dominio, proyecta campos y respeta limit (0 = sin límite).
func (g *Gateway) SearchRead(ctx context.Context, model string, dom ports.Domain, fields []string, limit int) ([]ports.Record, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	recs, err := g.store.searchRead(ctx, model, dom, fields, limit)
	if err != nil {
		return nil, g.fail(model, "search_read", fields, err)
	}
	return recs, nil
}

// CallMethod simula los métodos de negocio que usa el pipeline.
func (g *Gateway) CallMethod(ctx context.Context, model, method string, ids []int, args []any, kwargs map[string]any) (any, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	res, err := g.store.call(ctx, model, method, ids)
	if err != nil {
		return nil, g.fail(model, method, nil, err)
	}
	return res, nil
}

// Errors devuelve los fallos acumulados por esta sesión.
func (g *Gateway) Errors() []entity.ErrorRecord {
	return g.errs.Records()
}

func (g *Gateway) fail(model, method string, keys []string, err error) error {
	rec := entity.ErrorRecord{
		URL:          fmt.Sprintf("sandbox://%s/%s", model, method),
		Method:       method,
		ErrorMessage: err.Error(),
		ErrorBody:    err.Error(),
		PayloadKeys:  keys,
	}
	var re *remoteError
	if errors.As(err, &re) {
		rec.StatusCode = re.status
	} else {
		rec.StatusCode = http.StatusInternalServerError
		err = fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
	}
	g.errs.Add(rec)
	g.store.log.Warn().Str("model", model).Str("method", method).Int("status", rec.StatusCode).Msg(rec.ErrorMessage)
	return fmt.Errorf("%s.%s: %w", model, method, err)
}
