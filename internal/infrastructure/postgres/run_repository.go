package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/domain/repository"
)

// Asegura que RunRepo implementa repository.RunRepository.
var _ repository.RunRepository = (*RunRepo)(nil)

// RunRepo historial de corridas sobre PostgreSQL. result, modules y errors se guardan como JSONB.
type RunRepo struct {
	q Querier
}

// NewRunRepository construye el adaptador.
func NewRunRepository(q Querier) *RunRepo {
	return &RunRepo{q: q}
}

const runColumns = `id, industry, status, result, modules, errors, failure, started_at, finished_at`

// Create persiste una corrida nueva.
func (r *RunRepo) Create(ctx context.Context, run *entity.Run) error {
	query := `INSERT INTO demo_runs (` + runColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		run.ID, run.Industry, string(run.Status), run.Result, run.Modules, errorsOf(run),
		run.Failure, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert run %s: id duplicado: %w", run.ID, err)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Update guarda el estado final de la corrida.
func (r *RunRepo) Update(ctx context.Context, run *entity.Run) error {
	query := `
		UPDATE demo_runs SET status = $2, result = $3, modules = $4, errors = $5, failure = $6, finished_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		run.ID, string(run.Status), run.Result, run.Modules, errorsOf(run), run.Failure, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update run %s: no existe", run.ID)
	}
	return nil
}

// GetByID devuelve la corrida o nil si no existe.
func (r *RunRepo) GetByID(ctx context.Context, id string) (*entity.Run, error) {
	query := `SELECT ` + runColumns + ` FROM demo_runs WHERE id = $1`
	run, err := scanRun(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List devuelve corridas de la más reciente a la más antigua.
func (r *RunRepo) List(ctx context.Context, limit, offset int) ([]*entity.Run, error) {
	query := `SELECT ` + runColumns + ` FROM demo_runs ORDER BY started_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var list []*entity.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*entity.Run, error) {
	var run entity.Run
	var status string
	if err := row.Scan(&run.ID, &run.Industry, &status, &run.Result, &run.Modules, &run.Errors,
		&run.Failure, &run.StartedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	run.Status = entity.RunStatus(status)
	return &run, nil
}

// errorsOf evita guardar JSON null en una columna NOT NULL.
func errorsOf(run *entity.Run) []entity.ErrorRecord {
	if run.Errors == nil {
		return []entity.ErrorRecord{}
	}
	return run.Errors
}
