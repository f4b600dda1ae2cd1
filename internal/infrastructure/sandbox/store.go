package sandbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// row registro almacenado: campos decodificados desde JSON (números como float64).
type row map[string]any

// recordStore persistencia de registros por modelo en la tabla records.
type recordStore struct {
	db *sql.DB
}

func (s *recordStore) insert(ctx context.Context, model string, data row) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("iniciar inserción: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO sequences (model, last_id) VALUES (?, 1)
		 ON CONFLICT(model) DO UPDATE SET last_id = last_id + 1
		 RETURNING last_id`, model).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("siguiente id de %s: %w", model, err)
	}

	data["id"] = float64(id)
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("serializar %s: %w", model, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (model, id, data) VALUES (?, ?, ?)`, model, id, string(raw)); err != nil {
		return 0, fmt.Errorf("insertar %s: %w", model, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("confirmar inserción: %w", err)
	}
	return id, nil
}

// get devuelve nil, nil si el registro no existe.
func (s *recordStore) get(ctx context.Context, model string, id int) (row, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE model = ? AND id = ?`, model, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer %s,%d: %w", model, id, err)
	}
	return decodeRow(raw)
}

func (s *recordStore) update(ctx context.Context, model string, id int, data row) error {
	data["id"] = float64(id)
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serializar %s: %w", model, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE model = ? AND id = ?`,
		string(raw), model, id)
	if err != nil {
		return fmt.Errorf("actualizar %s,%d: %w", model, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s,%d no existe", model, id)
	}
	return nil
}

// all devuelve los registros del modelo ordenados por id.
func (s *recordStore) all(ctx context.Context, model string) ([]row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records WHERE model = ? ORDER BY id`, model)
	if err != nil {
		return nil, fmt.Errorf("listar %s: %w", model, err)
	}
	defer rows.Close()

	var out []row
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", model, err)
		}
		r, err := decodeRow(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *recordStore) count(ctx context.Context, model string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE model = ?`, model).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("contar %s: %w", model, err)
	}
	return n, nil
}

func decodeRow(raw string) (row, error) {
	var r row
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decodificar registro: %w", err)
	}
	return r, nil
}

// normalize convierte valores Go arbitrarios a la forma JSON (float64, []any, map[string]any).
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
