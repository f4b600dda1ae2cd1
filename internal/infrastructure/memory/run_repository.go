// Package memory historial de corridas en memoria, para cuando no hay PostgreSQL configurado.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/domain/repository"
)

var _ repository.RunRepository = (*RunRepo)(nil)

// MaxRuns corridas retenidas; las más antiguas se descartan.
const MaxRuns = 200

// RunRepo historial acotado en memoria.
type RunRepo struct {
	mu   sync.RWMutex
	runs map[string]entity.Run
}

// NewRunRepository construye el repositorio vacío.
func NewRunRepository() *RunRepo {
	return &RunRepo{runs: map[string]entity.Run{}}
}

func (r *RunRepo) Create(_ context.Context, run *entity.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("corrida %s duplicada", run.ID)
	}
	r.runs[run.ID] = *run
	r.evict()
	return nil
}

func (r *RunRepo) Update(_ context.Context, run *entity.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("corrida %s no existe", run.ID)
	}
	r.runs[run.ID] = *run
	return nil
}

func (r *RunRepo) GetByID(_ context.Context, id string) (*entity.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (r *RunRepo) List(_ context.Context, limit, offset int) ([]*entity.Run, error) {
	r.mu.RLock()
	all := r.sorted()
	r.mu.RUnlock()
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// sorted de la más reciente a la más antigua. Requiere el lock tomado.
func (r *RunRepo) sorted() []*entity.Run {
	out := make([]*entity.Run, 0, len(r.runs))
	for _, run := range r.runs {
		run := run
		out = append(out, &run)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func (r *RunRepo) evict() {
	if len(r.runs) <= MaxRuns {
		return
	}
	all := r.sorted()
	for _, old := range all[MaxRuns:] {
		delete(r.runs, old.ID)
	}
}
