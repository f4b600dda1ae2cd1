package repository

import (
	"context"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
)

// RunRepository define el contrato de persistencia del historial de corridas.
type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	Update(ctx context.Context, run *entity.Run) error
	GetByID(ctx context.Context, id string) (*entity.Run, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Run, error)
}
