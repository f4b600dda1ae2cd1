package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/memory"
)

func TestRunRepo_ListaOrdenadaYPaginada(t *testing.T) {
	repo := memory.NewRunRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, repo.Create(ctx, &entity.Run{
			ID:        fmt.Sprintf("run-%d", i),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := repo.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "run-3", page[0].ID)
	assert.Equal(t, "run-2", page[1].ID)

	empty, err := repo.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRunRepo_UpdateYDuplicados(t *testing.T) {
	repo := memory.NewRunRepository()
	ctx := context.Background()
	run := &entity.Run{ID: "a", Status: entity.RunRunning}

	require.NoError(t, repo.Create(ctx, run))
	assert.Error(t, repo.Create(ctx, run))
	assert.Error(t, repo.Update(ctx, &entity.Run{ID: "b"}))

	run.Status = entity.RunSucceeded
	require.NoError(t, repo.Update(ctx, run))
	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entity.RunSucceeded, got.Status)

	missing, err := repo.GetByID(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRunRepo_DescartaLasMasAntiguas(t *testing.T) {
	repo := memory.NewRunRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range memory.MaxRuns + 3 {
		require.NoError(t, repo.Create(ctx, &entity.Run{
			ID:        fmt.Sprintf("run-%04d", i),
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	all, err := repo.List(ctx, memory.MaxRuns+10, 0)
	require.NoError(t, err)
	assert.Len(t, all, memory.MaxRuns)
	got, _ := repo.GetByID(ctx, "run-0000")
	assert.Nil(t, got)
}
