package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/postgres"
	"github.com/jhoicas/demo-data-assistant/pkg/config"
)

// Requiere una base real: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres
func newRepo(t *testing.T) *postgres.RunRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return postgres.NewRunRepository(tx)
}

func TestRunRepo_CicloDeVida(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)

	run := &entity.Run{
		ID:        uuid.NewString(),
		Industry:  "Bäckerei",
		Status:    entity.RunRunning,
		StartedAt: started,
	}
	require.NoError(t, repo.Create(ctx, run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.RunRunning, got.Status)
	assert.Nil(t, got.Modules)
	assert.Nil(t, got.FinishedAt)

	finished := started.Add(3 * time.Minute)
	run.Status = entity.RunSucceeded
	run.FinishedAt = &finished
	run.Result = entity.RunResult{ProductIDs: []int{1, 2}, CompanyIDs: []int{7}}
	run.Modules = entity.NewModuleReport()
	run.Modules.Add("crm.lead", 10, 11)
	run.Errors = []entity.ErrorRecord{{URL: "/json/2/crm.lead/create", Method: "POST", StatusCode: 422}}
	require.NoError(t, repo.Update(ctx, run))

	got, err = repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunSucceeded, got.Status)
	assert.Equal(t, []int{1, 2}, got.Result.ProductIDs)
	assert.Equal(t, 2, got.Modules.Count("crm.lead"))
	require.Len(t, got.Errors, 1)
	assert.Equal(t, 422, got.Errors[0].StatusCode)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, finished.Equal(*got.FinishedAt))

	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}

func TestRunRepo_NoExiste(t *testing.T) {
	repo := newRepo(t)
	got, err := repo.GetByID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}
