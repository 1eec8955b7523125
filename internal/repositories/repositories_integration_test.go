//go:build integration

package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"datagen/internal/database"
	"datagen/internal/models"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("datagen"),
		postgres.WithUsername("datagen"),
		postgres.WithPassword("secret"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.ConnectDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.RunMigrations(ctx, pool))
	// Migrations must be re-runnable.
	require.NoError(t, database.RunMigrations(ctx, pool))
	return pool
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestGenerationRepository(t *testing.T) {
	repo := NewGenerationRepository(startPostgres(t))
	ctx := context.Background()

	first := &models.Generation{
		Request:    json.RawMessage(`{"tables":[{"name":"Users","fields":[],"count":1}]}`),
		TableCount: 1,
		CreatedAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, models.GenerationPending, first.Status)

	second := &models.Generation{Request: json.RawMessage(`{"tables":[]}`)}
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Complete(ctx, first.ID, models.GenerationSucceeded, 12, ""))
	require.NoError(t, repo.Complete(ctx, second.ID, models.GenerationFailed, 0, "upstream returned 503"))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationSucceeded, got.Status)
	assert.Equal(t, 12, got.RowCount)
	assert.Nil(t, got.Error)
	assert.NotNil(t, got.CompletedAt)
	assert.JSONEq(t, string(first.Request), string(got.Request))

	got, err = repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Error)
	assert.Equal(t, "upstream returned 503", *got.Error)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, repo.Complete(ctx, uuid.New(), models.GenerationFailed, 0, "x"), pgx.ErrNoRows)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	list, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRedisRepository(t *testing.T) {
	repo := NewRedisRepository(startRedis(t))
	ctx := context.Background()
	id := uuid.New()

	payload, err := repo.LoadResult(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, payload)

	require.NoError(t, repo.StoreResult(ctx, id, []byte(`{"Users":[]}`), time.Minute))
	payload, err = repo.LoadResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, `{"Users":[]}`, string(payload))

	require.NoError(t, repo.DeleteResult(ctx, id))
	payload, err = repo.LoadResult(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestRedisRepositoryExpiry(t *testing.T) {
	repo := NewRedisRepository(startRedis(t))
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.StoreResult(ctx, id, []byte("{}"), time.Second))

	require.Eventually(t, func() bool {
		payload, err := repo.LoadResult(ctx, id)
		return err == nil && payload == nil
	}, 5*time.Second, 100*time.Millisecond)
}
