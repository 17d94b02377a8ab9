package redis_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/textflow/pkg/persistence"
	settingsredis "github.com/dukex/textflow/pkg/persistence/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) (*settingsredis.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := settingsredis.NewPersistence(ctx, logger, fmt.Sprintf("redis://%s/0", endpoint))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	return store, ctx
}

func TestNewPersistence_InvalidURL(t *testing.T) {
	_, err := settingsredis.NewPersistence(t.Context(), slog.Default(), "://bad")
	assert.Error(t, err)
}

func TestPersistence_SetGetDelete(t *testing.T) {
	store, ctx := setupRedis(t)

	require.NoError(t, store.HealthCheck(ctx))

	_, err := store.Get(ctx, "active_workflow_id")
	assert.True(t, persistence.IsKeyNotFound(err))

	require.NoError(t, store.Set(ctx, "active_workflow_id", []byte(`"wf-1"`)))

	value, err := store.Get(ctx, "active_workflow_id")
	require.NoError(t, err)
	assert.Equal(t, `"wf-1"`, string(value))

	require.NoError(t, store.Delete(ctx, "active_workflow_id"))

	_, err = store.Get(ctx, "active_workflow_id")
	assert.True(t, persistence.IsKeyNotFound(err))
}
