//go:build integration

package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sulytrack/internal/domain"
	"sulytrack/internal/repository"
)

func TestNewPool_Success(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := repository.NewPool(ctx, tcDSN)
	require.NoError(t, err, "expected no error from NewPool")
	defer pool.Close()

	require.NoError(t, pool.Ping(ctx), "expected no error on ping")
}

func TestNewPool_InvalidDSN(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := repository.NewPool(ctx, "not-a-valid-dsn")
	require.Error(t, err, "expected error for invalid DSN")
	require.Nil(t, pool, "expected nil pool on error")
}

func TestMigrate_Idempotent(t *testing.T) {
	require.NoError(t, repository.Migrate(tcDSN))
}

func TestChangeTrigger_Notifies(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := tcPool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN "+repository.NotifyChannel)
	require.NoError(t, err)

	repo := repository.NewCategoryRepo(tcPool)
	_, err = repo.InsertIfMissing(ctx, domain.VehicleCategory{ID: "trigger_probe", Label: "Probe", Color: "#123456", IconName: "Car"})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = repo.Delete(context.Background(), "trigger_probe") })

	n, err := conn.Conn().WaitForNotification(ctx)
	require.NoError(t, err)
	require.Equal(t, repository.NotifyChannel, n.Channel)

	var payload struct {
		Collection string `json:"collection"`
		Op         string `json:"op"`
		ID         string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(n.Payload), &payload))
	require.Equal(t, "categories", payload.Collection)
	require.Equal(t, "insert", payload.Op)
	require.Equal(t, "trigger_probe", payload.ID)
}
