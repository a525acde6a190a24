package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/config"
	"finanzas/internal/log"
	"finanzas/internal/storage"
)

func TestRun_StopsCleanlyOnCancel(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	cfg := &config.Config{
		DataBackend:   "sqlite",
		SQLiteDBPath:  dbPath,
		SyncInterval:  time.Hour,
		SyncBatchSize: 10,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, log.Discard(), cfg) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.Fail(t, "run did not return after cancel")
	}

	s, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestRun_ReturnsSetupErrors(t *testing.T) {
	err := run(context.Background(), log.Discard(), &config.Config{DataBackend: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backend configuration")

	err = run(context.Background(), log.Discard(), &config.Config{DataBackend: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize backend")
}
