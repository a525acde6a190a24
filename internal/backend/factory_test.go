package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/config"
	"finanzas/internal/core"
	"finanzas/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sqlite",
		SQLiteDBPath:        "ledger.db",
		AMQPExchange:        "finanzas",
		GoogleSpreadsheetID: "sheet",
		GoogleSheetName:     "Transactions",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "ledger.db", cfg.SQLiteDBPath)
	assert.Equal(t, "finanzas", cfg.AMQPExchange)
	assert.Equal(t, "sheet", cfg.GoogleSpreadsheetID)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: "redis"}.Validate())
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackend_Memory(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	defer res.Close()

	assert.Nil(t, res.Publisher)
	require.NotNil(t, res.Service)
	assert.NotEmpty(t, res.Service.Categories())
}

func TestCreateBackend_SQLitePersists(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db")}
	factory := NewFactory(nil)

	res, err := factory.CreateBackend(ctx, cfg)
	require.NoError(t, err)
	card, err := res.Service.SaveCreditCard(ctx, core.CreditCard{Name: "Visa", CutOffDay: 25, PaymentDay: 10})
	require.NoError(t, err)
	require.NoError(t, res.Close())

	reopened, err := factory.CreateBackend(ctx, cfg)
	require.NoError(t, err)
	defer reopened.Close()

	cards := reopened.Service.CreditCards()
	require.Len(t, cards, 1)
	assert.Equal(t, card.ID, cards[0].ID)
}

func TestCreateMirror_DefaultsToMemory(t *testing.T) {
	mirror, err := NewFactory(nil).CreateMirror(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.IsType(t, &memory.Mirror{}, mirror)
}

func TestJoinCleanups(t *testing.T) {
	assert.Nil(t, joinCleanups(nil))

	var order []int
	boom := errors.New("boom")
	cleanup := joinCleanups([]CleanupFunc{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return boom },
	})
	assert.ErrorIs(t, cleanup(), boom)
	assert.Equal(t, []int{2, 1}, order)
}

func TestBackendResultCloseNil(t *testing.T) {
	var res *BackendResult
	assert.NoError(t, res.Close())
}
