// Package backend assembles the storage, event publisher and spreadsheet
// mirror selected by the configuration.
package backend

import (
	"context"

	"finanzas/internal/services"
	"finanzas/internal/sheets"
	"finanzas/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds a loaded ledger service together with the resources
// backing it.
type BackendResult struct {
	Store     storage.Store
	Publisher services.Publisher
	Service   *services.FinanceService
	Cleanup   CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the store, connects the optional publisher and
	// loads the ledger.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror returns the Google Sheets mirror when a spreadsheet is
	// configured and an in-memory mirror otherwise.
	CreateMirror(ctx context.Context, config Config) (sheets.TransactionMirror, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
