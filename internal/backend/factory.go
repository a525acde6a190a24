package backend

import (
	"context"
	"errors"
	"fmt"

	"finanzas/internal/amqp"
	"finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/sheets"
	gsheet "finanzas/internal/sheets/google"
	"finanzas/internal/sheets/memory"
	"finanzas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store    storage.Store
		cleanups []CleanupFunc
	)
	switch config.Type {
	case SQLiteBackend:
		sqliteStore, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		store = sqliteStore
		cleanups = append(cleanups, sqliteStore.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = storage.NewMemoryStore()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// Initialize AMQP client (optional)
	var publisher services.Publisher
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
				log.FieldError, err)
		} else {
			publisher = amqpClient
			cleanups = append(cleanups, amqpClient.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result := &BackendResult{
		Store:     store,
		Publisher: publisher,
		Cleanup:   joinCleanups(cleanups),
	}

	result.Service = services.NewFinanceService(store, publisher, f.logger)
	if err := result.Service.Load(ctx); err != nil {
		_ = result.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return result, nil
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.TransactionMirror, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.InfoContext(ctx, "Google Sheets disabled, mirroring in memory")
		return memory.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, fmt.Errorf("failed to write sheet header: %w", err)
	}

	f.logger.WithComponent(log.ComponentSheets).InfoContext(ctx, "Initialized Google Sheets mirror",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)
	return client, nil
}

// joinCleanups runs cleanups in reverse order and joins their errors.
func joinCleanups(fns []CleanupFunc) CleanupFunc {
	if len(fns) == 0 {
		return nil
	}
	return func() error {
		var errs []error
		for i := len(fns) - 1; i >= 0; i-- {
			if err := fns[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
