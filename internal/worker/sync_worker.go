// Package worker mirrors ledger transactions into a spreadsheet. It reacts to
// ledger events and periodically rewrites every row to heal missed events.
package worker

import (
	"context"
	"fmt"
	"slices"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/sheets"
	"finanzas/internal/storage"
)

// SyncWorker reads the ledger from the store on every event so it always sees
// the state committed by the process that published it.
type SyncWorker struct {
	store     storage.Store
	mirror    sheets.TransactionMirror
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(store storage.Store, mirror sheets.TransactionMirror, batchSize int, logger *log.Logger) *SyncWorker {
	if batchSize < 1 {
		batchSize = 50
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent mirrors the transaction named by the event. Events for
// transactions missing from the store are dropped.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldTransactionID, msg.TransactionID,
		log.FieldOperation, msg.Operation)

	st, err := services.LoadState(ctx, w.store)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	t, ok := st.Transaction(msg.TransactionID)
	if !ok {
		w.logger.WarnContext(ctx, "Transaction not found, dropping event",
			log.FieldTransactionID, msg.TransactionID)
		return nil
	}

	if err := w.mirror.Upsert(ctx, rowFor(st, t)); err != nil {
		return fmt.Errorf("mirror transaction %s: %w", t.ID, err)
	}
	return nil
}

// ResyncAll rewrites every transaction, oldest first, pausing between batches.
// It returns the number of rows written.
func (w *SyncWorker) ResyncAll(ctx context.Context) (int, error) {
	st, err := services.LoadState(ctx, w.store)
	if err != nil {
		return 0, fmt.Errorf("load ledger: %w", err)
	}

	txs := slices.Clone(st.Transactions)
	slices.SortStableFunc(txs, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})

	written := 0
	for i, t := range txs {
		if i > 0 && i%w.batchSize == 0 {
			select {
			case <-ctx.Done():
				return written, ctx.Err()
			case <-time.After(time.Second):
			}
		}
		if err := w.mirror.Upsert(ctx, rowFor(st, t)); err != nil {
			return written, fmt.Errorf("mirror transaction %s: %w", t.ID, err)
		}
		written++
	}

	w.logger.InfoContext(ctx, "Resync completed", log.FieldOperation, log.OpSync, "rows", written)
	return written, nil
}

// RunPeriodicResync calls ResyncAll every interval until ctx ends. Failures are
// logged and retried on the next tick.
func (w *SyncWorker) RunPeriodicResync(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ResyncAll(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Periodic resync failed", log.FieldError, err)
			}
		}
	}
}

func rowFor(st *ledger.State, t core.Transaction) sheets.Row {
	category := ""
	if c, ok := st.Category(t.CategoryID); ok {
		category = c.Name
	}
	card := ""
	if c, ok := st.Card(t.CreditCardID); ok {
		card = c.Name
	}
	return sheets.NewRow(t, category, card)
}
