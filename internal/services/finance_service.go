// Package services orchestrates ledger mutations: it validates intents, runs
// them against a copy of the ledger state, persists the changed collections
// and publishes ledger events.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/log"
	"finanzas/internal/storage"
)

// Publisher announces committed transaction changes. *amqp.Client implements it.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, transactionID, operation string) error
}

// FinanceService is the single entry point for ledger mutations. Mutations are
// serialized; each one is computed on a clone of the state and only swapped in
// after every changed collection has been saved.
type FinanceService struct {
	store     storage.Store
	publisher Publisher
	logger    *log.Logger

	mu    sync.Mutex
	state *ledger.State
}

// NewFinanceService creates a service with an empty state. Call Load before use.
// publisher and logger may be nil.
func NewFinanceService(store storage.Store, publisher Publisher, logger *log.Logger) *FinanceService {
	if logger == nil {
		logger = log.Discard()
	}
	return &FinanceService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		state:     &ledger.State{Categories: ledger.DefaultCategories()},
	}
}

// Load reads every collection from the store, using defaults for missing keys.
func (s *FinanceService) Load(ctx context.Context) error {
	st, err := LoadState(ctx, s.store)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(st.Transactions),
		"debts", len(st.Debts),
		"cards", len(st.CreditCards))
	return nil
}

// LoadState reads the ledger collections from a store. Categories default to
// the seed list; everything else defaults to empty.
func LoadState(ctx context.Context, store storage.Store) (*ledger.State, error) {
	var (
		st  ledger.State
		err error
	)
	if st.Transactions, err = storage.Load(ctx, store, ledger.KeyTransactions, []core.Transaction{}); err != nil {
		return nil, err
	}
	if st.Categories, err = storage.Load(ctx, store, ledger.KeyCategories, ledger.DefaultCategories()); err != nil {
		return nil, err
	}
	if st.Debts, err = storage.Load(ctx, store, ledger.KeyDebts, []core.Debt{}); err != nil {
		return nil, err
	}
	if st.FixedExpenses, err = storage.Load(ctx, store, ledger.KeyFixedExpenses, []core.FixedExpense{}); err != nil {
		return nil, err
	}
	if st.CreditCards, err = storage.Load(ctx, store, ledger.KeyCreditCards, []core.CreditCard{}); err != nil {
		return nil, err
	}
	return &st, nil
}

// mutate runs fn on a clone of the state, persists the collections fn touched
// in one batch and commits the clone. Nothing is committed when fn or the save
// fails.
func (s *FinanceService) mutate(ctx context.Context, op string, fn func(next *ledger.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}

	changed := next.Changed()
	entries := make([]storage.Entry, 0, len(changed))
	for _, key := range changed {
		entries = append(entries, storage.Entry{Key: key, Value: next.Collection(key)})
	}
	if err := storage.SaveBatch(ctx, s.store, entries); err != nil {
		s.logger.ErrorContext(ctx, "Persist failed",
			log.FieldOperation, op,
			log.FieldCollection, strings.Join(changed, ","),
			log.FieldError, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.state = next
	return nil
}

// read runs fn against the current state under the lock.
func (s *FinanceService) read(fn func(st *ledger.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// publish sends a ledger event. Failures are logged and never undo the commit.
func (s *FinanceService) publish(ctx context.Context, transactionID, operation string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, transactionID, operation); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldTransactionID, transactionID,
			log.FieldOperation, operation,
			log.FieldError, err)
	}
}

var _ Publisher = (*amqp.Client)(nil)
