package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/log"
)

// SaveCreditCard creates (empty ID) or updates a card. New cards start active;
// an update without a status keeps the current one.
func (s *FinanceService) SaveCreditCard(ctx context.Context, card core.CreditCard) (core.CreditCard, error) {
	card.Name = strings.TrimSpace(card.Name)
	if err := card.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	err := s.mutate(ctx, log.OpSave, func(next *ledger.State) error {
		if card.ID == "" {
			card.ID = uuid.NewString()
			card.Status = core.CardActive
		} else {
			current, ok := next.Card(card.ID)
			if !ok {
				return ErrCardNotFound
			}
			if card.Status == "" {
				card.Status = current.Status
			}
		}
		next.PutCard(card)
		return nil
	})
	if err != nil {
		return core.CreditCard{}, err
	}
	return card, nil
}

// DeleteCreditCard removes a card. Its transactions become bank payments; its
// billing cycle debts stay in the ledger.
func (s *FinanceService) DeleteCreditCard(ctx context.Context, id string) error {
	err := s.mutate(ctx, log.OpDelete, func(next *ledger.State) error {
		if !next.IsCard(id) {
			return ErrCardNotFound
		}
		next.RemoveCard(id)
		return nil
	})
	if err == nil {
		s.logger.InfoContext(ctx, "Credit card deleted", log.NewFields().
			WithOperation(log.OpDelete).
			WithCard(id).
			ToSlice()...)
	}
	return err
}

// ToggleCreditCardStatus flips a card between active and inactive.
func (s *FinanceService) ToggleCreditCardStatus(ctx context.Context, id string) (core.CreditCard, error) {
	var card core.CreditCard
	err := s.mutate(ctx, log.OpSave, func(next *ledger.State) error {
		var ok bool
		if card, ok = next.Card(id); !ok {
			return ErrCardNotFound
		}
		if card.Status == core.CardInactive {
			card.Status = core.CardActive
		} else {
			card.Status = core.CardInactive
		}
		next.PutCard(card)
		return nil
	})
	if err != nil {
		return core.CreditCard{}, err
	}
	return card, nil
}

// SaveCategory creates (empty ID) or updates a category. Names are unique
// ignoring case.
func (s *FinanceService) SaveCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	err := s.mutate(ctx, log.OpSave, func(next *ledger.State) error {
		if dup, ok := next.CategoryByNameFold(c.Name); ok && dup.ID != c.ID {
			return ErrDuplicateCategory
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		} else {
			current, ok := next.Category(c.ID)
			if !ok {
				return ErrCategoryNotFound
			}
			if current.Name == ledger.FallbackCategoryName && c.Name != current.Name {
				return ErrFallbackCategory
			}
		}
		next.PutCategory(c)
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category and moves its transactions and fixed
// expenses to the fallback category.
func (s *FinanceService) DeleteCategory(ctx context.Context, id string) error {
	err := s.mutate(ctx, log.OpDelete, func(next *ledger.State) error {
		c, ok := next.Category(id)
		if !ok {
			return ErrCategoryNotFound
		}
		fallback, ok := next.CategoryByName(ledger.FallbackCategoryName)
		if !ok {
			return ErrNoFallbackCategory
		}
		if fallback.ID == c.ID {
			return ErrFallbackCategory
		}
		next.ReassignCategory(c.ID, fallback.ID)
		next.RemoveCategory(c.ID)
		return nil
	})
	if err == nil {
		s.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	}
	return err
}

// SaveDebt creates (empty ID) or updates a manual debt. Billing cycle debts
// and debts owned by a loan transaction cannot be edited here.
func (s *FinanceService) SaveDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	d.BillingCycleID = ""
	d.OriginatingTransactionID = ""
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	err := s.mutate(ctx, log.OpSave, func(next *ledger.State) error {
		if d.SourceCreditCardID != "" && !next.IsCard(d.SourceCreditCardID) {
			return ErrCardNotFound
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
			d.PaidAmount = core.Money{}
		} else {
			current, err := manualDebt(next, d.ID)
			if err != nil {
				return err
			}
			d.PaidAmount = current.PaidAmount.Min(d.TotalAmount)
		}
		next.PutDebt(d)
		return nil
	})
	if err != nil {
		return core.Debt{}, err
	}
	return d, nil
}

// DeleteDebt removes a manual debt.
func (s *FinanceService) DeleteDebt(ctx context.Context, id string) error {
	return s.mutate(ctx, log.OpDelete, func(next *ledger.State) error {
		if _, err := manualDebt(next, id); err != nil {
			return err
		}
		next.RemoveDebt(id)
		return nil
	})
}

func manualDebt(st *ledger.State, id string) (core.Debt, error) {
	d, ok := st.Debt(id)
	switch {
	case !ok:
		return core.Debt{}, ErrDebtNotFound
	case d.IsCycleDebt():
		return core.Debt{}, ErrCycleDebtReadOnly
	case d.OriginatingTransactionID != "":
		return core.Debt{}, ErrDebtLinkedToTransaction
	}
	return d, nil
}

// SaveFixedExpense creates (empty ID) or updates a fixed expense. Updates keep
// the paid month.
func (s *FinanceService) SaveFixedExpense(ctx context.Context, e core.FixedExpense) (core.FixedExpense, error) {
	if err := e.Validate(); err != nil {
		return core.FixedExpense{}, err
	}
	err := s.mutate(ctx, log.OpSave, func(next *ledger.State) error {
		if _, ok := next.Category(e.CategoryID); !ok {
			return ErrCategoryNotFound
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
			e.LastPaidMonth = ""
		} else {
			current, ok := next.FixedExpense(e.ID)
			if !ok {
				return ErrFixedExpenseNotFound
			}
			e.LastPaidMonth = current.LastPaidMonth
		}
		next.PutFixedExpense(e)
		return nil
	})
	if err != nil {
		return core.FixedExpense{}, err
	}
	return e, nil
}

func (s *FinanceService) DeleteFixedExpense(ctx context.Context, id string) error {
	return s.mutate(ctx, log.OpDelete, func(next *ledger.State) error {
		if _, ok := next.FixedExpense(id); !ok {
			return ErrFixedExpenseNotFound
		}
		next.RemoveFixedExpense(id)
		return nil
	})
}

// PayFixedExpense records a bank expense for the fixed expense and marks the
// month of at as paid. A zero amount pays the configured amount.
func (s *FinanceService) PayFixedExpense(ctx context.Context, id string, amount core.Money, at time.Time) (core.Transaction, error) {
	var saved core.Transaction
	err := s.mutate(ctx, log.OpPay, func(next *ledger.State) error {
		e, ok := next.FixedExpense(id)
		if !ok {
			return ErrFixedExpenseNotFound
		}
		if amount.IsZero() {
			amount = e.Amount
		}

		day := core.DateOf(at)
		var err error
		saved, err = saveTransaction(next, TransactionInput{
			Transaction: core.Transaction{
				Amount:        amount,
				Description:   "Fixed expense payment: " + e.Description,
				Date:          day,
				Type:          core.Expense,
				CategoryID:    e.CategoryID,
				PaymentMethod: core.Bank,
			},
		})
		if err != nil {
			return err
		}

		e.LastPaidMonth = day.MonthKey()
		next.PutFixedExpense(e)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, saved.ID, amqp.OpSave)
	return saved, nil
}
