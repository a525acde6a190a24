package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/log"
)

// LoanDetails describe the debt a loan transaction originates.
type LoanDetails struct {
	Person  string
	DueDate core.Date // defaults to the transaction date
}

// TransactionInput is a create (ID empty) or edit request.
type TransactionInput struct {
	ID          string
	Transaction core.Transaction
	// PaidDebtID links a new transaction to the debt it pays. Ignored on edit;
	// an edited transaction keeps its original link.
	PaidDebtID string
	// Loan is required when a new loan is recorded. On edit it may be nil to
	// keep the existing loan debt's person and due date.
	Loan *LoanDetails
}

// SaveTransaction creates or edits a transaction and updates every debt it
// affects: the billing cycle of its card, its loan debt and, for new
// transactions, the debt it pays.
func (s *FinanceService) SaveTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	var saved core.Transaction
	err := s.mutate(ctx, log.OpSave, func(next *ledger.State) error {
		var err error
		saved, err = saveTransaction(next, in)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction saved", log.NewFields().
		WithOperation(log.OpSave).
		WithTransaction(saved.ID, saved.Amount.Cents).
		ToSlice()...)
	s.publish(ctx, saved.ID, amqp.OpSave)
	return saved, nil
}

func saveTransaction(next *ledger.State, in TransactionInput) (core.Transaction, error) {
	t := in.Transaction
	editing := in.ID != ""

	var original core.Transaction
	if editing {
		var ok bool
		if original, ok = next.Transaction(in.ID); !ok {
			return core.Transaction{}, ErrTransactionNotFound
		}
		if original.IsVoided() {
			return core.Transaction{}, ErrTransactionVoided
		}
		t.ID = original.ID
		t.PaidDebtID = original.PaidDebtID
	} else {
		t.ID = uuid.NewString()
		t.PaidDebtID = in.PaidDebtID
	}
	t.Status = core.Active
	if t.PaymentMethod != core.CreditCardMethod {
		t.CreditCardID = ""
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, ok := next.Category(t.CategoryID); !ok {
		return core.Transaction{}, ErrCategoryNotFound
	}
	if t.PaymentMethod == core.CreditCardMethod && !next.IsCard(t.CreditCardID) {
		return core.Transaction{}, ErrCardNotFound
	}
	var paid core.Debt
	if !editing && t.PaidDebtID != "" {
		var ok bool
		if paid, ok = next.Debt(t.PaidDebtID); !ok {
			return core.Transaction{}, ErrDebtNotFound
		}
	}

	linked, hasLinked := next.DebtFromTransaction(t.ID)
	var loan *LoanDetails
	if t.OriginatesLoanDebt() {
		switch {
		case in.Loan != nil:
			l := *in.Loan
			loan = &l
		case hasLinked:
			loan = &LoanDetails{Person: linked.Person, DueDate: linked.DueDate}
		}
		if loan == nil || strings.TrimSpace(loan.Person) == "" {
			return core.Transaction{}, ErrMissingLoanPerson
		}
		if loan.DueDate.IsZero() {
			loan.DueDate = t.Date
		}
	}

	// Validation is done; from here on the state is mutated.
	switch {
	case loan != nil:
		debt := core.Debt{
			ID:                       uuid.NewString(),
			Description:              t.Description,
			TotalAmount:              t.Amount,
			DueDate:                  loan.DueDate,
			Type:                     t.LoanDebtType(),
			Person:                   loan.Person,
			OriginatingTransactionID: t.ID,
		}
		if t.Type == core.Expense && t.PaymentMethod == core.CreditCardMethod {
			debt.SourceCreditCardID = t.CreditCardID
		}
		if hasLinked {
			debt.ID = linked.ID
			debt.PaidAmount = linked.PaidAmount.Min(debt.TotalAmount)
		}
		next.PutDebt(debt)
	case hasLinked:
		next.RemoveDebt(linked.ID)
	}

	if !editing && t.PaidDebtID != "" {
		next.Allocate(paid.ID, t.Amount)
		if paid.SourceCreditCardID != "" && t.Type == core.Income {
			next.AllocateCardReimbursement(paid.SourceCreditCardID, t.Amount)
		}
	}

	// The new charge is posted before the original is reversed so a cycle
	// holding only this charge keeps its debt id and payments.
	next.PutTransaction(t)
	next.ApplyCardEffect(t, ledger.Post)
	if editing {
		next.ApplyCardEffect(original, ledger.Reverse)
	}
	return t, nil
}

// VoidTransaction voids a transaction and reverses every effect it had.
// Voiding a voided transaction does nothing.
func (s *FinanceService) VoidTransaction(ctx context.Context, id string) error {
	var changed bool
	err := s.mutate(ctx, log.OpVoid, func(next *ledger.State) error {
		t, ok := next.Transaction(id)
		if !ok {
			return ErrTransactionNotFound
		}
		if t.IsVoided() {
			return nil
		}
		changed = true

		next.ApplyCardEffect(t, ledger.Reverse)
		if t.PaidDebtID != "" {
			paid, found := next.Debt(t.PaidDebtID)
			next.ReverseAllocation(t.PaidDebtID, t.Amount)
			if found && paid.SourceCreditCardID != "" && t.Type == core.Income {
				next.ReverseCardReimbursement(paid.SourceCreditCardID, t.Amount)
			}
		}
		if d, ok := next.DebtFromTransaction(t.ID); ok {
			next.RemoveDebt(d.ID)
		}

		t.Status = core.Voided
		next.PutTransaction(t)
		return nil
	})
	if err != nil || !changed {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction voided", log.FieldTransactionID, id)
	s.publish(ctx, id, amqp.OpVoid)
	return nil
}

// PayDebt records a bank expense that pays amount towards the debt.
func (s *FinanceService) PayDebt(ctx context.Context, debtID string, amount core.Money, at time.Time) (core.Transaction, error) {
	var saved core.Transaction
	err := s.mutate(ctx, log.OpPay, func(next *ledger.State) error {
		debt, ok := next.Debt(debtID)
		if !ok {
			return ErrDebtNotFound
		}
		if amount.Cents <= 0 || amount.Cents > debt.Remaining().Cents {
			return fmt.Errorf("%w: remaining %s", ErrInvalidPayment, debt.Remaining())
		}

		name := ledger.DebtsCategoryName
		if next.IsCard(debt.Person) {
			name = ledger.CardPaymentCategoryName
		}
		category, ok := next.CategoryByName(name)
		if !ok {
			if category, ok = next.CategoryByName(ledger.FallbackCategoryName); !ok {
				return ErrCategoryNotFound
			}
		}

		var err error
		saved, err = saveTransaction(next, TransactionInput{
			Transaction: core.Transaction{
				Amount:        amount,
				Description:   "Debt payment: " + debt.Description,
				Date:          core.DateOf(at),
				Type:          core.Expense,
				CategoryID:    category.ID,
				PaymentMethod: core.Bank,
			},
			PaidDebtID: debt.ID,
		})
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Debt paid", log.NewFields().
		WithOperation(log.OpPay).
		WithDebt(debtID).
		WithTransaction(saved.ID, amount.Cents).
		ToSlice()...)
	s.publish(ctx, saved.ID, amqp.OpSave)
	return saved, nil
}
