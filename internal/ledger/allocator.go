package ledger

import (
	"slices"

	"finanzas/internal/core"
)

// Allocate adds a payment to the debt, never past its total.
// Unknown debts are ignored.
func (s *State) Allocate(debtID string, amount core.Money) {
	debt, ok := s.Debt(debtID)
	if !ok {
		return
	}
	debt.PaidAmount = debt.PaidAmount.Add(amount).Min(debt.TotalAmount)
	s.PutDebt(debt)
}

// ReverseAllocation takes a payment back from the debt, never below zero.
// Unknown debts are ignored.
func (s *State) ReverseAllocation(debtID string, amount core.Money) {
	debt, ok := s.Debt(debtID)
	if !ok {
		return
	}
	debt.PaidAmount = debt.PaidAmount.Sub(amount)
	if debt.PaidAmount.Cents < 0 {
		debt.PaidAmount = core.Money{}
	}
	s.PutDebt(debt)
}

// AllocateCardReimbursement routes a repayment of a card-funded loan to the
// open cycle debt of the card with the oldest due date. Only that single
// cycle receives the payment, clamped to its total; nothing spills over.
// It returns the id of the debt paid, or "" when the card has no open cycle.
func (s *State) AllocateCardReimbursement(cardID string, amount core.Money) string {
	var open []core.Debt
	for _, d := range s.CardCycleDebts(cardID) {
		if !d.Remaining().Settled() {
			open = append(open, d)
		}
	}
	if len(open) == 0 {
		return ""
	}
	slices.SortStableFunc(open, func(a, b core.Debt) int {
		return a.DueDate.Compare(b.DueDate.Time)
	})
	s.Allocate(open[0].ID, amount)
	return open[0].ID
}

// ReverseCardReimbursement undoes a card reimbursement by walking the card's
// cycle debts from the newest due date backwards, taking paid amounts back
// until the amount is exhausted. Forward allocation is oldest-first; the
// reversal is newest-first.
func (s *State) ReverseCardReimbursement(cardID string, amount core.Money) {
	var paid []core.Debt
	for _, d := range s.CardCycleDebts(cardID) {
		if d.PaidAmount.Cents > 0 {
			paid = append(paid, d)
		}
	}
	slices.SortStableFunc(paid, func(a, b core.Debt) int {
		return b.DueDate.Compare(a.DueDate.Time)
	})

	left := amount
	for _, d := range paid {
		if left.Cents <= 0 {
			break
		}
		take := left.Min(d.PaidAmount)
		d.PaidAmount = d.PaidAmount.Sub(take)
		left = left.Sub(take)
		s.PutDebt(d)
	}
}
