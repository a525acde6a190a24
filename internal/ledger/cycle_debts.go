package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"finanzas/internal/billing"
	"finanzas/internal/core"
)

// Sign selects whether a card effect is posted or reversed.
type Sign int

const (
	Post    Sign = 1
	Reverse Sign = -1
)

// ApplyCardEffect posts (or reverses) the card charge of a transaction into the
// debt of the billing cycle it falls in. Transactions without a card charge,
// charges on unknown cards and reversals of missing cycles are no-ops.
//
// A cycle debt whose total drops to one cent or less is deleted. A surviving
// debt keeps its paid amount clamped to the new total.
func (s *State) ApplyCardEffect(t core.Transaction, sign Sign) {
	charge, ok := t.CardCharge()
	if !ok {
		return
	}
	card, ok := s.Card(charge.CardID)
	if !ok {
		return
	}
	cycle := billing.Resolve(charge.Date, card)
	amount := charge.Amount
	if sign == Reverse {
		amount = amount.Neg()
	}

	if debt, found := s.CycleDebt(cycle.ID); found {
		debt.TotalAmount = debt.TotalAmount.Add(amount)
		if debt.TotalAmount.Settled() {
			s.RemoveDebt(debt.ID)
			return
		}
		debt.PaidAmount = debt.PaidAmount.Min(debt.TotalAmount)
		debt.Person = card.ID
		s.PutDebt(debt)
		return
	}
	if sign == Reverse {
		return
	}
	s.PutDebt(core.Debt{
		ID:             uuid.NewString(),
		Description:    fmt.Sprintf("%s - closing %s", card.Name, cycle.Closing.Format("2006-01-02")),
		TotalAmount:    charge.Amount,
		DueDate:        cycle.Due,
		Type:           core.IOwe,
		Person:         card.ID,
		BillingCycleID: cycle.ID,
	})
}

// CycleDebt returns the debt of the given billing cycle.
func (s *State) CycleDebt(cycleID string) (core.Debt, bool) {
	for _, d := range s.Debts {
		if d.BillingCycleID == cycleID {
			return d, true
		}
	}
	return core.Debt{}, false
}

// CardCycleDebts returns the cycle debts booked against a card.
func (s *State) CardCycleDebts(cardID string) []core.Debt {
	var out []core.Debt
	for _, d := range s.Debts {
		if d.IsCycleDebt() && d.Person == cardID {
			out = append(out, d)
		}
	}
	return out
}
