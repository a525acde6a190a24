package services

import (
	"slices"
	"time"

	"finanzas/internal/billing"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
)

// DuenessChecker decides whether a fixed expense needs paying at a point in time.
type DuenessChecker interface {
	IsDue(e core.FixedExpense, now time.Time) bool
}

// MonthlyChecker treats a fixed expense as due once its payment day of the
// current month has been reached and the month has not been paid yet. A
// payment day past the end of the month falls on the month's last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(e core.FixedExpense, now time.Time) bool {
	today := core.DateOf(now)
	if e.PaidIn(today) {
		return false
	}
	target := min(e.PaymentDay, billing.DaysIn(today.Year(), today.Time.Month()))
	return today.Day() >= target
}

// DueFixedExpenses lists the fixed expenses due at now, ordered by payment day.
func (s *FinanceService) DueFixedExpenses(now time.Time) []core.FixedExpense {
	return s.dueFixedExpenses(MonthlyChecker{}, now)
}

func (s *FinanceService) dueFixedExpenses(checker DuenessChecker, now time.Time) []core.FixedExpense {
	var due []core.FixedExpense
	for _, e := range s.FixedExpenses() {
		if checker.IsDue(e, now) {
			due = append(due, e)
		}
	}
	return due
}

// FixedExpenses returns the fixed expenses ordered by payment day.
func (s *FinanceService) FixedExpenses() []core.FixedExpense {
	var out []core.FixedExpense
	s.read(func(st *ledger.State) { out = slices.Clone(st.FixedExpenses) })
	slices.SortStableFunc(out, func(a, b core.FixedExpense) int { return a.PaymentDay - b.PaymentDay })
	return out
}
