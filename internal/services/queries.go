package services

import (
	"slices"
	"strings"

	"finanzas/internal/core"
	"finanzas/internal/ledger"
)

// Summary is the balance overview of the ledger.
type Summary struct {
	Bank     core.Money `json:"bank"`
	Cash     core.Money `json:"cash"`
	Total    core.Money `json:"total"`
	CardDebt core.Money `json:"creditCardDebt"`
}

// Transactions returns every transaction, voided ones included, newest first.
func (s *FinanceService) Transactions() []core.Transaction {
	var out []core.Transaction
	s.read(func(st *ledger.State) { out = slices.Clone(st.Transactions) })
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

// Transaction looks up a single transaction.
func (s *FinanceService) Transaction(id string) (core.Transaction, error) {
	return lookup(s, func(st *ledger.State) (core.Transaction, bool) { return st.Transaction(id) }, ErrTransactionNotFound)
}

func (s *FinanceService) Debt(id string) (core.Debt, error) {
	return lookup(s, func(st *ledger.State) (core.Debt, bool) { return st.Debt(id) }, ErrDebtNotFound)
}

func (s *FinanceService) CreditCard(id string) (core.CreditCard, error) {
	return lookup(s, func(st *ledger.State) (core.CreditCard, bool) { return st.Card(id) }, ErrCardNotFound)
}

func (s *FinanceService) Category(id string) (core.Category, error) {
	return lookup(s, func(st *ledger.State) (core.Category, bool) { return st.Category(id) }, ErrCategoryNotFound)
}

func (s *FinanceService) FixedExpense(id string) (core.FixedExpense, error) {
	return lookup(s, func(st *ledger.State) (core.FixedExpense, bool) { return st.FixedExpense(id) }, ErrFixedExpenseNotFound)
}

// lookup runs find under the read lock and maps a miss to notFound.
func lookup[T any](s *FinanceService, find func(st *ledger.State) (T, bool), notFound error) (T, error) {
	var (
		v  T
		ok bool
	)
	s.read(func(st *ledger.State) { v, ok = find(st) })
	if !ok {
		var zero T
		return zero, notFound
	}
	return v, nil
}

// Debts returns every debt ordered by due date.
func (s *FinanceService) Debts() []core.Debt {
	var out []core.Debt
	s.read(func(st *ledger.State) { out = slices.Clone(st.Debts) })
	slices.SortStableFunc(out, func(a, b core.Debt) int {
		return a.DueDate.Compare(b.DueDate.Time)
	})
	return out
}

// Receivables returns the debts owed to the owner that are not settled yet.
func (s *FinanceService) Receivables() []core.Debt {
	var out []core.Debt
	for _, d := range s.Debts() {
		if d.Type == core.TheyOweMe && !d.Remaining().Settled() {
			out = append(out, d)
		}
	}
	return out
}

func (s *FinanceService) CreditCards() []core.CreditCard {
	var out []core.CreditCard
	s.read(func(st *ledger.State) { out = slices.Clone(st.CreditCards) })
	return out
}

func (s *FinanceService) Categories() []core.Category {
	var out []core.Category
	s.read(func(st *ledger.State) { out = slices.Clone(st.Categories) })
	return out
}

// Locations returns the distinct non-empty transaction locations, sorted.
func (s *FinanceService) Locations() []string {
	seen := make(map[string]bool)
	var out []string
	s.read(func(st *ledger.State) {
		for _, t := range st.Transactions {
			loc := strings.TrimSpace(t.Location)
			if loc != "" && !seen[loc] {
				seen[loc] = true
				out = append(out, loc)
			}
		}
	})
	slices.Sort(out)
	return out
}

// Summary computes bank and cash balances from active transactions not paid
// by card, and the outstanding balance of the billing cycles of known cards.
func (s *FinanceService) Summary() Summary {
	var sum Summary
	s.read(func(st *ledger.State) {
		for _, t := range st.Transactions {
			if t.IsVoided() || t.PaymentMethod == core.CreditCardMethod {
				continue
			}
			amount := t.Amount
			if t.Type == core.Expense {
				amount = amount.Neg()
			}
			if t.PaymentMethod == core.Bank {
				sum.Bank = sum.Bank.Add(amount)
			} else {
				sum.Cash = sum.Cash.Add(amount)
			}
		}
		for _, d := range st.Debts {
			if d.IsCycleDebt() && st.IsCard(d.Person) {
				sum.CardDebt = sum.CardDebt.Add(d.Remaining())
			}
		}
	})
	sum.Total = sum.Bank.Add(sum.Cash)
	return sum
}
