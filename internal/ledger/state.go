// Package ledger holds the entity aggregate of the finance ledger and the
// engines that derive credit-card cycle debts and allocate payments.
//
// State values are treated as immutable snapshots: mutating methods are called
// on a Clone and the caller swaps the clone in once it has been persisted.
package ledger

import (
	"slices"
	"strings"

	"finanzas/internal/core"
)

// Collection keys used by the persistence layer.
const (
	KeyTransactions  = "transactions"
	KeyCategories    = "categories"
	KeyDebts         = "debts"
	KeyFixedExpenses = "fixedExpenses"
	KeyCreditCards   = "creditCards"
)

// Keys lists every collection key in persistence order.
var Keys = []string{KeyTransactions, KeyCategories, KeyDebts, KeyFixedExpenses, KeyCreditCards}

// State is the aggregate of the five ledger collections.
type State struct {
	Transactions  []core.Transaction
	Categories    []core.Category
	Debts         []core.Debt
	FixedExpenses []core.FixedExpense
	CreditCards   []core.CreditCard

	dirty map[string]bool
}

// FallbackCategoryName receives the records of deleted categories.
const FallbackCategoryName = "Other"

// Category names the controller looks up when it books payments itself.
const (
	CardPaymentCategoryName = "Credit Card Payment"
	DebtsCategoryName       = "Debts"
)

// DefaultCategories seeds the categories collection on first start.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "1", Name: "Food", Icon: "fa-utensils", Color: "bg-orange-500"},
		{ID: "2", Name: "Transport", Icon: "fa-bus", Color: "bg-blue-500"},
		{ID: "3", Name: "Housing", Icon: "fa-home", Color: "bg-cyan-500"},
		{ID: "4", Name: "Leisure", Icon: "fa-film", Color: "bg-purple-500"},
		{ID: "5", Name: "Health", Icon: "fa-heartbeat", Color: "bg-red-500"},
		{ID: "6", Name: "Salary", Icon: "fa-dollar-sign", Color: "bg-green-500"},
		{ID: "7", Name: CardPaymentCategoryName, Icon: "fa-credit-card", Color: "bg-pink-500"},
		{ID: "8", Name: DebtsCategoryName, Icon: "fa-hand-holding-usd", Color: "bg-yellow-500"},
		{ID: "9", Name: FallbackCategoryName, Icon: "fa-question-circle", Color: "bg-gray-500"},
	}
}

// Clone returns a copy whose collections can be mutated without affecting s.
func (s *State) Clone() *State {
	return &State{
		Transactions:  slices.Clone(s.Transactions),
		Categories:    slices.Clone(s.Categories),
		Debts:         slices.Clone(s.Debts),
		FixedExpenses: slices.Clone(s.FixedExpenses),
		CreditCards:   slices.Clone(s.CreditCards),
	}
}

// Touch marks a collection as changed since the clone was taken.
func (s *State) Touch(key string) {
	if s.dirty == nil {
		s.dirty = make(map[string]bool)
	}
	s.dirty[key] = true
}

// Changed returns the keys of the collections modified on this state, in
// persistence order.
func (s *State) Changed() []string {
	var out []string
	for _, k := range Keys {
		if s.dirty[k] {
			out = append(out, k)
		}
	}
	return out
}

// Collection returns the collection stored under key.
func (s *State) Collection(key string) any {
	switch key {
	case KeyTransactions:
		return s.Transactions
	case KeyCategories:
		return s.Categories
	case KeyDebts:
		return s.Debts
	case KeyFixedExpenses:
		return s.FixedExpenses
	case KeyCreditCards:
		return s.CreditCards
	}
	return nil
}

// Transaction looks a transaction up by id.
func (s *State) Transaction(id string) (core.Transaction, bool) {
	i := slices.IndexFunc(s.Transactions, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return core.Transaction{}, false
	}
	return s.Transactions[i], true
}

// PutTransaction inserts the transaction or replaces the one with the same id.
func (s *State) PutTransaction(t core.Transaction) {
	s.Touch(KeyTransactions)
	if i := slices.IndexFunc(s.Transactions, func(x core.Transaction) bool { return x.ID == t.ID }); i >= 0 {
		s.Transactions[i] = t
		return
	}
	s.Transactions = append(s.Transactions, t)
}

// Debt looks a debt up by id.
func (s *State) Debt(id string) (core.Debt, bool) {
	i := s.debtIndex(id)
	if i < 0 {
		return core.Debt{}, false
	}
	return s.Debts[i], true
}

// DebtFromTransaction returns the loan debt originated by the transaction.
func (s *State) DebtFromTransaction(txID string) (core.Debt, bool) {
	i := slices.IndexFunc(s.Debts, func(d core.Debt) bool { return d.OriginatingTransactionID == txID })
	if i < 0 {
		return core.Debt{}, false
	}
	return s.Debts[i], true
}

// PutDebt inserts the debt or replaces the one with the same id.
func (s *State) PutDebt(d core.Debt) {
	s.Touch(KeyDebts)
	if i := s.debtIndex(d.ID); i >= 0 {
		s.Debts[i] = d
		return
	}
	s.Debts = append(s.Debts, d)
}

// RemoveDebt deletes the debt with the given id, if present.
func (s *State) RemoveDebt(id string) {
	if i := s.debtIndex(id); i >= 0 {
		s.Touch(KeyDebts)
		s.Debts = slices.Delete(s.Debts, i, i+1)
	}
}

func (s *State) debtIndex(id string) int {
	return slices.IndexFunc(s.Debts, func(d core.Debt) bool { return d.ID == id })
}

// Card looks a credit card up by id.
func (s *State) Card(id string) (core.CreditCard, bool) {
	i := slices.IndexFunc(s.CreditCards, func(c core.CreditCard) bool { return c.ID == id })
	if i < 0 {
		return core.CreditCard{}, false
	}
	return s.CreditCards[i], true
}

// IsCard reports whether id references a known credit card.
func (s *State) IsCard(id string) bool {
	_, ok := s.Card(id)
	return ok
}

// Category looks a category up by id.
func (s *State) Category(id string) (core.Category, bool) {
	i := slices.IndexFunc(s.Categories, func(c core.Category) bool { return c.ID == id })
	if i < 0 {
		return core.Category{}, false
	}
	return s.Categories[i], true
}

// CategoryByName finds a category by exact name.
func (s *State) CategoryByName(name string) (core.Category, bool) {
	i := slices.IndexFunc(s.Categories, func(c core.Category) bool { return c.Name == name })
	if i < 0 {
		return core.Category{}, false
	}
	return s.Categories[i], true
}

// FixedExpense looks a fixed expense up by id.
func (s *State) FixedExpense(id string) (core.FixedExpense, bool) {
	i := slices.IndexFunc(s.FixedExpenses, func(e core.FixedExpense) bool { return e.ID == id })
	if i < 0 {
		return core.FixedExpense{}, false
	}
	return s.FixedExpenses[i], true
}

// PutCard inserts the card or replaces the one with the same id.
func (s *State) PutCard(c core.CreditCard) {
	s.Touch(KeyCreditCards)
	if i := slices.IndexFunc(s.CreditCards, func(x core.CreditCard) bool { return x.ID == c.ID }); i >= 0 {
		s.CreditCards[i] = c
		return
	}
	s.CreditCards = append(s.CreditCards, c)
}

// RemoveCard deletes the card. Its transactions fall back to bank payments;
// its cycle debts are kept.
func (s *State) RemoveCard(id string) {
	for i, t := range s.Transactions {
		if t.CreditCardID == id {
			t.PaymentMethod = core.Bank
			t.CreditCardID = ""
			s.Transactions[i] = t
			s.Touch(KeyTransactions)
		}
	}
	if i := slices.IndexFunc(s.CreditCards, func(c core.CreditCard) bool { return c.ID == id }); i >= 0 {
		s.Touch(KeyCreditCards)
		s.CreditCards = slices.Delete(s.CreditCards, i, i+1)
	}
}

// PutCategory inserts the category or replaces the one with the same id.
func (s *State) PutCategory(c core.Category) {
	s.Touch(KeyCategories)
	if i := slices.IndexFunc(s.Categories, func(x core.Category) bool { return x.ID == c.ID }); i >= 0 {
		s.Categories[i] = c
		return
	}
	s.Categories = append(s.Categories, c)
}

// CategoryByNameFold finds a category by name ignoring case.
func (s *State) CategoryByNameFold(name string) (core.Category, bool) {
	i := slices.IndexFunc(s.Categories, func(c core.Category) bool { return strings.EqualFold(c.Name, name) })
	if i < 0 {
		return core.Category{}, false
	}
	return s.Categories[i], true
}

// ReassignCategory moves every transaction and fixed expense of one category
// to another.
func (s *State) ReassignCategory(from, to string) {
	for i, t := range s.Transactions {
		if t.CategoryID == from {
			s.Transactions[i].CategoryID = to
			s.Touch(KeyTransactions)
		}
	}
	for i, e := range s.FixedExpenses {
		if e.CategoryID == from {
			s.FixedExpenses[i].CategoryID = to
			s.Touch(KeyFixedExpenses)
		}
	}
}

// RemoveCategory deletes the category without touching its records.
func (s *State) RemoveCategory(id string) {
	if i := slices.IndexFunc(s.Categories, func(c core.Category) bool { return c.ID == id }); i >= 0 {
		s.Touch(KeyCategories)
		s.Categories = slices.Delete(s.Categories, i, i+1)
	}
}

// PutFixedExpense inserts the expense or replaces the one with the same id.
func (s *State) PutFixedExpense(e core.FixedExpense) {
	s.Touch(KeyFixedExpenses)
	if i := slices.IndexFunc(s.FixedExpenses, func(x core.FixedExpense) bool { return x.ID == e.ID }); i >= 0 {
		s.FixedExpenses[i] = e
		return
	}
	s.FixedExpenses = append(s.FixedExpenses, e)
}

func (s *State) RemoveFixedExpense(id string) {
	if i := slices.IndexFunc(s.FixedExpenses, func(e core.FixedExpense) bool { return e.ID == id }); i >= 0 {
		s.Touch(KeyFixedExpenses)
		s.FixedExpenses = slices.Delete(s.FixedExpenses, i, i+1)
	}
}
