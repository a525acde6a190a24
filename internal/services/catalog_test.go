package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/storage"
)

func TestCreditCards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SaveCreditCard(ctx, core.CreditCard{Name: "Bad", CutOffDay: 0, PaymentDay: 10})
	assert.ErrorIs(t, err, core.ErrInvalidCardDay)

	card := addCard(t, svc, "Visa", 25, 10)
	assert.Equal(t, core.CardActive, card.Status)

	toggled, err := svc.ToggleCreditCardStatus(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, core.CardInactive, toggled.Status)

	renamed, err := svc.SaveCreditCard(ctx, core.CreditCard{ID: card.ID, Name: "Visa Gold", CutOffDay: 20, PaymentDay: 5})
	require.NoError(t, err)
	assert.Equal(t, core.CardInactive, renamed.Status, "status survives an update")

	_, err = svc.SaveCreditCard(ctx, core.CreditCard{ID: "missing", Name: "X", CutOffDay: 1, PaymentDay: 1})
	assert.ErrorIs(t, err, ErrCardNotFound)
	_, err = svc.ToggleCreditCardStatus(ctx, "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestDeleteCreditCard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	card := addCard(t, svc, "Visa", 25, 10)
	tx, err := svc.SaveTransaction(ctx, TransactionInput{Transaction: cardPurchase(card, core.NewDate(2025, 3, 5), "80")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCreditCard(ctx, card.ID))
	assert.ErrorIs(t, svc.DeleteCreditCard(ctx, card.ID), ErrCardNotFound)

	got, err := svc.Transaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Bank, got.PaymentMethod)
	assert.Empty(t, got.CreditCardID)

	require.Len(t, svc.Debts(), 1, "cycle debt is left behind")
	assert.True(t, svc.Summary().CardDebt.IsZero(), "orphaned cycles are not card debt")

	// The orphan is inert: voiding the former card purchase leaves it untouched.
	require.NoError(t, svc.VoidTransaction(ctx, tx.ID))
	assert.Equal(t, core.MustParseMoney("80"), svc.Debts()[0].TotalAmount)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SaveCategory(ctx, core.Category{Name: "  "})
	assert.ErrorIs(t, err, core.ErrEmptyName)
	_, err = svc.SaveCategory(ctx, core.Category{Name: "food"})
	assert.ErrorIs(t, err, ErrDuplicateCategory)
	_, err = svc.SaveCategory(ctx, core.Category{ID: "2", Name: "FOOD"})
	assert.ErrorIs(t, err, ErrDuplicateCategory)
	_, err = svc.SaveCategory(ctx, core.Category{ID: "9", Name: "Misc"})
	assert.ErrorIs(t, err, ErrFallbackCategory)

	renamed, err := svc.SaveCategory(ctx, core.Category{ID: "2", Name: "transport", Icon: "fa-car"})
	require.NoError(t, err)
	assert.Equal(t, "transport", renamed.Name)

	travel, err := svc.SaveCategory(ctx, core.Category{Name: "Travel"})
	require.NoError(t, err)
	assert.NotEmpty(t, travel.ID)
	assert.Len(t, svc.Categories(), len(ledger.DefaultCategories())+1)
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tx, err := svc.SaveTransaction(ctx, TransactionInput{Transaction: core.Transaction{
		Amount:        core.MustParseMoney("15"),
		Description:   "Bus",
		Date:          core.NewDate(2025, 3, 1),
		Type:          core.Expense,
		CategoryID:    "2",
		PaymentMethod: core.Cash,
	}})
	require.NoError(t, err)
	fixed, err := svc.SaveFixedExpense(ctx, core.FixedExpense{Description: "Metro card", Amount: core.MustParseMoney("40"), CategoryID: "2", PaymentDay: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, "2"))

	got, err := svc.Transaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "9", got.CategoryID)
	assert.Equal(t, "9", svc.FixedExpenses()[0].CategoryID)
	assert.Equal(t, fixed.ID, svc.FixedExpenses()[0].ID)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, "2"), ErrCategoryNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "9"), ErrFallbackCategory)
}

func TestDeleteCategory_NoFallback(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, ledger.KeyCategories, []core.Category{{ID: "a", Name: "Food"}}))
	svc := NewFinanceService(store, nil, nil)
	require.NoError(t, svc.Load(ctx))

	assert.ErrorIs(t, svc.DeleteCategory(ctx, "a"), ErrNoFallbackCategory)
	assert.Len(t, svc.Categories(), 1)
}

func TestManualDebts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SaveDebt(ctx, core.Debt{Description: "x", TotalAmount: core.MustParseMoney("1"), DueDate: core.NewDate(2025, 1, 1), Type: core.IOwe})
	assert.ErrorIs(t, err, core.ErrEmptyPerson)

	debt, err := svc.SaveDebt(ctx, core.Debt{
		Description: "Concert tickets",
		TotalAmount: core.MustParseMoney("120"),
		PaidAmount:  core.MustParseMoney("50"),
		DueDate:     core.NewDate(2025, 4, 1),
		Type:        core.TheyOweMe,
		Person:      "Marta",
	})
	require.NoError(t, err)
	assert.True(t, debt.PaidAmount.IsZero(), "new debts start unpaid")

	_, err = svc.PayDebt(ctx, debt.ID, core.MustParseMoney("100"), time.Now())
	require.NoError(t, err)

	debt.TotalAmount = core.MustParseMoney("80")
	updated, err := svc.SaveDebt(ctx, debt)
	require.NoError(t, err)
	assert.Equal(t, core.MustParseMoney("80"), updated.PaidAmount, "paid amount is clamped to the new total")
	assert.Empty(t, svc.Receivables())

	require.NoError(t, svc.DeleteDebt(ctx, debt.ID))
	assert.ErrorIs(t, svc.DeleteDebt(ctx, debt.ID), ErrDebtNotFound)
}

func TestCycleDebtsAreReadOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	card := addCard(t, svc, "Visa", 25, 10)
	_, err := svc.SaveTransaction(ctx, TransactionInput{Transaction: cardPurchase(card, core.NewDate(2025, 3, 5), "80")})
	require.NoError(t, err)
	cycle := svc.Debts()[0]

	_, err = svc.SaveDebt(ctx, cycle)
	assert.ErrorIs(t, err, ErrCycleDebtReadOnly)
	assert.ErrorIs(t, svc.DeleteDebt(ctx, cycle.ID), ErrCycleDebtReadOnly)
}

func TestFixedExpenses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SaveFixedExpense(ctx, core.FixedExpense{Description: "Rent", Amount: core.MustParseMoney("900"), CategoryID: "nope", PaymentDay: 5})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	rent, err := svc.SaveFixedExpense(ctx, core.FixedExpense{Description: "Rent", Amount: core.MustParseMoney("900"), CategoryID: "3", PaymentDay: 5})
	require.NoError(t, err)
	gym, err := svc.SaveFixedExpense(ctx, core.FixedExpense{Description: "Gym", Amount: core.MustParseMoney("30"), CategoryID: "5", PaymentDay: 31})
	require.NoError(t, err)

	feb := time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC)
	due := svc.DueFixedExpenses(feb)
	require.Len(t, due, 2, "day 31 falls on the last day of February")
	assert.Equal(t, rent.ID, due[0].ID)

	tx, err := svc.PayFixedExpense(ctx, rent.ID, core.Money{}, feb)
	require.NoError(t, err)
	assert.Equal(t, "Fixed expense payment: Rent", tx.Description)
	assert.Equal(t, core.MustParseMoney("900"), tx.Amount)
	assert.Equal(t, "3", tx.CategoryID)
	assert.Equal(t, core.Bank, tx.PaymentMethod)

	due = svc.DueFixedExpenses(feb)
	require.Len(t, due, 1)
	assert.Equal(t, gym.ID, due[0].ID)

	// Editing keeps the paid month.
	rent.Amount = core.MustParseMoney("950")
	_, err = svc.SaveFixedExpense(ctx, rent)
	require.NoError(t, err)
	assert.Equal(t, "2025-02", svc.FixedExpenses()[0].LastPaidMonth)

	assert.Len(t, svc.DueFixedExpenses(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)), 1)
	assert.Empty(t, svc.DueFixedExpenses(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, svc.DeleteFixedExpense(ctx, gym.ID))
	assert.ErrorIs(t, svc.DeleteFixedExpense(ctx, gym.ID), ErrFixedExpenseNotFound)
	_, err = svc.PayFixedExpense(ctx, gym.ID, core.Money{}, feb)
	assert.ErrorIs(t, err, ErrFixedExpenseNotFound)
}

func TestMonthlyChecker(t *testing.T) {
	checker := MonthlyChecker{}
	e := core.FixedExpense{PaymentDay: 15}

	tests := []struct {
		name     string
		lastPaid string
		now      time.Time
		want     bool
	}{
		{"before payment day", "", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), false},
		{"on payment day", "", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"paid this month", "2025-03", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), false},
		{"paid last month", "2025-02", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.LastPaidMonth = tt.lastPaid
			assert.Equal(t, tt.want, checker.IsDue(e, tt.now))
		})
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i, loc := range []string{"Market", "", "Bakery", "Market"} {
		_, err := svc.SaveTransaction(ctx, TransactionInput{Transaction: core.Transaction{
			Amount:        core.MustParseMoney("10"),
			Description:   "groceries",
			Date:          core.NewDate(2025, 3, i+1),
			Type:          core.Expense,
			CategoryID:    "1",
			Location:      loc,
			PaymentMethod: core.Cash,
		}})
		require.NoError(t, err)
	}
	salary, err := svc.SaveTransaction(ctx, TransactionInput{Transaction: core.Transaction{
		Amount:        core.MustParseMoney("2000"),
		Description:   "salary",
		Date:          core.NewDate(2025, 3, 30),
		Type:          core.Income,
		CategoryID:    "6",
		PaymentMethod: core.Bank,
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bakery", "Market"}, svc.Locations())
	txs := svc.Transactions()
	require.Len(t, txs, 5)
	assert.Equal(t, salary.ID, txs[0].ID, "newest first")

	sum := svc.Summary()
	assert.Equal(t, core.MustParseMoney("2000"), sum.Bank)
	assert.Equal(t, core.Money{Cents: -4000}, sum.Cash)
	assert.Equal(t, core.MustParseMoney("1960"), sum.Total)

	require.NoError(t, svc.VoidTransaction(ctx, salary.ID))
	assert.True(t, svc.Summary().Bank.IsZero(), "voided transactions do not count")
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	card := addCard(t, svc, "Visa", 25, 10)
	got, err := svc.CreditCard(card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, got)
	_, err = svc.CreditCard("missing")
	assert.ErrorIs(t, err, ErrCardNotFound)

	c, err := svc.Category("1")
	require.NoError(t, err)
	assert.Equal(t, "Food", c.Name)
	_, err = svc.Category("missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	d, err := svc.SaveDebt(ctx, core.Debt{
		Description: "rent share", TotalAmount: core.MustParseMoney("100"),
		DueDate: core.NewDate(2025, 4, 1), Type: core.TheyOweMe, Person: "Ana",
	})
	require.NoError(t, err)
	gotDebt, err := svc.Debt(d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, gotDebt)
	_, err = svc.Debt("missing")
	assert.ErrorIs(t, err, ErrDebtNotFound)

	_, err = svc.FixedExpense("missing")
	assert.ErrorIs(t, err, ErrFixedExpenseNotFound)
}
