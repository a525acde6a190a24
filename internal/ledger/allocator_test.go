package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
)

func cycleDebt(id, card string, due core.Date, total, paid int64) core.Debt {
	return core.Debt{
		ID:             id,
		Description:    id,
		TotalAmount:    core.Money{Cents: total},
		PaidAmount:     core.Money{Cents: paid},
		DueDate:        due,
		Type:           core.IOwe,
		Person:         card,
		BillingCycleID: "cycle-" + id,
	}
}

func paidOf(t *testing.T, s *State, id string) int64 {
	t.Helper()
	d, ok := s.Debt(id)
	require.True(t, ok, "debt %s", id)
	return d.PaidAmount.Cents
}

func TestAllocateClampsToTotal(t *testing.T) {
	amounts := []int64{1, 500, 999, 1000, 1001, 1 << 40}
	for _, amount := range amounts {
		s := &State{Debts: []core.Debt{{ID: "d", TotalAmount: core.Money{Cents: 1000}, PaidAmount: core.Money{Cents: 200}}}}
		s.Allocate("d", core.Money{Cents: amount})
		d, _ := s.Debt("d")
		assert.LessOrEqual(t, d.PaidAmount.Cents, d.TotalAmount.Cents, "amount %d", amount)
		assert.Equal(t, min(200+amount, 1000), d.PaidAmount.Cents, "amount %d", amount)
	}
}

func TestAllocateUnknownDebtIsNoOp(t *testing.T) {
	s := &State{}
	s.Allocate("missing", core.Money{Cents: 10})
	s.ReverseAllocation("missing", core.Money{Cents: 10})
	assert.Empty(t, s.Debts)
	assert.Empty(t, s.Changed())
}

func TestReverseAllocationFloorsAtZero(t *testing.T) {
	s := &State{Debts: []core.Debt{{ID: "d", TotalAmount: core.Money{Cents: 1000}, PaidAmount: core.Money{Cents: 300}}}}
	s.ReverseAllocation("d", core.Money{Cents: 100})
	assert.Equal(t, int64(200), paidOf(t, s, "d"))
	s.ReverseAllocation("d", core.Money{Cents: 500})
	assert.Equal(t, int64(0), paidOf(t, s, "d"))
}

func TestAllocateCardReimbursementPaysOldestOpenCycle(t *testing.T) {
	s := &State{Debts: []core.Debt{
		cycleDebt("may", "visa", core.NewDate(2025, 5, 10), 1000, 0),
		cycleDebt("march", "visa", core.NewDate(2025, 3, 10), 1000, 1000), // settled
		cycleDebt("april", "visa", core.NewDate(2025, 4, 10), 1000, 0),
		cycleDebt("other", "amex", core.NewDate(2025, 1, 10), 1000, 0),
		{ID: "manual", Person: "visa", TotalAmount: core.Money{Cents: 1000}, DueDate: core.NewDate(2024, 1, 1)},
	}}

	paid := s.AllocateCardReimbursement("visa", core.Money{Cents: 1500})
	assert.Equal(t, "april", paid)
	assert.Equal(t, int64(1000), paidOf(t, s, "april"), "single target, clamped, no spillover")
	assert.Equal(t, int64(0), paidOf(t, s, "may"))
	assert.Equal(t, int64(0), paidOf(t, s, "other"))
	assert.Equal(t, int64(0), paidOf(t, s, "manual"))
}

func TestAllocateCardReimbursementWithoutOpenCycle(t *testing.T) {
	s := &State{Debts: []core.Debt{cycleDebt("march", "visa", core.NewDate(2025, 3, 10), 1000, 999)}}
	assert.Equal(t, "", s.AllocateCardReimbursement("visa", core.Money{Cents: 100}))
	assert.Equal(t, int64(999), paidOf(t, s, "march"))
}

func TestReverseCardReimbursementNewestFirst(t *testing.T) {
	s := &State{Debts: []core.Debt{
		cycleDebt("march", "visa", core.NewDate(2025, 3, 10), 1000, 800),
		cycleDebt("may", "visa", core.NewDate(2025, 5, 10), 1000, 300),
		cycleDebt("april", "visa", core.NewDate(2025, 4, 10), 1000, 0),
		cycleDebt("other", "amex", core.NewDate(2025, 6, 10), 1000, 500),
	}}

	s.ReverseCardReimbursement("visa", core.Money{Cents: 500})

	assert.Equal(t, int64(0), paidOf(t, s, "may"))
	assert.Equal(t, int64(600), paidOf(t, s, "march"))
	assert.Equal(t, int64(0), paidOf(t, s, "april"))
	assert.Equal(t, int64(500), paidOf(t, s, "other"))
}

func TestReverseCardReimbursementStopsWhenBalancesExhausted(t *testing.T) {
	s := &State{Debts: []core.Debt{cycleDebt("march", "visa", core.NewDate(2025, 3, 10), 1000, 100)}}
	s.ReverseCardReimbursement("visa", core.Money{Cents: 5000})
	assert.Equal(t, int64(0), paidOf(t, s, "march"))
}
