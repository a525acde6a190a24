// Package billing resolves the credit-card billing cycle a charge belongs to.
//
// All arithmetic works on UTC calendar dates. Cut-off and payment days larger
// than a month's length resolve to that month's last day instead of spilling
// into the next month.
package billing

import (
	"fmt"
	"time"

	"finanzas/internal/core"
)

// Cycle identifies one billing period of a card.
type Cycle struct {
	ID      string
	Closing core.Date
	Due     core.Date
}

// Resolve maps a charge date to the billing cycle of the card.
//
// The cycle closes on the cut-off day of the charge's month, or of the next
// month when the charge happens after the cut-off day. Payment is due on the
// payment day of the month following the closing.
func Resolve(date core.Date, card core.CreditCard) Cycle {
	year, month := date.Year(), time.Month(date.Month())
	if date.Day() > card.CutOffDay {
		year, month = addMonths(year, month, 1)
	}
	closing := clampedDate(year, month, card.CutOffDay)

	dueYear, dueMonth := addMonths(year, month, 1)
	due := clampedDate(dueYear, dueMonth, card.PaymentDay)

	return Cycle{
		ID:      CycleID(card.ID, year, month),
		Closing: closing,
		Due:     due,
	}
}

// CycleID is the stable identifier of the cycle of a card closing in year/month.
func CycleID(cardID string, year int, month time.Month) string {
	return fmt.Sprintf("cc-debt-%s-%04d-%02d", cardID, year, int(month))
}

// DaysIn returns the number of days of the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampedDate(year int, month time.Month, day int) core.Date {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return core.NewDate(year, int(month), day)
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	t := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
