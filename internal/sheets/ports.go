// Package sheets defines the spreadsheet mirror of the ledger: one row per
// transaction, keyed by transaction id in the first column.
package sheets

import (
	"context"

	"finanzas/internal/core"
)

// Header is the first row of the mirror sheet.
var Header = []string{"ID", "Date", "Type", "Description", "Category", "Amount", "Payment", "Card", "Location", "Status"}

// Row is the spreadsheet view of a transaction. Category and card are names,
// resolved when the row is built.
type Row struct {
	ID            string
	Date          string
	Type          string
	Description   string
	Category      string
	Amount        string
	PaymentMethod string
	Card          string
	Location      string
	Status        string
}

// TransactionMirror keeps a spreadsheet in step with the ledger.
type TransactionMirror interface {
	// Upsert writes the row, replacing the existing row with the same ID.
	Upsert(ctx context.Context, row Row) error
}

// NewRow builds the row for a transaction.
func NewRow(t core.Transaction, categoryName, cardName string) Row {
	return Row{
		ID:            t.ID,
		Date:          t.Date.String(),
		Type:          string(t.Type),
		Description:   t.Description,
		Category:      categoryName,
		Amount:        t.Amount.String(),
		PaymentMethod: string(t.PaymentMethod),
		Card:          cardName,
		Location:      t.Location,
		Status:        string(t.Status),
	}
}

// Values returns the cells in Header order.
func (r Row) Values() []interface{} {
	return []interface{}{r.ID, r.Date, r.Type, r.Description, r.Category, r.Amount, r.PaymentMethod, r.Card, r.Location, r.Status}
}
