package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/log"
)

// ImportedCardName is the card that receives imported card transactions.
const ImportedCardName = "Imported Card"

// ImportedTransaction is a transaction from an external source. It names its
// category instead of referencing one; ID, status and card are assigned on import.
type ImportedTransaction struct {
	core.Transaction
	CategoryName string `json:"category"`
}

// ImportBatch is the payload produced by the spreadsheet importer.
type ImportBatch struct {
	Transactions  []ImportedTransaction `json:"transactions"`
	Debts         []core.Debt           `json:"debts"`
	CategoryNames []string              `json:"categories"`
}

// ImportResult counts what an import added.
type ImportResult struct {
	Transactions int    `json:"transactions"`
	Debts        int    `json:"debts"`
	Categories   int    `json:"categories"`
	CardID       string `json:"cardId,omitempty"`
}

// Import adds a batch of transactions, debts and categories. Missing categories
// are created, matching names ignoring case. Card transactions are routed to
// the "Imported Card", created inactive when absent. Imported transactions are
// history: they do not post into billing cycles.
//
// The batch is validated as a whole; nothing is imported when any record is invalid.
func (s *FinanceService) Import(ctx context.Context, batch ImportBatch) (ImportResult, error) {
	var (
		res ImportResult
		ids []string
	)
	err := s.mutate(ctx, log.OpImport, func(next *ledger.State) error {
		res, ids = ImportResult{}, nil

		categoryID := func(name string) string {
			name = strings.TrimSpace(name)
			if name == "" {
				name = ledger.FallbackCategoryName
			}
			if c, ok := next.CategoryByNameFold(name); ok {
				return c.ID
			}
			c := core.Category{ID: uuid.NewString(), Name: name, Icon: "fa-folder-open", Color: "bg-stone-500"}
			next.PutCategory(c)
			res.Categories++
			return c.ID
		}

		for _, name := range batch.CategoryNames {
			if strings.TrimSpace(name) != "" {
				categoryID(name)
			}
		}

		for i, it := range batch.Transactions {
			t := it.Transaction
			t.ID = uuid.NewString()
			t.Status = core.Active
			t.CategoryID = categoryID(it.CategoryName)
			t.CreditCardID = ""
			if t.PaymentMethod == core.CreditCardMethod {
				t.CreditCardID = importedCard(next, &res)
			}
			if err := t.Validate(); err != nil {
				return fmt.Errorf("transaction %d: %w", i+1, err)
			}
			next.PutTransaction(t)
			ids = append(ids, t.ID)
			res.Transactions++
		}

		for i, d := range batch.Debts {
			d.ID = uuid.NewString()
			d.PaidAmount = d.PaidAmount.Min(d.TotalAmount)
			if d.PaidAmount.Cents < 0 {
				d.PaidAmount = core.Money{}
			}
			if err := d.Validate(); err != nil {
				return fmt.Errorf("debt %d: %w", i+1, err)
			}
			next.PutDebt(d)
			res.Debts++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.logger.WithComponent(log.ComponentImport).InfoContext(ctx, "Import completed",
		log.FieldOperation, log.OpImport,
		"transactions", res.Transactions,
		"debts", res.Debts,
		"categories", res.Categories)
	for _, id := range ids {
		s.publish(ctx, id, amqp.OpSave)
	}
	return res, nil
}

func importedCard(st *ledger.State, res *ImportResult) string {
	if res.CardID != "" {
		return res.CardID
	}
	for _, c := range st.CreditCards {
		if c.Name == ImportedCardName {
			res.CardID = c.ID
			return c.ID
		}
	}
	card := core.CreditCard{
		ID:         uuid.NewString(),
		Name:       ImportedCardName,
		CutOffDay:  25,
		PaymentDay: 10,
		Status:     core.CardInactive,
	}
	st.PutCard(card)
	res.CardID = card.ID
	return card.ID
}
