package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"finanzas/internal/core"
)

// print writes v as indented JSON in -json mode and calls table otherwise.
func (a *app) print(v any, table func(w io.Writer)) error {
	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	table(a.out)
	return nil
}

func (a *app) ok(msg string) error {
	return a.print(map[string]string{"result": msg}, func(w io.Writer) {
		fmt.Fprintln(w, msg)
	})
}

func (a *app) table(header string, rows func(tw *tabwriter.Writer)) func(io.Writer) {
	return func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, header)
		rows(tw)
		tw.Flush()
	}
}

func (a *app) printTransactions(ts []core.Transaction) error {
	return a.print(ts, a.table("ID\tDATE\tTYPE\tAMOUNT\tMETHOD\tSTATUS\tDESCRIPTION", func(tw *tabwriter.Writer) {
		for _, t := range ts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Date, t.Type, t.Amount, t.PaymentMethod, t.Status, t.Description)
		}
	}))
}

func (a *app) printDebts(ds []core.Debt) error {
	return a.print(ds, a.table("ID\tDUE\tTYPE\tPERSON\tTOTAL\tPAID\tREMAINING\tDESCRIPTION", func(tw *tabwriter.Writer) {
		for _, d := range ds {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.ID, d.DueDate, d.Type, d.Person, d.TotalAmount, d.PaidAmount, d.Remaining(), d.Description)
		}
	}))
}

func (a *app) printCards(cs []core.CreditCard) error {
	return a.print(cs, a.table("ID\tNAME\tCUT-OFF\tPAYMENT\tSTATUS", func(tw *tabwriter.Writer) {
		for _, c := range cs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.ID, c.Name, c.CutOffDay, c.PaymentDay, c.Status)
		}
	}))
}

func (a *app) printCategories(cs []core.Category) error {
	return a.print(cs, a.table("ID\tNAME\tICON", func(tw *tabwriter.Writer) {
		for _, c := range cs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Icon)
		}
	}))
}

func (a *app) printFixed(es []core.FixedExpense) error {
	return a.print(es, a.table("ID\tDAY\tAMOUNT\tLAST PAID\tDESCRIPTION", func(tw *tabwriter.Writer) {
		for _, e := range es {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", e.ID, e.PaymentDay, e.Amount, e.LastPaidMonth, e.Description)
		}
	}))
}
