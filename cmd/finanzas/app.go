package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/services"
)

const usage = `usage: finanzas [-json] <command> [flags]

commands:
  tx add|edit|void|list
  debt add|edit|pay|delete|list
  card add|edit|delete|toggle|list
  category add|edit|delete|list
  fixed add|edit|pay|delete|due|list
  import FILE.json
  summary
  locations`

var errUsage = errors.New(usage)

type app struct {
	svc  *services.FinanceService
	out  io.Writer
	now  func() time.Time
	json bool
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("finanzas", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&a.json, "json", false, "print JSON instead of tables")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	args = fs.Args()
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "summary":
		return a.summary()
	case "locations":
		locations := a.svc.Locations()
		return a.print(locations, func(w io.Writer) {
			for _, l := range locations {
				fmt.Fprintln(w, l)
			}
		})
	case "import":
		return a.importFile(ctx, rest)
	}

	if len(rest) == 0 {
		return errUsage
	}
	sub, rest := rest[0], rest[1:]
	switch cmd + " " + sub {
	case "tx add":
		return a.txSave(ctx, "", rest)
	case "tx edit":
		id, rest, err := editArgs("tx edit", rest)
		if err != nil {
			return err
		}
		return a.txSave(ctx, id, rest)
	case "tx void":
		id, err := oneID("tx void", rest)
		if err != nil {
			return err
		}
		if err := a.svc.VoidTransaction(ctx, id); err != nil {
			return err
		}
		return a.ok("voided " + id)
	case "tx list":
		return a.txList()

	case "debt add":
		return a.debtSave(ctx, "", rest)
	case "debt edit":
		id, rest, err := editArgs("debt edit", rest)
		if err != nil {
			return err
		}
		return a.debtSave(ctx, id, rest)
	case "debt pay":
		return a.debtPay(ctx, rest)
	case "debt delete":
		id, err := oneID("debt delete", rest)
		if err != nil {
			return err
		}
		if err := a.svc.DeleteDebt(ctx, id); err != nil {
			return err
		}
		return a.ok("deleted " + id)
	case "debt list":
		return a.debtList(rest)

	case "card add":
		return a.cardSave(ctx, "", rest)
	case "card edit":
		id, rest, err := editArgs("card edit", rest)
		if err != nil {
			return err
		}
		return a.cardSave(ctx, id, rest)
	case "card delete":
		id, err := oneID("card delete", rest)
		if err != nil {
			return err
		}
		if err := a.svc.DeleteCreditCard(ctx, id); err != nil {
			return err
		}
		return a.ok("deleted " + id)
	case "card toggle":
		id, err := oneID("card toggle", rest)
		if err != nil {
			return err
		}
		card, err := a.svc.ToggleCreditCardStatus(ctx, id)
		if err != nil {
			return err
		}
		return a.printCards([]core.CreditCard{card})
	case "card list":
		return a.printCards(a.svc.CreditCards())

	case "category add":
		return a.categorySave(ctx, "", rest)
	case "category edit":
		id, rest, err := editArgs("category edit", rest)
		if err != nil {
			return err
		}
		return a.categorySave(ctx, id, rest)
	case "category delete":
		id, err := oneID("category delete", rest)
		if err != nil {
			return err
		}
		if err := a.svc.DeleteCategory(ctx, id); err != nil {
			return err
		}
		return a.ok("deleted " + id)
	case "category list":
		return a.printCategories(a.svc.Categories())

	case "fixed add":
		return a.fixedSave(ctx, "", rest)
	case "fixed edit":
		id, rest, err := editArgs("fixed edit", rest)
		if err != nil {
			return err
		}
		return a.fixedSave(ctx, id, rest)
	case "fixed pay":
		return a.fixedPay(ctx, rest)
	case "fixed delete":
		id, err := oneID("fixed delete", rest)
		if err != nil {
			return err
		}
		if err := a.svc.DeleteFixedExpense(ctx, id); err != nil {
			return err
		}
		return a.ok("deleted " + id)
	case "fixed due":
		return a.fixedDue(rest)
	case "fixed list":
		return a.printFixed(a.svc.FixedExpenses())
	}
	return errUsage
}

// txFlags binds every transaction field. Edits only apply the flags that were set.
type txFlags struct {
	amount, desc, date, typ, category, method, card, location string

	fee, pays, person, due string

	loan bool
}

func (f *txFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.amount, "amount", "", "amount, e.g. 12.50")
	fs.StringVar(&f.desc, "desc", "", "description")
	fs.StringVar(&f.date, "date", "", "date YYYY-MM-DD (default today)")
	fs.StringVar(&f.typ, "type", "expense", "income or expense")
	fs.StringVar(&f.category, "category", "", "category id or name")
	fs.StringVar(&f.method, "method", "bank", "bank, cash or credit_card")
	fs.StringVar(&f.card, "card", "", "credit card id or name")
	fs.StringVar(&f.location, "location", "", "where it happened")
	fs.BoolVar(&f.loan, "loan", false, "the transaction is a loan")
	fs.StringVar(&f.person, "person", "", "counterparty of a loan")
	fs.StringVar(&f.due, "due", "", "loan due date YYYY-MM-DD")
	fs.StringVar(&f.fee, "fee", "", "cash advance fee")
	fs.StringVar(&f.pays, "pays", "", "id of the debt this transaction pays")
}

func (a *app) txSave(ctx context.Context, id string, args []string) error {
	var f txFlags
	fs := newFlagSet("tx")
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	in := services.TransactionInput{ID: id, PaidDebtID: f.pays}
	t := core.Transaction{Date: core.DateOf(a.now())}
	if id != "" {
		current, err := a.svc.Transaction(id)
		if err != nil {
			return err
		}
		t = current
	}

	var err error
	if id == "" || set["amount"] {
		if t.Amount, err = core.ParseMoney(f.amount); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	}
	if set["fee"] {
		if t.AdvanceFee, err = core.ParseMoney(f.fee); err != nil {
			return fmt.Errorf("fee: %w", err)
		}
	}
	if set["date"] {
		if t.Date, err = core.ParseDate(f.date); err != nil {
			return err
		}
	}
	if id == "" || set["desc"] {
		t.Description = f.desc
	}
	if id == "" || set["type"] {
		t.Type = core.TransactionType(f.typ)
	}
	if id == "" || set["method"] {
		t.PaymentMethod = core.PaymentMethod(f.method)
	}
	if id == "" || set["category"] {
		t.CategoryID = a.categoryRef(f.category)
	}
	if id == "" || set["card"] {
		t.CreditCardID = a.cardRef(f.card)
	}
	if id == "" || set["location"] {
		t.Location = f.location
	}
	if id == "" || set["loan"] {
		t.IsLoan = f.loan
	}
	if set["person"] || set["due"] {
		loan := &services.LoanDetails{Person: f.person}
		if f.due != "" {
			if loan.DueDate, err = core.ParseDate(f.due); err != nil {
				return err
			}
		}
		in.Loan = loan
	}

	in.Transaction = t
	saved, err := a.svc.SaveTransaction(ctx, in)
	if err != nil {
		return err
	}
	return a.printTransactions([]core.Transaction{saved})
}

func (a *app) txList() error {
	return a.printTransactions(a.svc.Transactions())
}

func (a *app) debtSave(ctx context.Context, id string, args []string) error {
	fs := newFlagSet("debt")
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "total amount")
	due := fs.String("due", "", "due date YYYY-MM-DD (default today)")
	typ := fs.String("type", string(core.IOwe), "i_owe or they_owe_me")
	person := fs.String("person", "", "counterparty")
	card := fs.String("card", "", "credit card the debt came from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	d := core.Debt{ID: id, DueDate: core.DateOf(a.now())}
	if id != "" {
		current, err := a.svc.Debt(id)
		if err != nil {
			return err
		}
		d = current
	}

	var err error
	if id == "" || set["amount"] {
		if d.TotalAmount, err = core.ParseMoney(*amount); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	}
	if set["due"] {
		if d.DueDate, err = core.ParseDate(*due); err != nil {
			return err
		}
	}
	if id == "" || set["desc"] {
		d.Description = *desc
	}
	if id == "" || set["type"] {
		d.Type = core.DebtType(*typ)
	}
	if id == "" || set["person"] {
		d.Person = *person
	}
	if id == "" || set["card"] {
		d.SourceCreditCardID = a.cardRef(*card)
	}

	saved, err := a.svc.SaveDebt(ctx, d)
	if err != nil {
		return err
	}
	return a.printDebts([]core.Debt{saved})
}

func (a *app) debtPay(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("debt pay: missing debt id")
	}
	id := args[0]
	fs := newFlagSet("debt pay")
	amount := fs.String("amount", "", "amount to pay")
	date := fs.String("date", "", "payment date YYYY-MM-DD (default today)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	m, err := core.ParseMoney(*amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	at, err := a.dateFlag(*date)
	if err != nil {
		return err
	}
	t, err := a.svc.PayDebt(ctx, id, m, at)
	if err != nil {
		return err
	}
	return a.printTransactions([]core.Transaction{t})
}

func (a *app) debtList(args []string) error {
	fs := newFlagSet("debt list")
	receivables := fs.Bool("receivables", false, "only debts owed to me")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *receivables {
		return a.printDebts(a.svc.Receivables())
	}
	return a.printDebts(a.svc.Debts())
}

func (a *app) cardSave(ctx context.Context, id string, args []string) error {
	fs := newFlagSet("card")
	name := fs.String("name", "", "card name")
	cutOff := fs.Int("cutoff", 0, "statement cut-off day")
	payDay := fs.Int("payday", 0, "payment day")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	card := core.CreditCard{ID: id}
	if id != "" {
		current, err := a.svc.CreditCard(id)
		if err != nil {
			return err
		}
		card = current
	}
	if id == "" || set["name"] {
		card.Name = *name
	}
	if id == "" || set["cutoff"] {
		card.CutOffDay = *cutOff
	}
	if id == "" || set["payday"] {
		card.PaymentDay = *payDay
	}

	saved, err := a.svc.SaveCreditCard(ctx, card)
	if err != nil {
		return err
	}
	return a.printCards([]core.CreditCard{saved})
}

func (a *app) categorySave(ctx context.Context, id string, args []string) error {
	fs := newFlagSet("category")
	name := fs.String("name", "", "category name")
	icon := fs.String("icon", "fa-tag", "icon class")
	color := fs.String("color", "bg-gray-500", "color class")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	c := core.Category{ID: id}
	if id != "" {
		current, err := a.svc.Category(id)
		if err != nil {
			return err
		}
		c = current
	}
	if id == "" || set["name"] {
		c.Name = *name
	}
	if id == "" || set["icon"] {
		c.Icon = *icon
	}
	if id == "" || set["color"] {
		c.Color = *color
	}

	saved, err := a.svc.SaveCategory(ctx, c)
	if err != nil {
		return err
	}
	return a.printCategories([]core.Category{saved})
}

func (a *app) fixedSave(ctx context.Context, id string, args []string) error {
	fs := newFlagSet("fixed")
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "monthly amount")
	category := fs.String("category", "", "category id or name")
	day := fs.Int("day", 1, "payment day of the month")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	e := core.FixedExpense{ID: id}
	if id != "" {
		current, err := a.svc.FixedExpense(id)
		if err != nil {
			return err
		}
		e = current
	}

	var err error
	if id == "" || set["amount"] {
		if e.Amount, err = core.ParseMoney(*amount); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	}
	if id == "" || set["desc"] {
		e.Description = *desc
	}
	if id == "" || set["category"] {
		e.CategoryID = a.categoryRef(*category)
	}
	if id == "" || set["day"] {
		e.PaymentDay = *day
	}

	saved, err := a.svc.SaveFixedExpense(ctx, e)
	if err != nil {
		return err
	}
	return a.printFixed([]core.FixedExpense{saved})
}

func (a *app) fixedPay(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("fixed pay: missing fixed expense id")
	}
	id := args[0]
	fs := newFlagSet("fixed pay")
	amount := fs.String("amount", "", "amount paid (default the configured amount)")
	date := fs.String("date", "", "payment date YYYY-MM-DD (default today)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var m core.Money
	if *amount != "" {
		var err error
		if m, err = core.ParseMoney(*amount); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	}
	at, err := a.dateFlag(*date)
	if err != nil {
		return err
	}
	t, err := a.svc.PayFixedExpense(ctx, id, m, at)
	if err != nil {
		return err
	}
	return a.printTransactions([]core.Transaction{t})
}

func (a *app) fixedDue(args []string) error {
	fs := newFlagSet("fixed due")
	date := fs.String("date", "", "reference date YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	at, err := a.dateFlag(*date)
	if err != nil {
		return err
	}
	return a.printFixed(a.svc.DueFixedExpenses(at))
}

func (a *app) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("import: expected one JSON file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var batch services.ImportBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	res, err := a.svc.Import(ctx, batch)
	if err != nil {
		return err
	}
	return a.print(res, func(w io.Writer) {
		fmt.Fprintf(w, "imported %d transactions, %d debts, %d new categories\n",
			res.Transactions, res.Debts, res.Categories)
	})
}

func (a *app) summary() error {
	s := a.svc.Summary()
	return a.print(s, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "Bank\t%s\t\n", s.Bank)
		fmt.Fprintf(tw, "Cash\t%s\t\n", s.Cash)
		fmt.Fprintf(tw, "Total\t%s\t\n", s.Total)
		fmt.Fprintf(tw, "Card debt\t%s\t\n", s.CardDebt)
		tw.Flush()
	})
}

// categoryRef resolves a category name to its id; unknown values pass through.
func (a *app) categoryRef(ref string) string {
	for _, c := range a.svc.Categories() {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c.ID
		}
	}
	return ref
}

// cardRef resolves a card name to its id; unknown values pass through.
func (a *app) cardRef(ref string) string {
	for _, c := range a.svc.CreditCards() {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c.ID
		}
	}
	return ref
}

func (a *app) dateFlag(s string) (time.Time, error) {
	if s == "" {
		return a.now(), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func oneID(cmd string, args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%s: expected one id", cmd)
	}
	return args[0], nil
}

// editArgs splits "ID [flags]" for the edit subcommands.
func editArgs(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") || strings.TrimSpace(args[0]) == "" {
		return "", nil, fmt.Errorf("%s: missing id", cmd)
	}
	return args[0], args[1:], nil
}
