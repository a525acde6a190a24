package core

// Kind tags the ledger semantics of a transaction. Every transaction has exactly
// one kind; the billing-cycle engine and the payment allocator switch on it
// instead of checking flag combinations.
type Kind string

const (
	KindOrdinary    Kind = "ordinary"
	KindLoan        Kind = "loan"
	KindCashAdvance Kind = "cash_advance"
	KindDebtPayment Kind = "debt_payment"
)

// CardCharge is the amount a transaction posts into a credit card's billing cycle.
type CardCharge struct {
	CardID string
	Date   Date
	Amount Money
}

// Kind classifies the transaction. A cash advance is a loan taken as income
// through a credit card; its debt lives in the card's billing cycle.
func (t Transaction) Kind() Kind {
	switch {
	case t.IsLoan && t.Type == Income && t.PaymentMethod == CreditCardMethod:
		return KindCashAdvance
	case t.IsLoan:
		return KindLoan
	case t.PaidDebtID != "":
		return KindDebtPayment
	default:
		return KindOrdinary
	}
}

// CardCharge returns the charge the transaction posts to a card cycle. Only
// card expenses and cash advances post charges; a cash advance is charged as
// an expense of amount plus advance fee while the stored transaction stays income.
func (t Transaction) CardCharge() (CardCharge, bool) {
	if t.PaymentMethod != CreditCardMethod || t.CreditCardID == "" {
		return CardCharge{}, false
	}
	switch {
	case t.Kind() == KindCashAdvance:
		return CardCharge{CardID: t.CreditCardID, Date: t.Date, Amount: t.Amount.Add(t.AdvanceFee)}, true
	case t.Type == Expense:
		return CardCharge{CardID: t.CreditCardID, Date: t.Date, Amount: t.Amount}, true
	}
	return CardCharge{}, false
}

// OriginatesLoanDebt reports whether the transaction owns a manual loan debt.
func (t Transaction) OriginatesLoanDebt() bool {
	return t.Kind() == KindLoan
}

// LoanDebtType is the direction of the loan debt: lending cash out (expense)
// means they owe me, borrowing (income) means I owe.
func (t Transaction) LoanDebtType() DebtType {
	if t.Type == Expense {
		return TheyOweMe
	}
	return IOwe
}
