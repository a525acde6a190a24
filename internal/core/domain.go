package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Bank             PaymentMethod = "bank"
	Cash             PaymentMethod = "cash"
	CreditCardMethod PaymentMethod = "credit_card"
)

const (
	Active TransactionStatus = "active"
	Voided TransactionStatus = "voided"
)

const (
	IOwe      DebtType = "i_owe"
	TheyOweMe DebtType = "they_owe_me"
)

const (
	CardActive   CardStatus = "active"
	CardInactive CardStatus = "inactive"
)

type (
	TransactionType   string
	PaymentMethod     string
	TransactionStatus string
	DebtType          string
	CardStatus        string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID            string            `json:"id"`
		Amount        Money             `json:"amount"`
		Description   string            `json:"description"`
		Date          Date              `json:"date"`
		Type          TransactionType   `json:"type"`
		CategoryID    string            `json:"categoryId"`
		Location      string            `json:"location,omitempty"`
		PaymentMethod PaymentMethod     `json:"paymentMethod"`
		CreditCardID  string            `json:"creditCardId,omitempty"`
		Status        TransactionStatus `json:"status"`
		IsLoan        bool              `json:"isLoan,omitempty"`
		AdvanceFee    Money             `json:"advanceFee"`
		PaidDebtID    string            `json:"paidDebtId,omitempty"`
	}

	Debt struct {
		ID                       string   `json:"id"`
		Description              string   `json:"description"`
		TotalAmount              Money    `json:"totalAmount"`
		PaidAmount               Money    `json:"paidAmount"`
		DueDate                  Date     `json:"dueDate"`
		Type                     DebtType `json:"type"`
		Person                   string   `json:"person"`
		BillingCycleID           string   `json:"billingCycleIdentifier,omitempty"`
		SourceCreditCardID       string   `json:"sourceCreditCardId,omitempty"`
		OriginatingTransactionID string   `json:"originatingTransactionId,omitempty"`
	}

	CreditCard struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		CutOffDay  int        `json:"cutOffDay"`
		PaymentDay int        `json:"paymentDay"`
		Status     CardStatus `json:"status"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
	}

	FixedExpense struct {
		ID            string `json:"id"`
		Description   string `json:"description"`
		Amount        Money  `json:"amount"`
		CategoryID    string `json:"categoryId"`
		PaymentDay    int    `json:"paymentDay"`
		LastPaidMonth string `json:"lastPaidMonth,omitempty"` // YYYY-MM
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidFee           = errors.New("invalid advance fee")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyCategory        = errors.New("empty category")
	ErrEmptyName            = errors.New("empty name")
	ErrEmptyPerson          = errors.New("empty person")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrMissingCard          = errors.New("credit card payment requires a card")
	ErrInvalidDebtType      = errors.New("invalid debt type")
	ErrInvalidCardDay       = errors.New("card days must be between 1 and 31")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// DateLayout is the calendar date format used in JSON and on the command line.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date. Full RFC 3339 timestamps are accepted and
// truncated to their UTC day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey returns the YYYY-MM key used to mark fixed expenses as paid.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case Bank, Cash, CreditCardMethod:
		return true
	}
	return false
}

// IsVoided reports whether the transaction reached its terminal state.
func (t Transaction) IsVoided() bool {
	return t.Status == Voided
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.AdvanceFee.Cents < 0 {
		return ErrInvalidFee
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if t.PaymentMethod == CreditCardMethod && strings.TrimSpace(t.CreditCardID) == "" {
		return ErrMissingCard
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Remaining is the part of the debt still to be paid.
func (d Debt) Remaining() Money {
	return d.TotalAmount.Sub(d.PaidAmount)
}

// IsCycleDebt reports whether the debt is owned by the billing-cycle engine.
func (d Debt) IsCycleDebt() bool {
	return d.BillingCycleID != ""
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := d.TotalAmount.Validate(); err != nil {
		return err
	}
	if d.Type != IOwe && d.Type != TheyOweMe {
		return ErrInvalidDebtType
	}
	if strings.TrimSpace(d.Person) == "" {
		return ErrEmptyPerson
	}
	if err := d.DueDate.Validate(); err != nil {
		return err
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.CutOffDay < 1 || c.CutOffDay > 31 || c.PaymentDay < 1 || c.PaymentDay > 31 {
		return ErrInvalidCardDay
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e FixedExpense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if e.PaymentDay < 1 || e.PaymentDay > 31 {
		return ErrInvalidDay
	}
	return nil
}

// PaidIn reports whether the expense was marked paid in the month of d.
func (e FixedExpense) PaidIn(d Date) bool {
	return e.LastPaidMonth == d.MonthKey()
}
