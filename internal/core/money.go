// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in the ledger's single currency, stored in cents.
type Money struct {
	Cents int64
}

// Epsilon is the tolerance under which a balance counts as settled.
var Epsilon = Money{Cents: 1}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Neg flips the sign of the amount.
func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

// Min returns the smaller of the two amounts.
func (m Money) Min(o Money) Money {
	if o.Cents < m.Cents {
		return o
	}
	return m
}

func (m Money) IsZero() bool { return m.Cents == 0 }

// Settled reports whether the amount is within Epsilon of zero or below it.
func (m Money) Settled() bool {
	return m.Cents <= Epsilon.Cents
}

// Decimal returns the amount as a decimal in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimals, e.g. "1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings in currency units.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	m.Cents = toCents(d)
	return nil
}

// ParseMoney converts a decimal string to Money with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators as well as
// thousands grouping with the other separator ("100.000,50" or "100,000.50").
// Amounts are rounded half up to whole cents.
// Returns ErrInvalidAmount for invalid formats, negative values or zero.
//
// Examples:
//
//	ParseMoney("12.34")      -> 1234 cents
//	ParseMoney("12,345")     -> 1235 cents (rounds half up)
//	ParseMoney("100.000,50") -> 10000050 cents
func ParseMoney(s string) (Money, error) {
	s = normalizeDecimal(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: toCents(d)}
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// MustParseMoney is ParseMoney for constants; it panics on invalid input.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// normalizeDecimal rewrites the input so that '.' is the only decimal separator.
// When both separators appear, the last one is the decimal separator and the
// other is treated as thousands grouping.
func normalizeDecimal(s string) string {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot > comma:
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0 && strings.Count(s, ",") == 1:
		return strings.Replace(s, ",", ".", 1)
	}
	return s
}
