// Package core provides money parsing and handling utilities.
//
// Amounts are decimals without a currency; they are always displayed with
// a fixed rupee glyph and two decimal places.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every rendered amount.
const CurrencySymbol = "₹"

// Amount is a non-negative decimal quantity. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

// NewAmount builds an Amount from a float, mostly for tests and fixtures.
func NewAmount(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f)}
}

// AmountFromDecimal wraps a decimal value.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// ParseAmount converts user input to an Amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Empty input is ErrMissingAmount; anything that is not a non-negative
// decimal is ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrMissingAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{d: d}, nil
}

// CoerceAmount is the lenient conversion used for stored records:
// anything non-numeric becomes zero.
func CoerceAmount(s string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}
	}
	return Amount{d: d}
}

func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Float64 returns the value for ratio computations and charts.
func (a Amount) Float64() float64 {
	return a.d.InexactFloat64()
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// String renders the plain value with two decimals (e.g. "12.50").
func (a Amount) String() string {
	return a.d.StringFixed(2)
}

// Format renders the value with the currency glyph (e.g. "₹12.50").
func (a Amount) Format() string {
	return CurrencySymbol + a.d.StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Missing, null or
// non-numeric values decode as zero rather than failing the whole record.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Amount{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*a = CoerceAmount(s)
		return nil
	}
	*a = CoerceAmount(string(data))
	return nil
}
