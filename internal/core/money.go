package core

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Amounts never travel as floats inside the service.
type Money struct {
	Cents int64
}

// maxAmount keeps cents comfortably inside int64 (and within JS safe integers).
var maxAmount = decimal.New(1, 13)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseMoney parses a decimal string ("12.34", "1e2") into cents, rounding
// half away from zero to two places. Commas are rejected so "1,000" is never
// read as 1.00. Negative values are parsed; callers that require a
// non-negative amount validate separately.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, ",") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal converts d to cents, failing for out-of-range values.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// String formats the amount with two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a plain JSON number (5, 5.5, 12.34).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return NewValidationError("amount", "amount is required")
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return NewValidationError("amount", "amount must be a number")
		}
		s = unquoted
	}
	// bodies accept a single decimal comma ("4,50")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return NewValidationError("amount", "amount must be a number")
	}
	*m = parsed
	return nil
}
