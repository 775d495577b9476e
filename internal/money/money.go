package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnits is the number of fractional digits carried by an Amount.
const MinorUnits = 2

// DefaultCurrency is the storefront's display currency.
const DefaultCurrency = "KES"

// MaxAmount bounds every parsed amount and cart subtotal so that totals
// including shipping always fit in an int64.
const MaxAmount Amount = 1_000_000_000_000_00

var (
	ErrInvalidAmount  = errors.New("amount must be a non-negative value with at most 2 decimal places")
	ErrAmountTooLarge = errors.New("amount exceeds the supported maximum")
)

var maxAmountDecimal = decimal.New(int64(MaxAmount), 0)

// Amount is a monetary value in currency minor units (cents).
type Amount int64

// Parse converts a major-unit decimal string such as "10000" or "99.50"
// into an Amount without going through floating point.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidAmount)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidAmount)
	}
	minor := d.Shift(MinorUnits)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidAmount)
	}
	if minor.GreaterThan(maxAmountDecimal) {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrAmountTooLarge)
	}
	return Amount(minor.IntPart()), nil
}

// MustParse is Parse for constants known to be valid.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromMajor builds an Amount from whole major units.
func FromMajor(units int64) Amount {
	return Amount(units * 100)
}

// Mul returns the amount multiplied by a quantity. Callers keep both
// within MaxAmount; see MulChecked.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// MulChecked is Mul that reports false when either operand is negative or
// the product would exceed MaxAmount.
func (a Amount) MulChecked(qty int) (Amount, bool) {
	if a < 0 || qty < 0 {
		return 0, false
	}
	if a == 0 || qty == 0 {
		return 0, true
	}
	if a > MaxAmount/Amount(qty) {
		return 0, false
	}
	return a * Amount(qty), true
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -MinorUnits)
}

// String renders the amount in major units with two decimals, e.g. "10000.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(MinorUnits)
}

// Format renders the amount for display with grouped thousands,
// e.g. "KES 10,000.00".
func (a Amount) Format(currency string) string {
	s := a.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s %s%s.%s", currency, sign, b.String(), frac)
}
