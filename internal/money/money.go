// Package money parses, validates and formats decimal currency amounts.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount    = errors.New("amount is empty")
	ErrInvalidAmount  = errors.New("amount is not a valid number")
	ErrNonPositive    = errors.New("amount must be greater than zero")
	ErrAmountTooLarge = errors.New("amount is too large")
)

// Max is the largest amount a single record may carry.
var Max = decimal.NewFromInt(999_999_999)

var hundred = decimal.NewFromInt(100)

// Parse reads a user supplied amount. A leading currency symbol, surrounding
// spaces and thousands separators are ignored. The result is rounded to cents.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return d.Round(2), nil
}

// Validate checks that d lies in (0, Max].
func Validate(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNonPositive
	}

	if d.GreaterThan(Max) {
		return ErrAmountTooLarge
	}

	return nil
}

// ParsePositive parses s and validates the result.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}

	if err := Validate(d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// Format renders d as "$1,234.56", with a leading minus for negatives.
func Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	return sign + "$" + group(whole) + "." + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}

	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}

		b.WriteString(digits[i : i+3])
	}

	return b.String()
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}

	return part.Div(whole).Mul(hundred)
}

// FormatPercent renders p with one decimal and a percent sign.
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}

// Cents rounds d to two decimal places.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
