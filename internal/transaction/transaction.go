package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// ParseType accepts the canonical names and the legacy spellings found in
// older ledger files.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "ingreso":
		return TypeIncome, true
	case "expense", "gasto":
		return TypeExpense, true
	}

	return "", false
}

// Transaction represents a single ledger entry. Amount is always positive;
// Type decides the sign in aggregates.
type Transaction struct {
	ID          uuid.UUID
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        Type
	Category    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Signed returns the amount with the sign implied by the transaction type.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}

	return t.Amount
}

// DayOf truncates t to midnight UTC of its calendar date.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
