// Package category manages the income and expense taxonomy.
package category

import (
	"encoding/json"
	"slices"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

// Names of the fallback categories used when nothing better is known.
const (
	OtherIncome  = "Other Income"
	OtherExpense = "Other Expense"
)

// Taxonomy lists the category names available per transaction type, in
// display order.
type Taxonomy struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// Defaults returns the taxonomy a new installation starts with.
func Defaults() Taxonomy {
	return Taxonomy{
		Income: []string{"Salary", "Freelance", "Investments", "Gift", "Bonus", OtherIncome},
		Expense: []string{
			"Food", "Transport", "Utilities", "Entertainment", "Health", "Education",
			"Clothing", "Home", "Technology", "Travel", OtherExpense,
		},
	}
}

// Fallback is the catch-all category of a type.
func Fallback(t transaction.Type) string {
	if t == transaction.TypeIncome {
		return OtherIncome
	}

	return OtherExpense
}

// Names returns the categories of a type. The slice is a copy.
func (t Taxonomy) Names(typ transaction.Type) []string {
	switch typ {
	case transaction.TypeIncome:
		return slices.Clone(t.Income)
	case transaction.TypeExpense:
		return slices.Clone(t.Expense)
	}

	return nil
}

func (t Taxonomy) Contains(typ transaction.Type, name string) bool {
	return slices.Contains(t.list(typ), name)
}

func (t *Taxonomy) list(typ transaction.Type) []string {
	if typ == transaction.TypeIncome {
		return t.Income
	}

	return t.Expense
}

func (t *Taxonomy) set(typ transaction.Type, names []string) {
	if typ == transaction.TypeIncome {
		t.Income = names
		return
	}

	t.Expense = names
}

func (t Taxonomy) clone() Taxonomy {
	return Taxonomy{Income: slices.Clone(t.Income), Expense: slices.Clone(t.Expense)}
}

// UnmarshalJSON also accepts files written with the legacy "Ingreso"/"Gasto" keys.
func (t *Taxonomy) UnmarshalJSON(data []byte) error {
	var raw struct {
		Income        []string `json:"income"`
		Expense       []string `json:"expense"`
		LegacyIncome  []string `json:"Ingreso"`
		LegacyExpense []string `json:"Gasto"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Income = raw.Income
	if t.Income == nil {
		t.Income = raw.LegacyIncome
	}

	t.Expense = raw.Expense
	if t.Expense == nil {
		t.Expense = raw.LegacyExpense
	}

	return nil
}
