package category_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/category"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

func TestDefaults(t *testing.T) {
	d := category.Defaults()

	assert.Len(t, d.Income, 6)
	assert.Len(t, d.Expense, 11)
	assert.Contains(t, d.Expense, "Entertainment")
	assert.Equal(t, category.OtherExpense, category.Fallback(transaction.TypeExpense))
	assert.Equal(t, category.OtherIncome, category.Fallback(transaction.TypeIncome))
}

func TestTaxonomy_UnmarshalLegacy(t *testing.T) {
	var tax category.Taxonomy
	require.NoError(t, json.Unmarshal([]byte(`{"Ingreso":["Salario"],"Gasto":["Comida","Transporte"]}`), &tax))

	assert.Equal(t, []string{"Salario"}, tax.Income)
	assert.Equal(t, []string{"Comida", "Transporte"}, tax.Expense)
}

func TestTaxonomy_MarshalCanonical(t *testing.T) {
	data, err := json.Marshal(category.Taxonomy{Income: []string{"A"}, Expense: []string{"B"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"income":["A"],"expense":["B"]}`, string(data))
}
