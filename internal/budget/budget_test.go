package budget_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/balancea/internal/budget"
)

func TestTier(t *testing.T) {
	type testCase struct {
		usage string
		want  budget.Level
	}

	tests := []testCase{
		{usage: "0", want: budget.LevelNone},
		{usage: "49.99", want: budget.LevelNone},
		{usage: "50", want: budget.LevelInfo},
		{usage: "79.9", want: budget.LevelInfo},
		{usage: "80", want: budget.LevelWarning},
		{usage: "89.99", want: budget.LevelWarning},
		{usage: "90", want: budget.LevelAlmostExhausted},
		{usage: "99.9", want: budget.LevelAlmostExhausted},
		{usage: "100", want: budget.LevelExceeded},
		{usage: "100.0", want: budget.LevelExceeded},
		{usage: "250", want: budget.LevelExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.usage, func(t *testing.T) {
			assert.Equal(t, tt.want, budget.Tier(decimal.RequireFromString(tt.usage)))
		})
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "almost exhausted", budget.LevelAlmostExhausted.String())
	assert.Equal(t, "exceeded", budget.LevelExceeded.String())
	assert.Equal(t, "none", budget.LevelNone.String())
}
