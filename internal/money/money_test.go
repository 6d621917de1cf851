package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/money"
)

func TestParse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    string
		wantErr error
	}

	tests := []testCase{
		{name: "Plain", input: "12.5", want: "12.5"},
		{name: "CurrencyAndThousands", input: " $1,234.567 ", want: "1234.57"},
		{name: "Euro", input: "€10", want: "10"},
		{name: "Negative", input: "-3.10", want: "-3.1"},
		{name: "Empty", input: "  ", wantErr: money.ErrEmptyAmount},
		{name: "Garbage", input: "twelve", wantErr: money.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Parse(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, money.Validate(decimal.RequireFromString("0.01")))
	assert.NoError(t, money.Validate(money.Max))
	assert.ErrorIs(t, money.Validate(decimal.Zero), money.ErrNonPositive)
	assert.ErrorIs(t, money.Validate(decimal.NewFromInt(-5)), money.ErrNonPositive)
	assert.ErrorIs(t, money.Validate(money.Max.Add(decimal.NewFromInt(1))), money.ErrAmountTooLarge)
}

func TestParsePositive(t *testing.T) {
	_, err := money.ParsePositive("0")
	assert.ErrorIs(t, err, money.ErrNonPositive)

	got, err := money.ParsePositive("99.999")
	require.NoError(t, err)
	assert.Equal(t, "100", got.String())
}

func TestFormat(t *testing.T) {
	type testCase struct {
		input string
		want  string
	}

	tests := []testCase{
		{input: "0", want: "$0.00"},
		{input: "7.5", want: "$7.50"},
		{input: "999", want: "$999.00"},
		{input: "1000", want: "$1,000.00"},
		{input: "1234567.891", want: "$1,234,567.89"},
		{input: "-250.5", want: "-$250.50"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, money.Format(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestPercent(t *testing.T) {
	got := money.Percent(decimal.NewFromInt(30), decimal.NewFromInt(120))
	assert.Equal(t, "25.0%", money.FormatPercent(got))

	assert.True(t, money.Percent(decimal.NewFromInt(5), decimal.Zero).IsZero())
}
