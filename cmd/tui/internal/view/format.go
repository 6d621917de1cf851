package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const storeTimeout = 5 * time.Second

// FormatAmount renders an amount as currency.
func FormatAmount(d decimal.Decimal) string {
	return money.Format(d)
}

// FormatSigned prefixes expenses with a minus sign.
func FormatSigned(t *transaction.Transaction) string {
	return money.Format(t.Signed())
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// StoreCtx returns a context with the standard timeout for storage calls.
func StoreCtx() (context.Context, context.CancelFunc) {
	return contextWithTimeout(storeTimeout)
}

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

func alertStyle(k alert.Kind) string {
	switch k {
	case alert.KindDanger:
		return errorStyle.Render("●")
	case alert.KindWarning:
		return accentStyle.Render("●")
	case alert.KindSuccess:
		return successStyle.Render("●")
	}

	return faintStyle.Render("●")
}
