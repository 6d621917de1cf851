// Package analysis exposes the analyzer's alerts and health score.
package analysis

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type LedgerSource interface {
	Snapshot(ctx context.Context) (transaction.Ledger, error)
}

type Handler struct {
	ledger   LedgerSource
	analyzer *analyzer.Analyzer
}

func NewHandler(ledger LedgerSource, a *analyzer.Analyzer) *Handler {
	return &Handler{ledger: ledger, analyzer: a}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/alerts", h.alerts)
	r.Get("/health", h.health)
	r.Get("/summary", h.summary)
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	alerts := h.analyzer.AnalyzeAll(l)
	if alerts == nil {
		alerts = []alert.Alert{}
	}

	respond.JSON(w, r, http.StatusOK, alerts)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, h.analyzer.HealthSummary(l))
}

type categoryShare struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Share    string `json:"share"`
}

type summaryResponse struct {
	Transactions int             `json:"transactions"`
	Income       string          `json:"income"`
	Expense      string          `json:"expense"`
	Balance      string          `json:"balance"`
	Categories   []categoryShare `json:"categories"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := summaryResponse{
		Transactions: l.Len(),
		Income:       l.TotalIncome().StringFixed(2),
		Expense:      l.TotalExpense().StringFixed(2),
		Balance:      l.Balance().StringFixed(2),
		Categories:   []categoryShare{},
	}

	expense := l.TotalExpense()

	for _, ct := range l.CategoryTotals() {
		resp.Categories = append(resp.Categories, categoryShare{
			Category: ct.Category,
			Amount:   ct.Amount.StringFixed(2),
			Share:    money.Percent(ct.Amount, expense).StringFixed(1),
		})
	}

	respond.JSON(w, r, http.StatusOK, resp)
}
