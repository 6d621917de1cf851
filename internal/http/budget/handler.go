// Package budget serves the monthly budgets and their usage.
package budget

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/budget"
	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/alerts", h.alerts)
	r.Get("/summary", h.summary)
	r.Get("/unbudgeted", h.unbudgeted)
	r.Post("/reset", h.reset)
	r.Get("/{category}", h.get)
	r.Put("/{category}", h.set)
	r.Delete("/{category}", h.remove)
	r.Get("/{category}/suggestion", h.suggestion)
}

type statusResponse struct {
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Period    string    `json:"period"`
	Created   time.Time `json:"created"`
	Spent     string    `json:"spent"`
	Remaining string    `json:"remaining"`
	Usage     string    `json:"usage"`
	Level     string    `json:"level"`
}

func toStatusResponse(st *budget.Status) statusResponse {
	return statusResponse{
		Category:  st.Budget.Category,
		Amount:    st.Budget.Amount.StringFixed(2),
		Period:    st.Budget.Period,
		Created:   st.Budget.Created,
		Spent:     st.Spent.StringFixed(2),
		Remaining: st.Remaining.StringFixed(2),
		Usage:     st.Usage.StringFixed(1),
		Level:     st.Level.String(),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sts, err := h.svc.Statuses(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]statusResponse, len(sts))
	for i, st := range sts {
		resp[i] = toStatusResponse(st)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toStatusResponse(st))
}

type setRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	category := chi.URLParam(r, "category")

	if _, err := h.svc.Set(r.Context(), category, req.Amount); err != nil {
		respond.Error(w, r, err)
		return
	}

	st, err := h.svc.Status(r.Context(), category)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toStatusResponse(st))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), chi.URLParam(r, "category")); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.Alerts(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if alerts == nil {
		alerts = []alert.Alert{}
	}

	respond.JSON(w, r, http.StatusOK, alerts)
}

type summaryResponse struct {
	TotalBudgeted string `json:"total_budgeted"`
	TotalSpent    string `json:"total_spent"`
	Remaining     string `json:"remaining"`
	Usage         string `json:"usage"`
	Count         int    `json:"count"`
	Exceeded      int    `json:"exceeded"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, summaryResponse{
		TotalBudgeted: sum.TotalBudgeted.StringFixed(2),
		TotalSpent:    sum.TotalSpent.StringFixed(2),
		Remaining:     sum.Remaining.StringFixed(2),
		Usage:         sum.Usage.StringFixed(1),
		Count:         sum.Count,
		Exceeded:      sum.Exceeded,
	})
}

type suggestionResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount,omitempty"`
	Found    bool   `json:"found"`
}

func (h *Handler) suggestion(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	amount, ok, err := h.svc.Suggest(r.Context(), category)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := suggestionResponse{Category: category, Found: ok}
	if ok {
		resp.Amount = amount.StringFixed(2)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) unbudgeted(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Unbudgeted(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if names == nil {
		names = []string{}
	}

	respond.JSON(w, r, http.StatusOK, names)
}

type resetResponse struct {
	Reset int `json:"reset"`
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ResetMonth(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, resetResponse{Reset: n})
}
