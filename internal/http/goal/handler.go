// Package goal serves savings goals, contributions and goal alerts.
package goal

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/goal"
	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
)

type Handler struct {
	svc *goal.Service
	now func() time.Time
}

func NewHandler(svc *goal.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/alerts", h.allAlerts)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.edit)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/contributions", h.contribute)
	r.Put("/{id}/amount", h.setAmount)
	r.Get("/{id}/alerts", h.alerts)
}

type goalRequest struct {
	Name        string          `json:"name"`
	Target      decimal.Decimal `json:"target"`
	Deadline    string          `json:"deadline,omitempty"`
	Description string          `json:"description"`
}

func (req goalRequest) params() (goal.Params, error) {
	p := goal.Params{
		Name:        req.Name,
		Target:      req.Target,
		Description: req.Description,
	}

	if req.Deadline != "" {
		d, err := time.Parse(time.DateOnly, req.Deadline)
		if err != nil {
			return p, err
		}

		p.Deadline = new(d)
	}

	return p, nil
}

type goalResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Target        string    `json:"target"`
	Current       string    `json:"current"`
	Progress      string    `json:"progress"`
	Created       string    `json:"created"`
	Deadline      string    `json:"deadline,omitempty"`
	DaysRemaining *int      `json:"days_remaining,omitempty"`
	Description   string    `json:"description,omitempty"`
	Completed     bool      `json:"completed"`
	CompletedDate string    `json:"completed_date,omitempty"`
}

func (h *Handler) toResponse(g *goal.Goal) goalResponse {
	resp := goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		Target:        g.Target.StringFixed(2),
		Current:       g.Current.StringFixed(2),
		Progress:      goal.Progress(g).StringFixed(1),
		Created:       g.Created.Format(time.DateOnly),
		DaysRemaining: goal.DaysRemaining(g, h.now()),
		Description:   g.Description,
		Completed:     g.Completed,
	}

	if g.Deadline != nil {
		resp.Deadline = g.Deadline.Format(time.DateOnly)
	}

	if g.CompletedDate != nil {
		resp.CompletedDate = g.CompletedDate.Format(time.DateOnly)
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		gs  []*goal.Goal
		err error
	)

	switch r.URL.Query().Get("status") {
	case "active":
		gs, err = h.svc.Active(r.Context())
	case "completed":
		gs, err = h.svc.Completed(r.Context())
	case "":
		gs, err = h.svc.List(r.Context())
	default:
		respond.Message(w, r, http.StatusBadRequest, "status must be active or completed")
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]goalResponse, len(gs))
	for i, g := range gs {
		resp[i] = h.toResponse(g)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := req.params()
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "invalid deadline")
		return
	}

	g, err := h.svc.Add(r.Context(), p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, h.toResponse(g))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	g, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, h.toResponse(g))
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := req.params()
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "invalid deadline")
		return
	}

	g, err := h.svc.Edit(r.Context(), id, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, h.toResponse(g))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	h.changeAmount(w, r, h.svc.Contribute)
}

func (h *Handler) setAmount(w http.ResponseWriter, r *http.Request) {
	h.changeAmount(w, r, h.svc.SetAmount)
}

func (h *Handler) changeAmount(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*goal.Goal, error),
) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	g, err := apply(r.Context(), id, req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, h.toResponse(g))
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	alerts, err := h.svc.Alerts(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	writeAlerts(w, r, alerts)
}

func (h *Handler) allAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.AllAlerts(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	writeAlerts(w, r, alerts)
}

func writeAlerts(w http.ResponseWriter, r *http.Request, alerts []alert.Alert) {
	if alerts == nil {
		alerts = []alert.Alert{}
	}

	respond.JSON(w, r, http.StatusOK, alerts)
}

type summaryResponse struct {
	Total        int    `json:"total"`
	Active       int    `json:"active"`
	Completed    int    `json:"completed"`
	TargetTotal  string `json:"target_total"`
	CurrentTotal string `json:"current_total"`
	Progress     string `json:"progress"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, summaryResponse{
		Total:        sum.Total,
		Active:       sum.Active,
		Completed:    sum.Completed,
		TargetTotal:  sum.TargetTotal.StringFixed(2),
		CurrentTotal: sum.CurrentTotal.StringFixed(2),
		Progress:     sum.Progress.StringFixed(1),
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}
