package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/dedupe", h.dedupe)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type transactionRequest struct {
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Kind        transaction.Type `json:"kind"`
	Category    string           `json:"category"`
}

func (req transactionRequest) params() (transaction.CreateParams, error) {
	p := transaction.CreateParams{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Kind,
		Category:    req.Category,
	}

	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			return p, &transaction.ValidationError{Field: "date", Err: err}
		}

		p.Date = d
	}

	return p, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	params, err := req.params()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponseList(txs))
}

// ParseFilter reads kind, category, start_date, end_date and q from the query.
func ParseFilter(q url.Values) (transaction.ListFilter, error) {
	filter := transaction.ListFilter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}

	if s := q.Get("kind"); s != "" {
		typ, ok := transaction.ParseType(s)
		if !ok {
			return filter, errors.New("kind must be income or expense")
		}

		filter.Type = new(typ)
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, fmt.Errorf("invalid start_date %q", s)
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date %q", s)
		}

		filter.EndDate = new(t)
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	params, err := req.params()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type dedupeResponse struct {
	Removed int `json:"removed"`
}

func (h *Handler) dedupe(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RemoveDuplicates(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, dedupeResponse{Removed: n})
}
