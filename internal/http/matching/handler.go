package matching

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
	"github.com/MrJamesThe3rd/balancea/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
	r.Delete("/{pattern}", h.forget)
}

type mappingResponse struct {
	Pattern  string    `json:"pattern"`
	Category string    `json:"category"`
	Created  time.Time `json:"created"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ms, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]mappingResponse, len(ms))
	for i, m := range ms {
		resp[i] = mappingResponse{Pattern: m.Pattern, Category: m.Category, Created: m.Created}
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

type suggestResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		respond.Message(w, r, http.StatusBadRequest, "description query parameter is required")
		return
	}

	category, err := h.svc.Suggest(r.Context(), desc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, suggestResponse{Description: desc, Category: category})
}

type learnRequest struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Learn(r.Context(), req.Pattern, req.Category); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Forget(r.Context(), chi.URLParam(r, "pattern")); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
