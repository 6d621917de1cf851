// Package category serves the income and expense taxonomy.
package category

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/balancea/internal/category"
	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.all)
	r.Post("/defaults", h.restoreDefaults)
	r.Get("/{kind}", h.list)
	r.Post("/{kind}", h.add)
	r.Put("/{kind}/{name}", h.rename)
	r.Delete("/{kind}/{name}", h.remove)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) all(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.svc.All())
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	typ, ok := parseKind(w, r)
	if !ok {
		return
	}

	respond.JSON(w, r, http.StatusOK, h.svc.List(typ))
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	typ, ok := parseKind(w, r)
	if !ok {
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Add(r.Context(), typ, req.Name); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, h.svc.List(typ))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	typ, ok := parseKind(w, r)
	if !ok {
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Rename(r.Context(), typ, chi.URLParam(r, "name"), req.Name); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, h.svc.List(typ))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	typ, ok := parseKind(w, r)
	if !ok {
		return
	}

	if err := h.svc.Remove(r.Context(), typ, chi.URLParam(r, "name")); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restoreDefaults(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RestoreDefaults(r.Context()); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, h.svc.All())
}

func parseKind(w http.ResponseWriter, r *http.Request) (transaction.Type, bool) {
	typ, ok := transaction.ParseType(chi.URLParam(r, "kind"))
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "kind must be income or expense")
	}

	return typ, ok
}
