// Package assistant serves the financial chat.
package assistant

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/balancea/internal/assistant"
	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
)

type Handler struct {
	chat *assistant.Chat
}

func NewHandler(chat *assistant.Chat) *Handler {
	return &Handler{chat: chat}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/chat", h.reply)
	r.Get("/health", h.health)
	r.Get("/history", h.history)
	r.Delete("/history", h.clearHistory)
	r.Get("/commands", h.commands)
}

type chatRequest struct {
	Message string `json:"message"`
}

// reply always answers 200 for model failures; the Reply carries the source
// and hint so clients can render them.
func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		respond.Message(w, r, http.StatusBadRequest, "message is required")
		return
	}

	respond.JSON(w, r, http.StatusOK, h.chat.Reply(r.Context(), req.Message))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	rep := h.chat.Health(r.Context())

	status := http.StatusOK
	if !rep.OK {
		status = http.StatusServiceUnavailable
	}

	respond.JSON(w, r, status, rep)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	msgs := h.chat.History()
	if msgs == nil {
		msgs = []assistant.Message{}
	}

	respond.JSON(w, r, http.StatusOK, msgs)
}

func (h *Handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	h.chat.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) commands(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, assistant.Commands())
}
