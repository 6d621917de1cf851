package export

import (
	"archive/zip"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/export"
	txhttp "github.com/MrJamesThe3rd/balancea/internal/http/transaction"
	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/csv", h.csv)
	r.Get("/report", h.report)
	r.Get("/report.txt", h.reportText)
	r.Get("/archive", h.archive)
}

type categoryDTO struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type entryDTO struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
}

type reportResponse struct {
	Generated   time.Time            `json:"generated"`
	Count       int                  `json:"count"`
	Income      string               `json:"income"`
	Expense     string               `json:"expense"`
	Balance     string               `json:"balance"`
	SavingsRate string               `json:"savings_rate"`
	Health      analyzer.HealthScore `json:"health"`
	Categories  []categoryDTO        `json:"categories"`
	Latest      []entryDTO           `json:"latest"`
	TopExpenses []entryDTO           `json:"top_expenses"`
}

func toEntries(txs []*transaction.Transaction) []entryDTO {
	out := make([]entryDTO, len(txs))
	for i, t := range txs {
		out[i] = entryDTO{
			Date:        t.Date.Format(time.DateOnly),
			Description: t.Description,
			Kind:        string(t.Type),
			Category:    t.Category,
			Amount:      t.Amount.StringFixed(2),
		}
	}

	return out
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	filter, err := txhttp.ParseFilter(r.URL.Query())
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", h.attachment("transactions", "csv"))

	if _, err := h.svc.WriteCSV(r.Context(), w, filter); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to write csv export")
	}
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}

	resp := reportResponse{
		Generated:   rep.Generated,
		Count:       rep.Count,
		Income:      rep.Income.StringFixed(2),
		Expense:     rep.Expense.StringFixed(2),
		Balance:     rep.Balance.StringFixed(2),
		SavingsRate: rep.SavingsRate.StringFixed(1),
		Health:      rep.Health,
		Categories:  make([]categoryDTO, len(rep.Categories)),
		Latest:      toEntries(rep.Latest),
		TopExpenses: toEntries(rep.TopExpenses),
	}

	for i, ct := range rep.Categories {
		resp.Categories[i] = categoryDTO{Category: ct.Category, Amount: ct.Amount.StringFixed(2)}
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) reportText(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if err := rep.WriteTo(w); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to write report")
	}
}

// archive bundles the CSV export and the text report into one zip file.
func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}

	filter, _ := txhttp.ParseFilter(r.URL.Query())

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", h.attachment("balancea", "zip"))

	zw := zip.NewWriter(w)
	defer zw.Close()

	log := logger.FromContext(r.Context())

	f, err := zw.Create("transactions.csv")
	if err == nil {
		_, err = h.svc.WriteCSV(r.Context(), f, filter)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to add csv to archive")
		return
	}

	f, err = zw.Create("report.txt")
	if err == nil {
		err = rep.WriteTo(f)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to add report to archive")
	}
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (*export.Report, bool) {
	filter, err := txhttp.ParseFilter(r.URL.Query())
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}

	rep, err := h.svc.Report(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return rep, true
}

func (h *Handler) attachment(name, ext string) string {
	return fmt.Sprintf("attachment; filename=\"%s_%s.%s\"", name, h.now().Format("20060102"), ext)
}
