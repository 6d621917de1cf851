package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/app"
	"github.com/MrJamesThe3rd/balancea/internal/http/analysis"
	"github.com/MrJamesThe3rd/balancea/internal/http/assistant"
	"github.com/MrJamesThe3rd/balancea/internal/http/budget"
	"github.com/MrJamesThe3rd/balancea/internal/http/category"
	"github.com/MrJamesThe3rd/balancea/internal/http/export"
	"github.com/MrJamesThe3rd/balancea/internal/http/goal"
	"github.com/MrJamesThe3rd/balancea/internal/http/importcsv"
	"github.com/MrJamesThe3rd/balancea/internal/http/matching"
	"github.com/MrJamesThe3rd/balancea/internal/http/middleware"
	"github.com/MrJamesThe3rd/balancea/internal/http/transaction"
)

type Handlers struct {
	Transactions *transaction.Handler
	Analysis     *analysis.Handler
	Budgets      *budget.Handler
	Goals        *goal.Handler
	Categories   *category.Handler
	Mappings     *matching.Handler
	Import       *importcsv.Handler
	Export       *export.Handler
	Assistant    *assistant.Handler
}

// NewHandlers builds every handler on top of the application services.
func NewHandlers(a *app.App) Handlers {
	return Handlers{
		Transactions: transaction.NewHandler(a.Transactions),
		Analysis:     analysis.NewHandler(a.Transactions, a.Analyzer),
		Budgets:      budget.NewHandler(a.Budgets),
		Goals:        goal.NewHandler(a.Goals),
		Categories:   category.NewHandler(a.Categories),
		Mappings:     matching.NewHandler(a.Matching),
		Import:       importcsv.NewHandler(a.Importer),
		Export:       export.NewHandler(a.Export),
		Assistant:    assistant.NewHandler(a.Chat),
	}
}

func New(log zerolog.Logger, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(chimw.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/analysis", h.Analysis.Routes)

		r.Route("/budgets", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Budgets.Routes(r)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Goals.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/mappings", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Mappings.Routes(r)
		})

		r.Route("/import", h.Import.Routes)
		r.Route("/export", h.Export.Routes)

		r.Route("/assistant", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Assistant.Routes(r)
		})
	})

	return router
}
