// Package app assembles the services shared by every front-end.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/assistant"
	"github.com/MrJamesThe3rd/balancea/internal/backup"
	"github.com/MrJamesThe3rd/balancea/internal/budget"
	budgetstore "github.com/MrJamesThe3rd/balancea/internal/budget/store"
	"github.com/MrJamesThe3rd/balancea/internal/category"
	categorystore "github.com/MrJamesThe3rd/balancea/internal/category/store"
	"github.com/MrJamesThe3rd/balancea/internal/config"
	"github.com/MrJamesThe3rd/balancea/internal/database"
	"github.com/MrJamesThe3rd/balancea/internal/export"
	"github.com/MrJamesThe3rd/balancea/internal/goal"
	goalstore "github.com/MrJamesThe3rd/balancea/internal/goal/store"
	"github.com/MrJamesThe3rd/balancea/internal/importer"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
	"github.com/MrJamesThe3rd/balancea/internal/matching"
	matchingstore "github.com/MrJamesThe3rd/balancea/internal/matching/store"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
	txstore "github.com/MrJamesThe3rd/balancea/internal/transaction/store"
)

type App struct {
	Config       *config.Config
	Log          zerolog.Logger
	Analyzer     *analyzer.Analyzer
	Transactions *transaction.Service
	Categories   *category.Service
	Budgets      *budget.Service
	Goals        *goal.Service
	Matching     *matching.Service
	Importer     *importer.Service
	Export       *export.Service
	Backup       *backup.Service
	Chat         *assistant.Chat
	Generator    assistant.Generator

	db *sql.DB
}

// New builds every service on top of the configured storage backend. Budgets,
// goals and categories always live in JSON files; the ledger and the learned
// mappings follow the backend.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Analyzer: analyzer.New()}

	txRepo, mapRepo, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	a.Categories, err = category.NewService(ctx, categorystore.NewJSONStore(cfg.CategoriesPath(), logger.WithComponent(log, logger.ComponentCategory)))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	a.Transactions = transaction.NewService(txRepo, transaction.WithCategoryChecker(a.Categories))

	budgets, err := budgetstore.NewJSONStore(cfg.BudgetsPath(), logger.WithComponent(log, logger.ComponentBudget))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Budgets = budget.NewService(budgets, a.Transactions, budget.WithCategories(a.Categories))

	goals, err := goalstore.NewJSONStore(cfg.GoalsPath(), logger.WithComponent(log, logger.ComponentGoal))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Goals = goal.NewService(goals)
	a.Matching = matching.NewService(mapRepo)
	a.Importer = importer.NewService(a.Transactions, a.Matching, logger.WithComponent(log, logger.ComponentLedger))
	a.Export = export.NewService(a.Transactions, a.Analyzer)

	a.Backup = backup.NewService(cfg.BackupDir(),
		[]string{cfg.LedgerPath(), cfg.BudgetsPath(), cfg.GoalsPath(), cfg.CategoriesPath(), cfg.MappingsPath()},
		cfg.Backup.MaxFiles, logger.WithComponent(log, logger.ComponentBackup))

	a.Generator = assistant.NewOllamaClient(assistant.OllamaConfig{
		URL:           cfg.Assistant.URL,
		Model:         cfg.Assistant.Model,
		Timeout:       cfg.Assistant.Timeout,
		HealthTimeout: cfg.Assistant.HealthTimeout,
		Temperature:   cfg.Assistant.Temperature,
		MaxTokens:     cfg.Assistant.MaxTokens,
	}, logger.WithComponent(log, logger.ComponentAssistant))
	a.Chat = assistant.NewChat(a.Generator, a.Transactions, a.Analyzer, logger.WithComponent(log, logger.ComponentAssistant))

	return a, nil
}

func (a *App) openBackend(ctx context.Context) (transaction.Repository, matching.Repository, error) {
	switch a.Config.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.New(ctx, a.Config.ConnectionString(), a.Log)
		if err != nil {
			return nil, nil, err
		}

		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}

		a.db = db

		return txstore.New(db), matchingstore.New(db), nil
	default:
		ledger, err := txstore.NewFileStore(a.Config.LedgerPath(), logger.WithComponent(a.Log, logger.ComponentLedger))
		if err != nil {
			return nil, nil, fmt.Errorf("opening ledger: %w", err)
		}

		mappings, err := matchingstore.NewJSONStore(a.Config.MappingsPath(), logger.WithComponent(a.Log, logger.ComponentMatching))
		if err != nil {
			return nil, nil, err
		}

		return ledger, mappings, nil
	}
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
