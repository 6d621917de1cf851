package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/balancea/internal/app"
	"github.com/MrJamesThe3rd/balancea/internal/config"
	balanceaHttp "github.com/MrJamesThe3rd/balancea/internal/http"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise services")
	}
	defer a.Close()

	router := balanceaHttp.New(logger.WithComponent(log, logger.ComponentHTTP), balanceaHttp.NewHandlers(a))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		// The chat endpoint waits on the model, so writes get the assistant timeout on top.
		WriteTimeout: cfg.Server.Timeout + cfg.Assistant.Timeout,
	}

	go func() {
		<-ctx.Done()

		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("backend", cfg.Storage.Backend).Msg("starting server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server failed")
		return
	}
}
