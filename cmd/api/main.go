package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "review_aggregator/internal/adapters/http_server"
	"review_aggregator/internal/adapters/observability"
	"review_aggregator/internal/shared"
	"review_aggregator/internal/wiring"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx := context.Background()
	deps, err := wiring.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("dependency setup failed")
	}

	// http
	srv := server.New(cfg.RequestTimeout, cfg.AllowedOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	h := &server.Handlers{Agg: deps.Aggregator, Persist: deps.Persister}
	if deps.Snapshots != nil {
		h.Batches = deps.Snapshots
	}
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PersistTimeout+5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// pending sheet writes are flushed before exit
	if err := deps.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("dependency shutdown failed")
	}
	log.Info().Msg("stopped")
}
