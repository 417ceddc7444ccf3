package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelwatch/internal/adapters/storage/memory"
	"pixelwatch/internal/adapters/storage/sqlite"
	"pixelwatch/internal/analysis"
	cfgpkg "pixelwatch/internal/infrastructure/config"
	httpapi "pixelwatch/internal/infrastructure/httpapi"
	obs "pixelwatch/internal/infrastructure/observability"
	"pixelwatch/internal/usecase"
)

func main() {
	cfg := cfgpkg.FromEnv()

	logger := obs.NewLogger(cfg.LogLevel)
	logger.Info().Str("addr", cfg.Addr).Str("version", obs.Version).Msg("starting pixelwatch")

	metrics := obs.NewMetrics()

	engine := analysis.NewEngine(analysis.Thresholds{
		Timeout:         cfg.Timeout(),
		SlowResponse:    cfg.SlowResponse(),
		DuplicateWindow: cfg.DuplicateWindow(),
	})
	store := memory.NewStore(cfg.MaxRecords)
	svc := usecase.NewRecordService(store, engine)

	deps := &httpapi.Deps{Cfg: cfg, Logger: logger, Metrics: metrics, Svc: svc, Monitor: httpapi.NewMonitorHub()}
	if cfg.ArchiveDBPath != "" {
		archive, err := sqlite.Open(context.Background(), cfg.ArchiveDBPath)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.ArchiveDBPath).Msg("archive init failed")
			os.Exit(1)
		}
		defer archive.Close()
		deps.Archive = archive
		logger.Info().Str("path", cfg.ArchiveDBPath).Msg("capture archive enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("pixelwatch stopped")
}
