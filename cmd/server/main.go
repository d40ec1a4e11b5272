package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/casereport/internal/analysis"
	"github.com/dgallion1/casereport/internal/api"
	"github.com/dgallion1/casereport/internal/artifact"
	"github.com/dgallion1/casereport/internal/casestore"
	"github.com/dgallion1/casereport/internal/config"
	"github.com/dgallion1/casereport/internal/pipeline"
	"github.com/dgallion1/casereport/internal/report"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil {
			log.Error("invalid config file", "path", cfg.ConfigFile, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	stats := analysis.NewStats(time.Hour)
	client := analysis.NewClient(cfg.AnalysisURL, cfg.AnalysisTimeout, stats)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, client, casestore.New(), log)
	orch.Start(ctx)

	exporter := report.FromSettings(artifact.NewHelveticaMetrics(), cfg.Report, log)

	// Initialize HTTP server.
	srv := api.NewServer(orch, exporter, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop taking uploads before the job queue is closed.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		client.Close()
	}()

	log.Info("starting casereport", "port", cfg.Port, "analysis_url", cfg.AnalysisURL, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
