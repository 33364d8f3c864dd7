package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pancak3lullz/SECurityTr8Ker/app/api"
	"github.com/pancak3lullz/SECurityTr8Ker/app/cfg"
	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
	"github.com/pancak3lullz/SECurityTr8Ker/app/metrics"
	"github.com/pancak3lullz/SECurityTr8Ker/app/monitor"
	"github.com/pancak3lullz/SECurityTr8Ker/app/notify"
	"github.com/pancak3lullz/SECurityTr8Ker/app/sec"
	"github.com/pancak3lullz/SECurityTr8Ker/app/store"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appConfig.Debug)

	slog.Info("Starting SECurityTr8Ker", "version", appConfig.Version)

	terms, err := filing.LoadTerms(appConfig.TermsFile)
	if err != nil {
		slog.Error("Failed to load search terms", "error", err)
		os.Exit(1)
	}

	appMetrics := metrics.New()

	secClient := sec.NewClient(appConfig, appMetrics)
	extractor := filing.NewSectionExtractor()
	analyzer := filing.NewAnalyzer(extractor, terms)
	disclosureStore := store.New(appConfig.DisclosuresFile)
	notifyService := notify.NewService(appConfig)

	mon := monitor.New(appConfig, secClient, analyzer, disclosureStore, notifyService, appMetrics)
	scheduler := monitor.NewScheduler(appConfig, mon, notifyService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// HTTP status server
	handler := api.NewHandler(disclosureStore, mon, scheduler, secClient, appConfig.Version)
	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("SECurityTr8Ker started",
		"check_interval", appConfig.CheckInterval,
		"business_hours_only", appConfig.BusinessHoursOnly,
		"channels", notifyService.ActiveChannels())

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	cancel()
	<-schedulerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
