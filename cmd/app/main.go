package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftshop/internal/app"
	"giftshop/internal/infra"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", infra.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	// 1. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap(*configPath)
	if err := bootstrap.Initialize(ctx); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	// 3. Pprof Server (for performance profiling)
	if cfg.Server.PprofAddr != "" {
		go func() {
			slog.Info("🕵️ Pprof server started", slog.String("addr", cfg.Server.PprofAddr))
			if err := http.ListenAndServe(cfg.Server.PprofAddr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	// 4. Sequencer in its own goroutine (the storefront state loop)
	seqCtx, stopSeq := context.WithCancel(context.Background())
	defer stopSeq()
	go bootstrap.Sequencer.Run(seqCtx)
	slog.InfoContext(ctx, "✅ Sequencer started")

	// 5. Background asset preparation
	go bootstrap.PrepareAssets(ctx)

	// 6. HTTP server
	srv := bootstrap.HTTPServer()
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("✨ Gift Shop listening", slog.String("addr", srv.Addr), slog.String("version", cfg.App.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			slog.Error("❌ HTTP server failed", slog.Any("error", err))
		}
	}

	slog.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	// Shutdown does not track hijacked websocket connections
	bootstrap.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", slog.Any("error", err))
	}

	// Drain in-flight events before closing the journal
	stopSeq()
	select {
	case <-bootstrap.Sequencer.Done():
	case <-shutdownCtx.Done():
		slog.Warn("Sequencer did not stop in time")
	}
}
