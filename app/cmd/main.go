package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"circuitflow/app/server"
	"circuitflow/config"
	"circuitflow/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("error loading configuration: ", err)
	}
	logger := config.NewLogger(cfg.Log, os.Stdout)

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Error("error connecting to document store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	s := server.NewServer(cfg.Server, db)

	errch := make(chan error, 1)
	go func() {
		errch <- s.Run()
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-sigch:
		logger.Info("received shutdown signal, shutting down server...")
	case err := <-errch:
		logger.Error("error running server", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping server", "error", err)
	}
	if err := db.Close(); err != nil {
		slog.Warn("error closing document store", "error", err)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
