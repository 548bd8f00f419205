package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sameday/cmd"
	apihttp "sameday/internal/adapters/in/http"
	"sameday/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(configs.Log.Mode, logger.Options{
		Dir:        configs.Log.Dir,
		Filename:   configs.Log.Filename,
		MaxSizeMB:  configs.Log.MaxSizeMB,
		MaxBackups: configs.Log.MaxBackups,
		MaxAgeDays: configs.Log.MaxAgeDays,
		Compress:   configs.Log.Compress,
	})
	defer func() { _ = log.Sync() }()

	db, err := cmd.OpenDatabase(configs.Database, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	app, err := cmd.NewCompositionRoot(configs, db, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("closing connections", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobManager, err := app.CreateJobManager()
	if err != nil {
		return err
	}
	if jobManager != nil {
		jobManager.StartAll()
		defer jobManager.StopAll()
	}

	if worker := app.CreateQueueServer(); worker != nil {
		if err := worker.Start(); err != nil {
			return fmt.Errorf("start queue worker: %w", err)
		}
		defer worker.Shutdown()
	}

	return startWebServer(ctx, app, configs, log)
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, log *zap.Logger) error {
	e, err := apihttp.NewEcho(app.CreateHTTPServer(), configs.Log.Level)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.Int("port", configs.HTTP.Port))
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%d", configs.HTTP.Port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.HTTP.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
