package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres"

	"github.com/labstack/gommon/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := newLogger(configs.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, configs, logger); err != nil {
		log.Fatalf("dispatch stopped: %v", err)
	}
}

func run(ctx context.Context, configs cmd.Config, logger *slog.Logger) error {
	gormDB, err := gorm.Open(pgdriver.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err = gormDB.WithContext(ctx).AutoMigrate(postgres.Models()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDB, logger)
	if err != nil {
		return err
	}
	if err = app.SeedOperators(ctx); err != nil {
		return err
	}

	e, err := httpadapter.NewRouter(ctx, httpadapter.NewServer(app.CreateHTTPHandlers(), logger), httpadapter.RouterConfig{
		SweepSecret: configs.SweepSecret,
		Gatherer:    app.MetricsGatherer(),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", configs.HTTPPort)
		serverErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()

	select {
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
