package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"powerrush_backend/internal/config"
	"powerrush_backend/internal/migrations"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	ServiceProvider *ServiceProvider
}

func NewApp() *App {
	return &App{}
}

func (s *App) initServiceProvider() {
	s.ServiceProvider = newServiceProvider()
}

func (s *App) Run() error {
	err := config.Load(".env")
	if err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
	s.initServiceProvider()
	sp := s.ServiceProvider

	logger := sp.Logger()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.Up(sp.PgConfig().DSN()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if err := sp.AdminService(ctx).Init(ctx); err != nil {
		return fmt.Errorf("init settings: %w", err)
	}
	if err := sp.AuthService(ctx).Init(ctx); err != nil {
		return fmt.Errorf("init admin password: %w", err)
	}
	if err := sp.GameService(ctx).SyncPrizeGauge(ctx); err != nil {
		logger.Warn("prize gauge sync failed", zap.Error(err))
	}

	sched := sp.Scheduler(ctx)
	sched.Start()

	srv := &http.Server{
		Addr:              sp.HTTPCfg().Address(),
		Handler:           sp.Router(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("address", srv.Addr), zap.Strings("jobs", sched.Jobs()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}

	if serr := sched.Shutdown(); serr != nil {
		logger.Warn("scheduler shutdown failed", zap.Error(serr))
	}
	sp.GameService(ctx).Shutdown()
	sp.DBClient(ctx).Close()

	return err
}
