package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-management/internal/config"
	"user-management/internal/observability/logging"
	"user-management/internal/observability/metrics"
	impl "user-management/internal/service/impl"
	"user-management/internal/store"
	httptransport "user-management/internal/transport/http"
	"user-management/internal/worker"
	"user-management/pkg/db"

	"github.com/joho/godotenv"
)

const serviceName = "user-management"

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	metrics.MustRegister(serviceName)
	logger.Info("starting service")

	// 1) DB
	gdb, err := db.OpenPostgres(db.Config{
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.DBLogSQL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("database open", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close(gdb) }()

	st := store.New(gdb)
	if cfg.AutoMigrate {
		if err := st.AutoMigrate(context.Background()); err != nil {
			logger.Error("auto migrate", "error", err)
			os.Exit(1)
		}
		logger.Info("schema migrated")
	}

	// 2) Services
	pw := impl.NewPasswordServiceBcrypt(cfg.BcryptCost)
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		DefaultTTL: cfg.SessionDuration,
		SigningKey: []byte(cfg.SigningKey),
	})
	if err != nil {
		logger.Error("token service", "error", err)
		os.Exit(1)
	}
	auth := impl.NewAuthServiceImpl(st, pw, ts, cfg.SessionDuration)
	gate := impl.NewAuthGateImpl(st, ts)
	profiles := impl.NewProfileServiceImpl(st, pw)
	paths := impl.NewLearningPathServiceImpl(st)

	// 3) HTTP
	handler := httptransport.NewRouter(auth, gate, profiles, paths, httptransport.Options{
		CORSOrigins:    cfg.CORSOrigins,
		TrustProxy:     cfg.TrustProxy,
		RequestTimeout: cfg.RequestTimeout,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4) Background sweeper
	sweeper := worker.NewSweeper(auth, cfg.SweepInterval, logger.With("component", "sweeper"))
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "issuer", cfg.Issuer, "session_duration", cfg.SessionDuration.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", "error", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", "error", err)
	}
	<-sweepDone
	logger.Info("stopped")
}
