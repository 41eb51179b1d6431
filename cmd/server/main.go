package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/booking"
	"github.com/Simplici0/mountbook/internal/config"
	"github.com/Simplici0/mountbook/internal/db"
	"github.com/Simplici0/mountbook/internal/logging"
	"github.com/Simplici0/mountbook/internal/migrations"
	"github.com/Simplici0/mountbook/internal/pricing"
	"github.com/Simplici0/mountbook/internal/seed"
	"github.com/Simplici0/mountbook/internal/store"
)

type server struct {
	auth         *authService
	store        *store.Store
	bookings     *booking.Service
	evaluator    *availability.Evaluator
	slotInterval time.Duration
	limiter      *ipLimiter
	logger       *zap.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, cfg.MigrationsDir); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	if err := runSeed(ctx, database, cfg, logger); err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}

	srv, err := newServer(cfg, database, logger)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("timezone", cfg.Timezone))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newServer(cfg config.Config, database *sql.DB, logger *zap.Logger) (*server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st := store.New(database)
	evaluator := availability.New(st,
		availability.WithLocation(loc),
		availability.WithBuffer(cfg.BookingBuffer()),
	)

	return &server{
		auth:         newAuthService(database, cfg.SessionSecret, !cfg.IsDev()),
		store:        st,
		bookings:     booking.NewService(st, st, evaluator, logger.Named("booking")),
		evaluator:    evaluator,
		slotInterval: cfg.SlotInterval(),
		limiter:      newIPLimiter(cfg.BookingRatePerMinute),
		logger:       logger,
	}, nil
}

func runSeed(ctx context.Context, database *sql.DB, cfg config.Config, logger *zap.Logger) error {
	seedCfg := seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}
	if cfg.PriceTablePath != "" {
		raw, err := os.ReadFile(cfg.PriceTablePath)
		if err != nil {
			return fmt.Errorf("read PRICE_TABLE_PATH: %w", err)
		}
		table, err := pricing.ParseTable(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", cfg.PriceTablePath, err)
		}
		seedCfg.PriceTable = &table
	}

	stats, err := seed.Run(ctx, database, seedCfg)
	if err != nil {
		return err
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))
	return nil
}
