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

	"github.com/nekogravitycat/rental-booking/internal/app"
	"github.com/nekogravitycat/rental-booking/internal/config"
	"github.com/nekogravitycat/rental-booking/internal/db"
	"github.com/nekogravitycat/rental-booking/internal/event"
	"github.com/nekogravitycat/rental-booking/internal/listing"
	"github.com/nekogravitycat/rental-booking/internal/pkg/logger"
	"github.com/nekogravitycat/rental-booking/internal/pkg/retry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(log)

	// Connect DB
	pool, err := db.NewPool(ctx, db.PoolConfig{
		DSN:              cfg.DBDSN,
		MaxConns:         cfg.DBMaxConns,
		StatementTimeout: cfg.DBStatementTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, log); err != nil {
		return err
	}

	// Listing store
	var listingRepo listing.Repository
	if cfg.ListingStore == config.ListingStoreMongo {
		mdb, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mdb.Client().Disconnect(disconnectCtx)
		}()

		if err := listing.EnsureIndexes(ctx, mdb); err != nil {
			return err
		}
		listingRepo = listing.NewMongoRepository(mdb)
		log.Info("listings stored in mongo", slog.String("database", cfg.MongoDB))
	}

	// Booking events
	var publisher event.Publisher = event.NewLogPublisher(log)
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kp.Close()
		publisher = kp
		log.Info("publishing booking events to kafka", slog.String("topic", cfg.KafkaTopic))
	}

	readRetry := retry.DefaultPolicy
	readRetry.Attempts = cfg.ReadRetryAttempts

	container := app.NewContainer(app.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		DBPool:             pool,
		Logger:             log,
		JWTSecret:          cfg.JWTSecret,
		JWTTTL:             cfg.JWTAccessTokenTTL,
		JWTIssuer:          cfg.JWTIssuer,
		CancellationWindow: cfg.CancellationWindow,
		ReadRetry:          readRetry,
		ListingRepo:        listingRepo,
		ListingCacheTTL:    cfg.ListingCacheTTL,
		Publisher:          publisher,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server running", slog.String("addr", cfg.HTTPAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for Ctrl+C or a listener failure
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", slog.Any("err", err))
	}

	log.Info("server exited gracefully")
	return nil
}
