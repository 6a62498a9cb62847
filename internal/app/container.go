package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/rental-booking/internal/api"
	"github.com/nekogravitycat/rental-booking/internal/auth"
	"github.com/nekogravitycat/rental-booking/internal/booking"
	"github.com/nekogravitycat/rental-booking/internal/event"
	"github.com/nekogravitycat/rental-booking/internal/listing"
	"github.com/nekogravitycat/rental-booking/internal/pkg/clock"
	"github.com/nekogravitycat/rental-booking/internal/pkg/retry"
)

const listingCacheSize = 10_000

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	DBPool       *pgxpool.Pool
	Logger       *slog.Logger

	JWTSecret string
	JWTTTL    time.Duration
	JWTIssuer string

	CancellationWindow time.Duration
	ReadRetry          retry.Policy

	// ListingRepo overrides the Postgres listing store.
	ListingRepo     listing.Repository
	ListingCacheTTL time.Duration

	// Publisher defaults to logging events.
	Publisher event.Publisher
	// Clock defaults to the system clock.
	Clock clock.Clock
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	ListingService listing.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = event.NewLogPublisher(log)
	}

	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)

	// Booking Module
	// The directory is bound to the listing service below; the two modules
	// depend on each other.
	directory := &listingDirectory{}
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, directory, publisher, clk, log, booking.Options{
		CancellationWindow: cfg.CancellationWindow,
		ReadRetry:          cfg.ReadRetry,
	})

	// Listing Module
	listingRepo := cfg.ListingRepo
	if listingRepo == nil {
		listingRepo = listing.NewPgxRepository(cfg.DBPool)
	}
	opts := []listing.Option{listing.WithReservationChecker(bookingService)}
	if cfg.ListingCacheTTL > 0 {
		opts = append(opts, listing.WithCache(cfg.ListingCacheTTL, listingCacheSize))
	}
	listingService := listing.NewService(listingRepo, log, opts...)
	directory.listings = listingService

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         log,
		JWTManager:     jwtManager,
		ListingService: listingService,
		BookingService: bookingService,
		Readiness:      pinger(cfg.DBPool),
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		ListingService: listingService,
		BookingService: bookingService,
	}
}

// pinger avoids handing the router a typed nil pool.
func pinger(pool *pgxpool.Pool) api.Pinger {
	if pool == nil {
		return nil
	}
	return pool
}
