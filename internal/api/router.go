package api

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/nekogravitycat/rental-booking/internal/auth"
	"github.com/nekogravitycat/rental-booking/internal/booking"
	bookingHttp "github.com/nekogravitycat/rental-booking/internal/booking/http"
	"github.com/nekogravitycat/rental-booking/internal/listing"
	listingHttp "github.com/nekogravitycat/rental-booking/internal/listing/http"
)

// Config carries what the router needs to assemble middleware and routes.
type Config struct {
	IsProduction   bool
	ProdOrigins    []string
	Logger         *slog.Logger
	JWTManager     *auth.JWTManager
	ListingService listing.Service
	BookingService booking.Service
	Readiness      Pinger
}

// devOrigins are allowed outside production.
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8081", // Swagger
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request ID, logging, recovery, CORS, auth) and
// registers routes for every module.
func NewRouter(cfg Config) *gin.Engine {
	// Reject JSON bodies carrying fields the request structs do not declare.
	binding.EnableDecoderDisallowUnknownFields = true

	r := gin.New()

	// Global Middleware:
	// - RequestID: tags every request and log line with X-Request-ID.
	// - RequestLogger: one structured log line per request.
	// - Recovery: captures panics and returns a 500.
	r.Use(RequestID(), RequestLogger(cfg.Logger), gin.Recovery())

	origins := devOrigins
	if cfg.IsProduction {
		origins = cfg.ProdOrigins
	}
	// No configured origins means same-origin only.
	if len(origins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = origins
		config.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", requestIDHeader}
		config.ExposeHeaders = []string{requestIDHeader}
		r.Use(cors.New(config))
	}

	health := &healthHandler{readiness: cfg.Readiness}
	r.GET("/livez", health.Live)
	r.GET("/readyz", health.Ready)

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	listingHandler := listingHttp.NewHandler(cfg.ListingService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	v1 := r.Group("/v1")
	{
		listingHttp.RegisterRoutes(v1, listingHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}
