package api

import (
	"context"
	"net/http"
	"time"

	"example.com/eventpro/services/booking/config"
	"example.com/eventpro/services/booking/internal/api/handlers"
	"example.com/eventpro/services/booking/internal/metrics"
	"example.com/eventpro/services/booking/internal/services"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server represents the HTTP server
type Server struct {
	config           config.Config
	router           *gin.Engine
	httpServer       *http.Server
	characterService *services.RosterService
	activityService  *services.RosterService
	bookingService   *services.BookingService
	catalogService   *services.CatalogService
	metrics          *metrics.Metrics
	tracer           tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	characterService *services.RosterService,
	activityService *services.RosterService,
	bookingService *services.BookingService,
	catalogService *services.CatalogService,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *Server {
	server := &Server{
		config:           cfg,
		characterService: characterService,
		activityService:  activityService,
		bookingService:   bookingService,
		catalogService:   catalogService,
		metrics:          metricsCollector,
		tracer:           tracer,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger())
	if s.config.CorsEnabled {
		router.Use(CORS(s.config.CorsOrigins))
	}

	// Register handlers
	bookingHandler := handlers.NewBookingHandler(s.bookingService, s.tracer, s.metrics)
	bookingHandler.RegisterRoutes(router)

	characterHandler := handlers.NewCharacterHandler(s.characterService, s.tracer, s.metrics)
	characterHandler.RegisterRoutes(router)

	activityHandler := handlers.NewActivityHandler(s.activityService, s.tracer, s.metrics)
	activityHandler.RegisterRoutes(router)

	catalogHandler := handlers.NewCatalogHandler(s.catalogService)
	catalogHandler.RegisterRoutes(router)

	metricsHandler := handlers.NewMetricsHandler(s.metrics)
	metricsHandler.RegisterRoutes(router)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")
	s.metrics.SetHealth("http", true)

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	s.metrics.SetHealth("http", false)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
