package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/eventpro/services/booking/config"
	"example.com/eventpro/services/booking/internal/api"
	"example.com/eventpro/services/booking/internal/cache"
	"example.com/eventpro/services/booking/internal/database"
	"example.com/eventpro/services/booking/internal/messaging"
	"example.com/eventpro/services/booking/internal/metrics"
	"example.com/eventpro/services/booking/internal/repositories"
	"example.com/eventpro/services/booking/internal/search"
	"example.com/eventpro/services/booking/internal/services"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server to handle booking submissions and roster management`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize database connections
	db, readOnlyDB, err := database.ConnectPair(cfg)
	if err != nil {
		return err
	}

	// Initialize cache
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	// Initialize tracer
	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = tracing.Disabled()
	}

	// Initialize Elasticsearch client
	var indexer services.EventIndexer
	var searcher services.EventSearcher
	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	} else {
		indexer = elasticClient
		searcher = elasticClient
	}

	// Initialize Azure Service Bus client
	var notifier services.Notifier
	busClient, err := messaging.NewServiceBusClient(cfg.Azure)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Service Bus client, continuing without notifications")
	} else {
		notifier = busClient
		defer func() {
			if err := busClient.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Service Bus client")
			}
		}()
	}

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize repositories
	characterRepo := repositories.NewCharacterRepository(db, readOnlyDB)
	activityRepo := repositories.NewActivityRepository(db, readOnlyDB)
	catalogRepo := repositories.NewCatalogRepository(readOnlyDB)

	// Initialize services
	characterService := services.NewRosterService(characterRepo, "character")
	activityService := services.NewRosterService(activityRepo, "activity")
	bookingService := services.NewBookingService(db, characterRepo, activityRepo, indexer, notifier, tracer)
	catalogService := services.NewCatalogService(catalogRepo, redisCache, searcher)

	// Initialize and start the server
	server := api.NewServer(cfg, characterService, activityService,
		bookingService, catalogService, metricsCollector, tracer)

	// Start the server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Shutdown the server
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	tracer.Close()
	log.Info().Msg("Shutting down API server")
	return nil
}
