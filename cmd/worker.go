package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/eventpro/services/booking/config"
	"example.com/eventpro/services/booking/internal/database"
	"example.com/eventpro/services/booking/internal/repositories"
	"example.com/eventpro/services/booking/internal/search"
	"example.com/eventpro/services/booking/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that sweeps orphaned addresses and reindexes recent events`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	// Initialize database connections
	db, readOnlyDB, err := database.ConnectPair(cfg)
	if err != nil {
		return err
	}

	// Initialize Elasticsearch client
	var indexer services.EventIndexer
	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, reindex job will be skipped")
	} else {
		indexer = elasticClient
	}

	// Initialize repositories and services
	maintenanceRepo := repositories.NewMaintenanceRepository(db, readOnlyDB)
	catalogRepo := repositories.NewCatalogRepository(readOnlyDB)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, catalogRepo, indexer)

	// Start the scheduled maintenance jobs
	g.Go(func() error {
		log.Info().
			Dur("sweep_interval", cfg.Worker.OrphanSweepInterval).
			Dur("reindex_interval", cfg.Worker.ReindexInterval).
			Msg("Starting maintenance scheduler")

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		// Sweep addresses left behind by abandoned submissions
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Worker.OrphanSweepInterval),
			gocron.NewTask(func() {
				if err := maintenanceService.SweepOrphanAddresses(ctx, cfg.Worker.OrphanMinAge); err != nil {
					log.Error().Err(err).Msg("Failed to sweep orphaned addresses")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Reindex recent events so search catches documents missed at
		// submission time
		if indexer != nil {
			_, err = scheduler.NewJob(
				gocron.DurationJob(cfg.Worker.ReindexInterval),
				gocron.NewTask(func() {
					if err := maintenanceService.ReindexRecentEvents(ctx, cfg.Worker.ReindexBatchSize); err != nil {
						log.Error().Err(err).Msg("Failed to reindex recent events")
					}
				}),
			)
			if err != nil {
				return err
			}
		}

		// Start the scheduler
		scheduler.Start()

		// Wait for context cancellation
		<-ctx.Done()

		// Shutdown the scheduler
		return scheduler.Shutdown()
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
