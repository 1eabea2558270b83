package cmd

import (
	"example.com/eventpro/services/booking/config"
	"example.com/eventpro/services/booking/internal/database"
	"example.com/eventpro/services/booking/internal/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var migrateSeed bool

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Runs database migrations to ensure the database schema
is up-to-date. This is useful for CI/CD pipelines or initial setup.`,
	RunE: runMigration,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "seed default statuses and packages after migrating")
	rootCmd.AddCommand(migrateCmd)
}

// runMigration executes the database migrations
func runMigration(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Connect to the write database
	log.Info().Msg("Connecting to database")
	db, err := database.Connect(cfg.DB.DSN, cfg.DB)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}

	// Run database migrations
	log.Info().Msg("Running database migrations")
	if err := models.SetupModels(db); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	if migrateSeed {
		log.Info().Msg("Seeding reference data")
		if err := seedReferenceData(db); err != nil {
			return errors.Wrap(err, "failed to seed reference data")
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// seedReferenceData inserts the statuses and packages a fresh install needs.
// New bookings always start in status id 1, so that row must exist before
// the API takes traffic.
func seedReferenceData(db *gorm.DB) error {
	statuses := []models.Status{
		{ID: 1, Name: "pending"},
		{ID: 2, Name: "confirmed"},
		{ID: 3, Name: "completed"},
		{ID: 4, Name: "cancelled"},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&statuses).Error; err != nil {
		return errors.Wrap(err, "failed to seed statuses")
	}

	packages := []models.Package{
		{Name: "Standard"},
		{Name: "Deluxe"},
		{Name: "Premium"},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&packages).Error; err != nil {
		return errors.Wrap(err, "failed to seed packages")
	}

	return nil
}
