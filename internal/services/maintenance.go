package services

import (
	"context"
	"time"

	"example.com/eventpro/services/booking/internal/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrSearchUnavailable is returned when no search backend is configured
var ErrSearchUnavailable = errors.New("search is unavailable")

// MaintenanceService runs the background jobs: sweeping addresses orphaned
// by the old non-transactional booking revisions, and reindexing recent
// events so search catches documents missed at submission time.
type MaintenanceService struct {
	repo        *repositories.MaintenanceRepository
	catalogRepo *repositories.CatalogRepository
	search      EventIndexer
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	repo *repositories.MaintenanceRepository,
	catalogRepo *repositories.CatalogRepository,
	search EventIndexer,
) *MaintenanceService {
	return &MaintenanceService{
		repo:        repo,
		catalogRepo: catalogRepo,
		search:      search,
	}
}

// SweepOrphanAddresses deletes addresses no event references once they are
// older than minAge
func (s *MaintenanceService) SweepOrphanAddresses(ctx context.Context, minAge time.Duration) error {
	cutoff := time.Now().Add(-minAge)

	ids, err := s.repo.OrphanAddressIDs(ctx, cutoff)
	if err != nil {
		return errors.Wrap(err, "failed to find orphaned addresses")
	}
	if len(ids) == 0 {
		return nil
	}

	count, err := s.repo.DeleteAddresses(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "failed to delete orphaned addresses")
	}

	log.Info().Int64("count", count).Msg("Swept orphaned addresses")
	return nil
}

// ReindexRecentEvents pushes the latest events into the search index
func (s *MaintenanceService) ReindexRecentEvents(ctx context.Context, batchSize int) error {
	if s.search == nil {
		return ErrSearchUnavailable
	}

	events, err := s.repo.RecentEvents(ctx, batchSize)
	if err != nil {
		return errors.Wrap(err, "failed to list recent events")
	}

	var indexed int
	for i := range events {
		event := &events[i]

		address, err := s.catalogRepo.AddressByID(ctx, event.AddressID)
		if err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Msg("Skipping event with missing address")
			continue
		}

		pkg, err := s.catalogRepo.PackageByID(ctx, event.PackageID)
		if err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Msg("Skipping event with missing package")
			continue
		}

		if err := s.search.IndexEvent(ctx, event, address, pkg.Name); err != nil {
			log.Error().Err(err).Uint("event_id", event.ID).Msg("Failed to reindex event")
			continue
		}
		indexed++
	}

	log.Info().Int("indexed", indexed).Int("total", len(events)).Msg("Reindex pass complete")
	return nil
}
