package services

import (
	"context"
	"time"

	"example.com/eventpro/services/booking/internal/cache"
	"example.com/eventpro/services/booking/internal/models"
	"example.com/eventpro/services/booking/internal/repositories"

	"github.com/rs/zerolog/log"
)

// catalogCacheTTL bounds staleness of the cached reference listings.
// Packages and statuses change rarely; the name registries are never cached.
const catalogCacheTTL = 5 * time.Minute

// EventSearcher runs a free-text search over indexed events
type EventSearcher interface {
	SearchEvents(ctx context.Context, query string) ([]map[string]interface{}, error)
}

// CatalogService serves the raw listing endpoints
type CatalogService struct {
	repo     *repositories.CatalogRepository
	cache    *cache.RedisCache
	searcher EventSearcher
}

// NewCatalogService creates a new catalog service. cache and searcher may be
// nil when those integrations are unavailable.
func NewCatalogService(repo *repositories.CatalogRepository, redisCache *cache.RedisCache, searcher EventSearcher) *CatalogService {
	return &CatalogService{repo: repo, cache: redisCache, searcher: searcher}
}

// Events returns every event
func (s *CatalogService) Events(ctx context.Context) ([]models.Event, error) {
	return s.repo.Events(ctx)
}

// Addresses returns every address
func (s *CatalogService) Addresses(ctx context.Context) ([]models.Address, error) {
	return s.repo.Addresses(ctx)
}

// Packages returns every package, served from cache when possible
func (s *CatalogService) Packages(ctx context.Context) ([]models.Package, error) {
	if s.cache != nil {
		var packages []models.Package
		if err := s.cache.Get(ctx, cache.PackagesCacheKey(), &packages); err == nil {
			return packages, nil
		}
	}

	packages, err := s.repo.Packages(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.PackagesCacheKey(), packages, catalogCacheTTL); err != nil {
			log.Debug().Err(err).Msg("Failed to cache package listing")
		}
	}
	return packages, nil
}

// Statuses returns every status, served from cache when possible
func (s *CatalogService) Statuses(ctx context.Context) ([]models.Status, error) {
	if s.cache != nil {
		var statuses []models.Status
		if err := s.cache.Get(ctx, cache.StatusesCacheKey(), &statuses); err == nil {
			return statuses, nil
		}
	}

	statuses, err := s.repo.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.StatusesCacheKey(), statuses, catalogCacheTTL); err != nil {
			log.Debug().Err(err).Msg("Failed to cache status listing")
		}
	}
	return statuses, nil
}

// CharacterLinks returns every characters-at-event row
func (s *CatalogService) CharacterLinks(ctx context.Context) ([]models.CharactersAtEvent, error) {
	return s.repo.CharacterLinks(ctx)
}

// ActivityLinks returns every activities-for-event row
func (s *CatalogService) ActivityLinks(ctx context.Context) ([]models.ActivitiesForEvent, error) {
	return s.repo.ActivityLinks(ctx)
}

// SearchEvents searches indexed events
func (s *CatalogService) SearchEvents(ctx context.Context, query string) ([]map[string]interface{}, error) {
	if s.searcher == nil {
		return nil, ErrSearchUnavailable
	}
	return s.searcher.SearchEvents(ctx, query)
}
