package handlers

import (
	"net/http"

	"example.com/eventpro/services/booking/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CatalogHandler serves the raw listing endpoints for reference and join
// tables
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the handler's routes
func (h *CatalogHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/event", h.listing("events", func(c *gin.Context) (interface{}, error) {
		return h.service.Events(c)
	}))
	router.GET("/event/search", h.SearchEvents)
	router.GET("/address", h.listing("addresses", func(c *gin.Context) (interface{}, error) {
		return h.service.Addresses(c)
	}))
	router.GET("/package", h.listing("packages", func(c *gin.Context) (interface{}, error) {
		return h.service.Packages(c)
	}))
	router.GET("/status", h.listing("statuses", func(c *gin.Context) (interface{}, error) {
		return h.service.Statuses(c)
	}))
	router.GET("/charactersAtEvent", h.listing("character links", func(c *gin.Context) (interface{}, error) {
		return h.service.CharacterLinks(c)
	}))
	router.GET("/activitiesForEvent", h.listing("activity links", func(c *gin.Context) (interface{}, error) {
		return h.service.ActivityLinks(c)
	}))
}

func (h *CatalogHandler) listing(name string, load func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := load(c)
		if err != nil {
			log.Error().Err(err).Str("listing", name).Msg("Failed to load listing")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Sorry something broke"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// SearchEvents runs a free-text search over indexed events
func (h *CatalogHandler) SearchEvents(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Query parameter 'q' is required."})
		return
	}

	docs, err := h.service.SearchEvents(c, query)
	if err != nil {
		if errors.Is(err, services.ErrSearchUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Search is unavailable."})
			return
		}
		log.Error().Err(err).Msg("Event search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Sorry something broke"})
		return
	}

	c.JSON(http.StatusOK, docs)
}
