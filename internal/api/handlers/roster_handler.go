package handlers

import (
	"context"
	"fmt"
	"net/http"

	"example.com/eventpro/services/booking/internal/metrics"
	"example.com/eventpro/services/booking/internal/models"
	"example.com/eventpro/services/booking/internal/services"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RosterService is the roster business logic the handler depends on
type RosterService interface {
	ListActive(ctx context.Context) ([]models.RosterRecord, error)
	ListAll(ctx context.Context) ([]models.RosterRecord, error)
	CreateBatch(ctx context.Context, records []models.RosterRecord) (int64, []string, error)
	DeleteBatch(ctx context.Context, records []models.RosterRecord) (int64, []string, error)
	Update(ctx context.Context, id uint, name *string, isActive *bool) (*models.RosterRecord, error)
	SetActive(ctx context.Context, names []string, active bool) (int64, error)
}

// RosterHandler serves the CRUD endpoints for one roster entity type.
// The same handler code backs /character and /activity; only the labels
// differ, so each entity's responses always carry its own noun.
type RosterHandler struct {
	service RosterService
	tracer  tracing.Tracer
	metrics *metrics.Metrics

	singular   string // path segment and log label, e.g. "character"
	plural     string // response list key, e.g. "characters"
	titled     string // message prefix, e.g. "Character"
	invalidKey string // e.g. "invalidCharacters"
	historyKey string // e.g. "charactersWithHistory"
	updatedKey string // e.g. "updatedCharacter"
}

// NewCharacterHandler creates the handler behind /character
func NewCharacterHandler(service RosterService, tracer tracing.Tracer, m *metrics.Metrics) *RosterHandler {
	return &RosterHandler{
		service:    service,
		tracer:     tracer,
		metrics:    m,
		singular:   "character",
		plural:     "characters",
		titled:     "Character",
		invalidKey: "invalidCharacters",
		historyKey: "charactersWithHistory",
		updatedKey: "updatedCharacter",
	}
}

// NewActivityHandler creates the handler behind /activity
func NewActivityHandler(service RosterService, tracer tracing.Tracer, m *metrics.Metrics) *RosterHandler {
	return &RosterHandler{
		service:    service,
		tracer:     tracer,
		metrics:    m,
		singular:   "activity",
		plural:     "activities",
		titled:     "Activity",
		invalidKey: "invalidActivities",
		historyKey: "activitiesWithHistory",
		updatedKey: "updatedActivity",
	}
}

// RosterEntryRequest is one submitted roster record
type RosterEntryRequest struct {
	ID       uint   `json:"id"`
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"isActive" binding:"required"`
}

// RosterUpdateRequest is a single partial update
type RosterUpdateRequest struct {
	ID       uint    `json:"id" binding:"required"`
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

// RegisterRoutes registers the handler's routes
func (h *RosterHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/" + h.singular)
	group.GET("", h.ListActive)
	group.GET("/all", h.ListAll)
	group.POST("", h.CreateBatch)
	group.DELETE("", h.DeleteBatch)
	group.PATCH("", h.Update)
	group.PATCH("/:activateOrDeactivate", h.SetActive)
}

// ListActive returns all active records
func (h *RosterHandler) ListActive(c *gin.Context) {
	records, err := h.service.ListActive(c)
	if err != nil {
		log.Error().Err(err).Str("entity", h.singular).Msg("Failed to list active records")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Sorry something broke"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListAll returns every record
func (h *RosterHandler) ListAll(c *gin.Context) {
	records, err := h.service.ListAll(c)
	if err != nil {
		log.Error().Err(err).Str("entity", h.singular).Msg("Failed to list records")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Sorry something broke"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateBatch creates all submitted records, or none
func (h *RosterHandler) CreateBatch(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-" + h.singular + "-batch-create")
	defer h.tracer.EndTransaction(txn)

	var req []RosterEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body.", "error": err.Error()})
		return
	}

	count, names, err := h.service.CreateBatch(c, h.toRecords(req))
	if err != nil {
		h.metrics.RecordError(h.singular + ".create")
		h.tracer.RecordError(txn, err)

		var dup *services.DuplicateNamesError
		if errors.As(err, &dup) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message":    fmt.Sprintf("No %s created. One or more entered names are already in use.", h.plural),
				h.invalidKey: dup.Names,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Error creating %s.", h.plural),
			"error":   err.Error(),
		})
		return
	}

	h.metrics.RecordSuccess(h.singular + ".create")
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Created %s.", h.plural),
		"count":   count,
		h.plural:  names,
	})
}

// DeleteBatch deletes all submitted records, or none
func (h *RosterHandler) DeleteBatch(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-" + h.singular + "-batch-delete")
	defer h.tracer.EndTransaction(txn)

	var req []RosterEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body.", "error": err.Error()})
		return
	}

	count, names, err := h.service.DeleteBatch(c, h.toRecords(req))
	if err != nil {
		h.metrics.RecordError(h.singular + ".delete")
		h.tracer.RecordError(txn, err)

		var booked *services.BookedRecordsError
		if errors.As(err, &booked) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message":    fmt.Sprintf("Unable to delete %s. One or more %s have an event history.", h.plural, h.plural),
				h.historyKey: booked.Records,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Error deleting %s.", h.plural),
			"error":   err.Error(),
		})
		return
	}

	h.metrics.RecordSuccess(h.singular + ".delete")
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Deleted %s.", h.plural),
		"count":   count,
		h.plural:  names,
	})
}

// Update applies a partial update to one record
func (h *RosterHandler) Update(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-" + h.singular + "-update")
	defer h.tracer.EndTransaction(txn)

	var req RosterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body.", "error": err.Error()})
		return
	}
	if req.Name == nil && req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "At least one of name or isActive must be provided.",
		})
		return
	}

	record, err := h.service.Update(c, req.ID, req.Name, req.IsActive)
	if err != nil {
		h.metrics.RecordError(h.singular + ".update")
		h.tracer.RecordError(txn, err)

		var taken *services.NameTakenError
		if errors.As(err, &taken) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": fmt.Sprintf("%s names must be unique. '%s' is already used.", h.titled, taken.Name),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Error updating %s.", h.singular),
			"error":   err.Error(),
		})
		return
	}

	h.metrics.RecordSuccess(h.singular + ".update")
	c.JSON(http.StatusOK, gin.H{
		"message":    fmt.Sprintf("Updated %s.", h.singular),
		h.updatedKey: record,
	})
}

// SetActive batch activates or deactivates records by name
func (h *RosterHandler) SetActive(c *gin.Context) {
	verb := c.Param("activateOrDeactivate")
	if verb != "activate" && verb != "deactivate" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Path parameter must be 'activate' or 'deactivate'.",
		})
		return
	}

	txn := h.tracer.StartTransaction("api-" + h.singular + "-batch-toggle")
	defer h.tracer.EndTransaction(txn)

	var names []string
	if err := c.ShouldBindJSON(&names); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Must be an array of %s names.", h.singular),
		})
		return
	}

	count, err := h.service.SetActive(c, names, verb == "activate")
	if err != nil {
		h.metrics.RecordError(h.singular + ".toggle")
		h.tracer.RecordError(txn, err)

		var unknown *services.UnknownNamesError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message":        "No updates performed. One or more entries were invalid.",
				"invalidEntries": unknown.Names,
			})
			return
		}
		if errors.Is(err, services.ErrNoUpdates) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": fmt.Sprintf("No updates performed. Invalid %s names.", h.singular),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Error updating %s.", h.plural),
			"error":   err.Error(),
		})
		return
	}

	h.metrics.RecordSuccess(h.singular + ".toggle")
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully %sd %s.", verb, h.plural),
		"count":   count,
		h.plural:  names,
	})
}

func (h *RosterHandler) toRecords(req []RosterEntryRequest) []models.RosterRecord {
	records := make([]models.RosterRecord, len(req))
	for i, entry := range req {
		records[i] = models.RosterRecord{
			ID:       entry.ID,
			Name:     entry.Name,
			IsActive: entry.IsActive != nil && *entry.IsActive,
		}
	}
	return records
}
