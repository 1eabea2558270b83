package handlers

import (
	"context"
	"net/http"
	"time"

	"example.com/eventpro/services/booking/internal/metrics"
	"example.com/eventpro/services/booking/internal/services"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// BookingService runs the booking-creation workflow
type BookingService interface {
	CreateBooking(ctx context.Context, input *services.BookingInput) (*services.BookingResult, error)
}

// BookingHandler handles booking form submissions
type BookingHandler struct {
	service BookingService
	tracer  tracing.Tracer
	metrics *metrics.Metrics
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService, tracer tracing.Tracer, m *metrics.Metrics) *BookingHandler {
	return &BookingHandler{service: service, tracer: tracer, metrics: m}
}

// AddressRequest is the submitted event location
type AddressRequest struct {
	LineOne string `json:"lineOne" binding:"required"`
	LineTwo string `json:"lineTwo"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
}

// BookingFormRequest is an incoming booking submission. Client-supplied id
// and status are accepted but never trusted; the workflow assigns both.
type BookingFormRequest struct {
	ID                 uint           `json:"id"`
	Email              string         `json:"email" binding:"required"`
	ParentFirstName    string         `json:"parentFirstName" binding:"required"`
	ParentLastName     string         `json:"parentLastName" binding:"required"`
	PhoneNumber        int64          `json:"phoneNumber" binding:"required"`
	DateTime           time.Time      `json:"dateTime" binding:"required"`
	Address            AddressRequest `json:"address" binding:"required"`
	Indoors            *bool          `json:"indoors" binding:"required"`
	PackageName        string         `json:"packageName" binding:"required"`
	Participants       int            `json:"participants" binding:"required"`
	MinParticipantAge  int            `json:"minParticipantAge"`
	MaxParticipantAge  int            `json:"maxParticipantAge"`
	BirthdayChildName  string         `json:"birthdayChildName"`
	BirthdayChildAge   int            `json:"birthdayChildAge"`
	FirstInteraction   bool           `json:"firstInteraction"`
	Notes              string         `json:"notes"`
	CouponCode         string         `json:"couponCode"`
	ReferralCode       string         `json:"referralCode"`
	HowDidYouFindUs    string         `json:"howDidYouFindUs"`
	CharactersAtEvent  []string       `json:"charactersAtEvent"`
	ActivitiesForEvent []string       `json:"activitiesForEvent"`
	Status             uint           `json:"status"`
}

// RegisterRoutes registers the handler's routes
func (h *BookingHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Index)
	router.POST("/", h.CreateBooking)
}

// Index lists the public endpoints
func (h *BookingHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Event Pro API!",
		"endpoints": []string{
			"/activitiesForEvent",
			"/activity",
			"/address",
			"/character",
			"/charactersAtEvent",
			"/event",
			"/package",
			"/status",
		},
	})
}

// CreateBooking handles one booking submission
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-booking")
	defer h.tracer.EndTransaction(txn)
	h.metrics.IncrementCounter("booking.requests")
	start := time.Now()

	var req BookingFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body.", "error": err.Error()})
		return
	}

	h.tracer.AddAttribute(txn, "package", req.PackageName)
	h.tracer.AddAttribute(txn, "characters", len(req.CharactersAtEvent))
	h.tracer.AddAttribute(txn, "activities", len(req.ActivitiesForEvent))

	input := &services.BookingInput{
		Email:           req.Email,
		ParentFirstName: req.ParentFirstName,
		ParentLastName:  req.ParentLastName,
		PhoneNumber:     req.PhoneNumber,
		DateTime:        req.DateTime,
		Address: services.AddressInput{
			LineOne: req.Address.LineOne,
			LineTwo: req.Address.LineTwo,
			City:    req.Address.City,
			State:   req.Address.State,
		},
		Indoors:            req.Indoors != nil && *req.Indoors,
		PackageName:        req.PackageName,
		Participants:       req.Participants,
		MinParticipantAge:  req.MinParticipantAge,
		MaxParticipantAge:  req.MaxParticipantAge,
		BirthdayChildName:  req.BirthdayChildName,
		BirthdayChildAge:   req.BirthdayChildAge,
		FirstInteraction:   req.FirstInteraction,
		Notes:              req.Notes,
		CouponCode:         req.CouponCode,
		ReferralCode:       req.ReferralCode,
		HowDidYouFindUs:    req.HowDidYouFindUs,
		CharactersAtEvent:  req.CharactersAtEvent,
		ActivitiesForEvent: req.ActivitiesForEvent,
	}

	result, err := h.service.CreateBooking(c, input)
	h.metrics.RecordTimer("booking.create", time.Since(start))
	if err != nil {
		h.metrics.RecordError("booking.create")
		h.tracer.RecordError(txn, err)

		var workflowErr *services.WorkflowError
		if errors.As(err, &workflowErr) {
			c.JSON(http.StatusBadRequest, gin.H{"message": workflowErr.Message})
			return
		}

		log.Error().Err(err).Msg("Booking workflow failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Sorry something broke"})
		return
	}

	h.metrics.RecordSuccess("booking.create")
	c.JSON(http.StatusOK, gin.H{
		"message":               "Event created successfully.",
		"newEvent":              result.Event,
		"newCharactersAtEvent":  result.NewCharactersAtEvent,
		"newActivitiesForEvent": result.NewActivitiesForEvent,
	})
}
