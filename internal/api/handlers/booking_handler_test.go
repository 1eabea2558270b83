package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"example.com/eventpro/services/booking/internal/metrics"
	"example.com/eventpro/services/booking/internal/models"
	"example.com/eventpro/services/booking/internal/services"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock booking service for testing
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input *services.BookingInput) (*services.BookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BookingResult), args.Error(1)
}

func newBookingTestRouter(service BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewBookingHandler(service, tracing.Disabled(), metrics.NewMetrics())
	handler.RegisterRoutes(router)
	return router
}

const validBookingBody = `{
	"email": "parent@example.com",
	"parentFirstName": "Jamie",
	"parentLastName": "Doe",
	"phoneNumber": 5551234567,
	"dateTime": "2026-09-12T14:00:00Z",
	"address": {"lineOne": "12 Main St", "city": "Springfield", "state": "IL"},
	"indoors": true,
	"packageName": "Standard",
	"participants": 10,
	"charactersAtEvent": ["Elsa"],
	"activitiesForEvent": ["Facepainting"]
}`

func TestCreateBookingResponse(t *testing.T) {
	service := new(MockBookingService)
	service.On("CreateBooking", mock.Anything, mock.AnythingOfType("*services.BookingInput")).
		Return(&services.BookingResult{
			Event:                 &models.Event{ID: 42, StatusID: 1},
			NewCharactersAtEvent:  models.BatchResult{Count: 1},
			NewActivitiesForEvent: models.BatchResult{Count: 1},
		}, nil)

	router := newBookingTestRouter(service)
	recorder := performRequest(router, http.MethodPost, "/", validBookingBody)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Event created successfully.", body["message"])
	require.Contains(t, body, "newEvent")
	require.Contains(t, body, "newCharactersAtEvent")
	require.Contains(t, body, "newActivitiesForEvent")
	service.AssertExpectations(t)
}

func TestCreateBookingRejectsMissingFields(t *testing.T) {
	service := new(MockBookingService)

	router := newBookingTestRouter(service)
	recorder := performRequest(router, http.MethodPost, "/", `{"email":"parent@example.com"}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	service.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCreateBookingReportsWorkflowFailure(t *testing.T) {
	service := new(MockBookingService)
	service.On("CreateBooking", mock.Anything, mock.AnythingOfType("*services.BookingInput")).
		Return(nil, &services.WorkflowError{Step: "package", Message: services.MsgInvalidPackage})

	router := newBookingTestRouter(service)
	recorder := performRequest(router, http.MethodPost, "/", validBookingBody)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Invalid package name.", body["message"])
}

func TestCreateBookingHidesInternalErrors(t *testing.T) {
	service := new(MockBookingService)
	service.On("CreateBooking", mock.Anything, mock.AnythingOfType("*services.BookingInput")).
		Return(nil, errors.New("connection refused"))

	router := newBookingTestRouter(service)
	recorder := performRequest(router, http.MethodPost, "/", validBookingBody)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Sorry something broke", body["message"])
}

func TestIndexListsEndpoints(t *testing.T) {
	service := new(MockBookingService)

	router := newBookingTestRouter(service)
	recorder := performRequest(router, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Welcome to the Event Pro API!", body["message"])
	require.NotEmpty(t, body["endpoints"])
}
