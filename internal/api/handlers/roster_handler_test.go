package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"example.com/eventpro/services/booking/internal/metrics"
	"example.com/eventpro/services/booking/internal/models"
	"example.com/eventpro/services/booking/internal/services"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock roster service for testing
type MockRosterService struct {
	mock.Mock
}

func (m *MockRosterService) ListActive(ctx context.Context) ([]models.RosterRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.RosterRecord), args.Error(1)
}

func (m *MockRosterService) ListAll(ctx context.Context) ([]models.RosterRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.RosterRecord), args.Error(1)
}

func (m *MockRosterService) CreateBatch(ctx context.Context, records []models.RosterRecord) (int64, []string, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Get(1).([]string), args.Error(2)
}

func (m *MockRosterService) DeleteBatch(ctx context.Context, records []models.RosterRecord) (int64, []string, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Get(1).([]string), args.Error(2)
}

func (m *MockRosterService) Update(ctx context.Context, id uint, name *string, isActive *bool) (*models.RosterRecord, error) {
	args := m.Called(ctx, id, name, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RosterRecord), args.Error(1)
}

func (m *MockRosterService) SetActive(ctx context.Context, names []string, active bool) (int64, error) {
	args := m.Called(ctx, names, active)
	return args.Get(0).(int64), args.Error(1)
}

func newCharacterTestRouter(service RosterService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewCharacterHandler(service, tracing.Disabled(), metrics.NewMetrics())
	handler.RegisterRoutes(router)
	return router
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCreateCharacterBatch(t *testing.T) {
	service := new(MockRosterService)
	service.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]models.RosterRecord")).
		Return(int64(2), []string{"Elsa", "Batman"}, nil)

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPost, "/character",
		`[{"name":"Elsa","isActive":true},{"name":"Batman","isActive":false}]`)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Created characters.", body["message"])
	require.Equal(t, float64(2), body["count"])
	service.AssertExpectations(t)
}

func TestCreateCharacterBatchReportsDuplicates(t *testing.T) {
	service := new(MockRosterService)
	service.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]models.RosterRecord")).
		Return(int64(0), []string(nil), &services.DuplicateNamesError{Names: []string{"Elsa"}})

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPost, "/character",
		`[{"name":"Elsa","isActive":true}]`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "No characters created. One or more entered names are already in use.", body["message"])
	require.Equal(t, []interface{}{"Elsa"}, body["invalidCharacters"])
}

func TestCreateCharacterBatchRejectsMissingFields(t *testing.T) {
	service := new(MockRosterService)

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPost, "/character",
		`[{"name":"Elsa"}]`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	service.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestDeleteCharacterBatchReportsHistory(t *testing.T) {
	service := new(MockRosterService)
	service.On("DeleteBatch", mock.Anything, mock.AnythingOfType("[]models.RosterRecord")).
		Return(int64(0), []string(nil), &services.BookedRecordsError{
			Records: []models.RosterRecord{{ID: 9, Name: "Batman", IsActive: true}},
		})

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodDelete, "/character",
		`[{"id":9,"name":"Batman","isActive":true}]`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Unable to delete characters. One or more characters have an event history.", body["message"])
	require.Contains(t, body, "charactersWithHistory")
}

func TestUpdateCharacterRequiresAField(t *testing.T) {
	service := new(MockRosterService)

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPatch, "/character", `{"id":3}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	service.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCharacter(t *testing.T) {
	service := new(MockRosterService)
	updated := &models.RosterRecord{ID: 3, Name: "Elsa", IsActive: false}
	service.On("Update", mock.Anything, uint(3), (*string)(nil), mock.AnythingOfType("*bool")).
		Return(updated, nil)

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPatch, "/character",
		`{"id":3,"isActive":false}`)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Updated character.", body["message"])
	require.Contains(t, body, "updatedCharacter")
	service.AssertExpectations(t)
}

func TestSetActiveRejectsBadPathParam(t *testing.T) {
	service := new(MockRosterService)

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPatch, "/character/enable", `["Elsa"]`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	service.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetActiveReportsInvalidEntries(t *testing.T) {
	service := new(MockRosterService)
	service.On("SetActive", mock.Anything, []string{"Elsa", "Ghost"}, false).
		Return(int64(0), &services.UnknownNamesError{Names: []string{"Ghost"}})

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPatch, "/character/deactivate", `["Elsa","Ghost"]`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "No updates performed. One or more entries were invalid.", body["message"])
	require.Equal(t, []interface{}{"Ghost"}, body["invalidEntries"])
}

func TestSetActiveResponseVerb(t *testing.T) {
	service := new(MockRosterService)
	service.On("SetActive", mock.Anything, []string{"Elsa"}, true).Return(int64(1), nil)

	router := newCharacterTestRouter(service)
	recorder := performRequest(router, http.MethodPatch, "/character/activate", `["Elsa"]`)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Successfully activated characters.", body["message"])
	require.Equal(t, []interface{}{"Elsa"}, body["characters"])
}
