package services

import (
	"context"
	"testing"

	"example.com/eventpro/services/booking/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock roster store for testing
type MockRosterStore struct {
	mock.Mock
}

func (m *MockRosterStore) Names(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRosterStore) ListActive(ctx context.Context) ([]models.RosterRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.RosterRecord), args.Error(1)
}

func (m *MockRosterStore) ListAll(ctx context.Context) ([]models.RosterRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.RosterRecord), args.Error(1)
}

func (m *MockRosterStore) CreateBatch(ctx context.Context, records []models.RosterRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRosterStore) DeleteByNames(ctx context.Context, names []string) (int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRosterStore) BookedIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockRosterStore) UpdateByID(ctx context.Context, id uint, updates map[string]interface{}) (*models.RosterRecord, error) {
	args := m.Called(ctx, id, updates)
	return args.Get(0).(*models.RosterRecord), args.Error(1)
}

func (m *MockRosterStore) SetActiveByNames(ctx context.Context, names []string, active bool) (int64, error) {
	args := m.Called(ctx, names, active)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreateBatch(t *testing.T) {
	store := new(MockRosterStore)
	store.On("Names", mock.Anything).Return([]string{"Elsa"}, nil)
	store.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]models.RosterRecord")).Return(nil)

	service := NewRosterService(store, "character")

	count, names, err := service.CreateBatch(context.Background(), []models.RosterRecord{
		{Name: "Spiderman", IsActive: true},
		{Name: "Batman", IsActive: false},
	})

	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.Equal(t, []string{"Spiderman", "Batman"}, names)
	store.AssertExpectations(t)
}

func TestCreateBatchRejectsDuplicateNames(t *testing.T) {
	store := new(MockRosterStore)
	store.On("Names", mock.Anything).Return([]string{"Elsa", "Batman"}, nil)

	service := NewRosterService(store, "character")

	count, names, err := service.CreateBatch(context.Background(), []models.RosterRecord{
		{Name: "Spiderman", IsActive: true},
		{Name: "Elsa", IsActive: true},
		{Name: "Batman", IsActive: false},
	})

	require.Error(t, err)
	require.Zero(t, count)
	require.Nil(t, names)

	var dup *DuplicateNamesError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, []string{"Elsa", "Batman"}, dup.Names)

	// The whole batch is rejected, nothing reaches the store
	store.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestDeleteBatch(t *testing.T) {
	store := new(MockRosterStore)
	store.On("BookedIDs", mock.Anything).Return([]uint{}, nil)
	store.On("DeleteByNames", mock.Anything, []string{"Spiderman", "Batman"}).Return(int64(2), nil)

	service := NewRosterService(store, "character")

	count, names, err := service.DeleteBatch(context.Background(), []models.RosterRecord{
		{ID: 7, Name: "Spiderman"},
		{ID: 9, Name: "Batman"},
	})

	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.Equal(t, []string{"Spiderman", "Batman"}, names)
	store.AssertExpectations(t)
}

func TestDeleteBatchRejectsRecordsWithHistory(t *testing.T) {
	store := new(MockRosterStore)
	store.On("BookedIDs", mock.Anything).Return([]uint{9}, nil)

	service := NewRosterService(store, "character")

	count, _, err := service.DeleteBatch(context.Background(), []models.RosterRecord{
		{ID: 7, Name: "Spiderman"},
		{ID: 9, Name: "Batman"},
	})

	require.Error(t, err)
	require.Zero(t, count)

	var booked *BookedRecordsError
	require.ErrorAs(t, err, &booked)
	require.Len(t, booked.Records, 1)
	require.Equal(t, "Batman", booked.Records[0].Name)

	store.AssertNotCalled(t, "DeleteByNames", mock.Anything, mock.Anything)
}

func TestUpdateRejectsTakenName(t *testing.T) {
	store := new(MockRosterStore)
	store.On("Names", mock.Anything).Return([]string{"Elsa", "Batman"}, nil)

	service := NewRosterService(store, "character")

	name := "Elsa"
	record, err := service.Update(context.Background(), 3, &name, nil)

	require.Error(t, err)
	require.Nil(t, record)

	var taken *NameTakenError
	require.ErrorAs(t, err, &taken)
	require.Equal(t, "Elsa", taken.Name)

	store.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTogglesActiveOnly(t *testing.T) {
	store := new(MockRosterStore)
	updated := &models.RosterRecord{ID: 3, Name: "Elsa", IsActive: false}
	store.On("UpdateByID", mock.Anything, uint(3), map[string]interface{}{"is_active": false}).Return(updated, nil)

	service := NewRosterService(store, "character")

	inactive := false
	record, err := service.Update(context.Background(), 3, nil, &inactive)

	require.NoError(t, err)
	require.Equal(t, updated, record)

	// An isActive-only update never needs the name registry
	store.AssertNotCalled(t, "Names", mock.Anything)
	store.AssertExpectations(t)
}

func TestSetActiveRejectsUnknownNames(t *testing.T) {
	store := new(MockRosterStore)
	store.On("Names", mock.Anything).Return([]string{"Elsa", "Batman"}, nil)

	service := NewRosterService(store, "activity")

	count, err := service.SetActive(context.Background(), []string{"Elsa", "Facepainting"}, true)

	require.Error(t, err)
	require.Zero(t, count)

	var unknown *UnknownNamesError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, []string{"Facepainting"}, unknown.Names)

	store.AssertNotCalled(t, "SetActiveByNames", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetActiveReportsZeroRowUpdates(t *testing.T) {
	store := new(MockRosterStore)
	store.On("Names", mock.Anything).Return([]string{"Elsa"}, nil)
	store.On("SetActiveByNames", mock.Anything, []string{"Elsa"}, false).Return(int64(0), nil)

	service := NewRosterService(store, "activity")

	count, err := service.SetActive(context.Background(), []string{"Elsa"}, false)

	require.Zero(t, count)
	require.ErrorIs(t, err, ErrNoUpdates)
}

func TestSetActive(t *testing.T) {
	store := new(MockRosterStore)
	store.On("Names", mock.Anything).Return([]string{"Elsa", "Batman"}, nil)
	store.On("SetActiveByNames", mock.Anything, []string{"Elsa", "Batman"}, true).Return(int64(2), nil)

	service := NewRosterService(store, "character")

	count, err := service.SetActive(context.Background(), []string{"Elsa", "Batman"}, true)

	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	store.AssertExpectations(t)
}
