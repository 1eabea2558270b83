package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"example.com/eventpro/services/booking/internal/models"
	"example.com/eventpro/services/booking/internal/repositories"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newBookingTestDB opens a throwaway SQLite database with the full schema
// and the reference rows the workflow needs
func newBookingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "booking_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, models.SetupModels(db))

	require.NoError(t, db.Create(&models.Status{ID: 1, Name: "pending"}).Error)
	require.NoError(t, db.Create(&models.Package{Name: "Standard"}).Error)
	require.NoError(t, db.Create(&[]models.Character{
		{Name: "Elsa", IsActive: true},
		{Name: "Batman", IsActive: true},
	}).Error)
	require.NoError(t, db.Create(&models.Activity{Name: "Facepainting", IsActive: true}).Error)

	return db
}

func newBookingTestService(db *gorm.DB) *BookingService {
	characterRepo := repositories.NewCharacterRepository(db, db)
	activityRepo := repositories.NewActivityRepository(db, db)
	return NewBookingService(db, characterRepo, activityRepo, nil, nil, tracing.Disabled())
}

func validBookingInput() *BookingInput {
	return &BookingInput{
		Email:           "parent@example.com",
		ParentFirstName: "Jamie",
		ParentLastName:  "Doe",
		PhoneNumber:     5551234567,
		DateTime:        time.Now().Add(14 * 24 * time.Hour),
		Address: AddressInput{
			LineOne: "12 Main St",
			City:    "Springfield",
			State:   "IL",
		},
		Indoors:            true,
		PackageName:        "Standard",
		Participants:       10,
		BirthdayChildName:  "Alex",
		BirthdayChildAge:   6,
		CharactersAtEvent:  []string{"Elsa", "Batman"},
		ActivitiesForEvent: []string{"Facepainting"},
	}
}

func TestCreateBooking(t *testing.T) {
	db := newBookingTestDB(t)
	service := newBookingTestService(db)

	result, err := service.CreateBooking(context.Background(), validBookingInput())

	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotZero(t, result.Event.ID)
	require.Equal(t, uint(DefaultStatusID), result.Event.StatusID)
	require.Equal(t, int64(2), result.NewCharactersAtEvent.Count)
	require.Equal(t, int64(1), result.NewActivitiesForEvent.Count)

	// The event references the address created in the same transaction
	var address models.Address
	require.NoError(t, db.First(&address, result.Event.AddressID).Error)
	require.Equal(t, "Springfield", address.City)

	var characterLinks int64
	require.NoError(t, db.Model(&models.CharactersAtEvent{}).
		Where("event_id = ?", result.Event.ID).Count(&characterLinks).Error)
	require.Equal(t, int64(2), characterLinks)

	var activityLinks int64
	require.NoError(t, db.Model(&models.ActivitiesForEvent{}).
		Where("event_id = ?", result.Event.ID).Count(&activityLinks).Error)
	require.Equal(t, int64(1), activityLinks)
}

func TestCreateBookingRejectsUnknownPackage(t *testing.T) {
	db := newBookingTestDB(t)
	service := newBookingTestService(db)

	input := validBookingInput()
	input.PackageName = "Nonexistent"

	result, err := service.CreateBooking(context.Background(), input)

	require.Error(t, err)
	require.Nil(t, result)

	var workflowErr *WorkflowError
	require.ErrorAs(t, err, &workflowErr)
	require.Equal(t, MsgInvalidPackage, workflowErr.Message)

	// The address created before the package lookup must be rolled back
	var addresses int64
	require.NoError(t, db.Model(&models.Address{}).Count(&addresses).Error)
	require.Zero(t, addresses)
}

func TestCreateBookingRollsBackOnUnknownCharacter(t *testing.T) {
	db := newBookingTestDB(t)
	service := newBookingTestService(db)

	input := validBookingInput()
	input.CharactersAtEvent = []string{"Elsa", "Ghost"}

	result, err := service.CreateBooking(context.Background(), input)

	require.Error(t, err)
	require.Nil(t, result)

	var workflowErr *WorkflowError
	require.ErrorAs(t, err, &workflowErr)
	require.Equal(t, MsgInvalidCharacter, workflowErr.Message)

	// Address, event and link rows from the earlier steps are all gone
	var addresses, events, links int64
	require.NoError(t, db.Model(&models.Address{}).Count(&addresses).Error)
	require.NoError(t, db.Model(&models.Event{}).Count(&events).Error)
	require.NoError(t, db.Model(&models.CharactersAtEvent{}).Count(&links).Error)
	require.Zero(t, addresses)
	require.Zero(t, events)
	require.Zero(t, links)
}

func TestCreateBookingRollsBackOnUnknownActivity(t *testing.T) {
	db := newBookingTestDB(t)
	service := newBookingTestService(db)

	input := validBookingInput()
	input.ActivitiesForEvent = []string{"Juggling"}

	result, err := service.CreateBooking(context.Background(), input)

	require.Error(t, err)
	require.Nil(t, result)

	var workflowErr *WorkflowError
	require.ErrorAs(t, err, &workflowErr)
	require.Equal(t, MsgInvalidActivity, workflowErr.Message)

	var events int64
	require.NoError(t, db.Model(&models.Event{}).Count(&events).Error)
	require.Zero(t, events)
}
