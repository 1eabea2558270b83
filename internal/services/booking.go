package services

import (
	"context"
	"time"

	"example.com/eventpro/services/booking/internal/models"
	"example.com/eventpro/services/booking/internal/repositories"
	"example.com/eventpro/services/booking/internal/tracing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultStatusID is the status every new booking starts in
const DefaultStatusID = 1

// Workflow step error messages, kept verbatim from the public API contract
const (
	MsgInvalidAddress   = "Invalid address data."
	MsgInvalidPackage   = "Invalid package name."
	MsgInvalidEvent     = "Invalid event data."
	MsgInvalidCharacter = "Invalid character name."
	MsgInvalidActivity  = "Invalid activity name."
)

// WorkflowError marks a booking submission that failed at a specific step.
// The whole transaction rolls back, so a failed step leaves no address or
// event behind.
type WorkflowError struct {
	Step    string
	Message string
	Err     error
}

func (e *WorkflowError) Error() string { return e.Message }

func (e *WorkflowError) Unwrap() error { return e.Err }

// NameResolver resolves a roster name to its id
type NameResolver interface {
	IDByName(ctx context.Context, name string) (uint, error)
}

// EventIndexer indexes a created event for back-office search
type EventIndexer interface {
	IndexEvent(ctx context.Context, event *models.Event, address *models.Address, packageName string) error
}

// Notifier publishes a message to downstream consumers
type Notifier interface {
	SendMessage(ctx context.Context, body interface{}) error
}

// AddressInput is the submitted event location
type AddressInput struct {
	LineOne string
	LineTwo string
	City    string
	State   string
}

// BookingInput is a validated booking submission
type BookingInput struct {
	Email              string
	ParentFirstName    string
	ParentLastName     string
	PhoneNumber        int64
	DateTime           time.Time
	Address            AddressInput
	Indoors            bool
	PackageName        string
	Participants       int
	MinParticipantAge  int
	MaxParticipantAge  int
	BirthdayChildName  string
	BirthdayChildAge   int
	FirstInteraction   bool
	Notes              string
	CouponCode         string
	ReferralCode       string
	HowDidYouFindUs    string
	CharactersAtEvent  []string
	ActivitiesForEvent []string
}

// BookingResult is the outcome of a successful submission
type BookingResult struct {
	Event                 *models.Event
	NewCharactersAtEvent  models.BatchResult
	NewActivitiesForEvent models.BatchResult
}

// BookingService orchestrates the booking-creation workflow: address,
// package resolution, event, then the two link batches, all inside one
// database transaction.
type BookingService struct {
	db            *gorm.DB
	characterRepo NameResolver
	activityRepo  NameResolver
	search        EventIndexer
	notifier      Notifier
	tracer        tracing.Tracer
}

// NewBookingService creates a new booking service. search and notifier may
// be nil when those integrations are unavailable.
func NewBookingService(
	db *gorm.DB,
	characterRepo NameResolver,
	activityRepo NameResolver,
	search EventIndexer,
	notifier Notifier,
	tracer tracing.Tracer,
) *BookingService {
	return &BookingService{
		db:            db,
		characterRepo: characterRepo,
		activityRepo:  activityRepo,
		search:        search,
		notifier:      notifier,
		tracer:        tracer,
	}
}

// CreateBooking runs the workflow for one submission. Steps run strictly in
// order and the first failure aborts the transaction with a step-specific
// WorkflowError.
func (s *BookingService) CreateBooking(ctx context.Context, input *BookingInput) (*BookingResult, error) {
	txn := s.tracer.StartTransaction("create-booking")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "package", input.PackageName)

	var (
		result  BookingResult
		address models.Address
		pkg     models.Package
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Step 1: create the address
		span := s.tracer.StartSpan("create-address", txn)
		address = models.Address{
			LineOne: input.Address.LineOne,
			LineTwo: input.Address.LineTwo,
			City:    input.Address.City,
			State:   input.Address.State,
		}
		err := tx.Create(&address).Error
		span.End()
		if err != nil {
			return &WorkflowError{Step: "address", Message: MsgInvalidAddress, Err: err}
		}

		// Step 2: resolve the package by exact name
		span = s.tracer.StartSpan("resolve-package", txn)
		err = tx.Where("name = ?", input.PackageName).First(&pkg).Error
		span.End()
		if err != nil {
			return &WorkflowError{Step: "package", Message: MsgInvalidPackage, Err: err}
		}

		// Step 3: create the event with the resolved ids and initial status
		span = s.tracer.StartSpan("create-event", txn)
		event := models.Event{
			Email:             input.Email,
			ParentFirstName:   input.ParentFirstName,
			ParentLastName:    input.ParentLastName,
			PhoneNumber:       input.PhoneNumber,
			DateTime:          input.DateTime,
			AddressID:         address.ID,
			Indoors:           input.Indoors,
			PackageID:         pkg.ID,
			Participants:      input.Participants,
			MinParticipantAge: input.MinParticipantAge,
			MaxParticipantAge: input.MaxParticipantAge,
			BirthdayChildName: input.BirthdayChildName,
			BirthdayChildAge:  input.BirthdayChildAge,
			FirstInteraction:  input.FirstInteraction,
			Notes:             input.Notes,
			CouponCode:        input.CouponCode,
			ReferralCode:      input.ReferralCode,
			HowDidYouFindUs:   input.HowDidYouFindUs,
			StatusID:          DefaultStatusID,
		}
		err = tx.Create(&event).Error
		span.End()
		if err != nil {
			return &WorkflowError{Step: "event", Message: MsgInvalidEvent, Err: err}
		}

		// Step 4: resolve every character name
		span = s.tracer.StartSpan("resolve-characters", txn)
		characterIDs, missing, err := s.resolveNames(ctx, s.characterRepo, input.CharactersAtEvent)
		span.End()
		if err != nil {
			return errors.Wrap(err, "failed to resolve character names")
		}
		if len(missing) > 0 {
			return &WorkflowError{Step: "characters", Message: MsgInvalidCharacter}
		}

		// Step 5: resolve every activity name
		span = s.tracer.StartSpan("resolve-activities", txn)
		activityIDs, missing, err := s.resolveNames(ctx, s.activityRepo, input.ActivitiesForEvent)
		span.End()
		if err != nil {
			return errors.Wrap(err, "failed to resolve activity names")
		}
		if len(missing) > 0 {
			return &WorkflowError{Step: "activities", Message: MsgInvalidActivity}
		}

		// Step 6: bulk-insert the join rows
		span = s.tracer.StartSpan("create-links", txn)
		defer span.End()
		if len(characterIDs) > 0 {
			links := make([]models.CharactersAtEvent, len(characterIDs))
			for i, id := range characterIDs {
				links[i] = models.CharactersAtEvent{EventID: event.ID, CharacterID: id}
			}
			if err := tx.Create(&links).Error; err != nil {
				return errors.Wrap(err, "failed to create character links")
			}
		}
		if len(activityIDs) > 0 {
			links := make([]models.ActivitiesForEvent, len(activityIDs))
			for i, id := range activityIDs {
				links[i] = models.ActivitiesForEvent{EventID: event.ID, ActivityID: id}
			}
			if err := tx.Create(&links).Error; err != nil {
				return errors.Wrap(err, "failed to create activity links")
			}
		}

		result = BookingResult{
			Event:                 &event,
			NewCharactersAtEvent:  models.BatchResult{Count: int64(len(characterIDs))},
			NewActivitiesForEvent: models.BatchResult{Count: int64(len(activityIDs))},
		}
		return nil
	})

	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	log.Info().
		Uint("event_id", result.Event.ID).
		Str("package", input.PackageName).
		Int64("characters", result.NewCharactersAtEvent.Count).
		Int64("activities", result.NewActivitiesForEvent.Count).
		Msg("Booking created")

	s.afterCommit(ctx, &result, &address, pkg.Name)
	return &result, nil
}

// resolveNames looks up each name concurrently. Missing names come back as
// the zero sentinel and are reported together; order within the batch does
// not matter.
func (s *BookingService) resolveNames(ctx context.Context, resolver NameResolver, names []string) ([]uint, []string, error) {
	ids := make([]uint, len(names))
	g, gctx := errgroup.WithContext(ctx)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			id, err := resolver.IDByName(gctx, name)
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var missing []string
	for i, id := range ids {
		if id == 0 {
			missing = append(missing, names[i])
		}
	}
	return ids, missing, nil
}

// afterCommit runs the best-effort integrations. Failures here never fail
// the booking; the worker reindex job picks up missed documents.
func (s *BookingService) afterCommit(ctx context.Context, result *BookingResult, address *models.Address, packageName string) {
	if s.search != nil {
		if err := s.search.IndexEvent(ctx, result.Event, address, packageName); err != nil {
			log.Warn().Err(err).Uint("event_id", result.Event.ID).Msg("Failed to index event, reindex job will retry")
		}
	}

	if s.notifier != nil {
		notification := map[string]interface{}{
			"type":      "booking.created",
			"eventId":   result.Event.ID,
			"package":   packageName,
			"dateTime":  result.Event.DateTime,
			"createdAt": result.Event.CreatedAt,
		}
		if err := s.notifier.SendMessage(ctx, notification); err != nil {
			log.Warn().Err(err).Uint("event_id", result.Event.ID).Msg("Failed to publish booking notification")
		}
	}
}
