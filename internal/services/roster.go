package services

import (
	"context"
	"fmt"

	"example.com/eventpro/services/booking/internal/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RosterStore is the data access needed by the roster service. Both the
// character and activity repositories satisfy it.
type RosterStore interface {
	Names(ctx context.Context) ([]string, error)
	ListActive(ctx context.Context) ([]models.RosterRecord, error)
	ListAll(ctx context.Context) ([]models.RosterRecord, error)
	CreateBatch(ctx context.Context, records []models.RosterRecord) error
	DeleteByNames(ctx context.Context, names []string) (int64, error)
	BookedIDs(ctx context.Context) ([]uint, error)
	UpdateByID(ctx context.Context, id uint, updates map[string]interface{}) (*models.RosterRecord, error)
	SetActiveByNames(ctx context.Context, names []string, active bool) (int64, error)
}

// DuplicateNamesError reports batch-create entries whose names are taken
type DuplicateNamesError struct {
	Names []string
}

func (e *DuplicateNamesError) Error() string {
	return fmt.Sprintf("names already in use: %v", e.Names)
}

// BookedRecordsError reports batch-delete entries with event history
type BookedRecordsError struct {
	Records []models.RosterRecord
}

func (e *BookedRecordsError) Error() string {
	return fmt.Sprintf("%d records have an event history", len(e.Records))
}

// UnknownNamesError reports batch-toggle entries missing from the registry
type UnknownNamesError struct {
	Names []string
}

func (e *UnknownNamesError) Error() string {
	return fmt.Sprintf("unknown names: %v", e.Names)
}

// NameTakenError reports a single-update rename that collides with an
// existing name
type NameTakenError struct {
	Name string
}

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("name %q is already used", e.Name)
}

// ErrNoUpdates is returned when a toggle matched no rows even though every
// submitted name passed the registry check
var ErrNoUpdates = errors.New("no updates performed")

// RosterService implements the shared CRUD rules for characters and
// activities. The uniqueness and existence checks read the registry
// immediately before each write so the API can report which entries are
// invalid, not just that the batch failed.
type RosterService struct {
	store  RosterStore
	entity string
}

// NewRosterService creates a roster service for one entity type. The entity
// name only feeds log lines; response labeling lives at the HTTP boundary.
func NewRosterService(store RosterStore, entity string) *RosterService {
	return &RosterService{store: store, entity: entity}
}

// ListActive returns all active records
func (s *RosterService) ListActive(ctx context.Context) ([]models.RosterRecord, error) {
	return s.store.ListActive(ctx)
}

// ListAll returns every record regardless of status
func (s *RosterService) ListAll(ctx context.Context) ([]models.RosterRecord, error) {
	return s.store.ListAll(ctx)
}

// CreateBatch inserts all submitted records, or none. Any name already in
// the registry rejects the whole batch with the offending names.
func (s *RosterService) CreateBatch(ctx context.Context, records []models.RosterRecord) (int64, []string, error) {
	existing, err := s.store.Names(ctx)
	if err != nil {
		return 0, nil, err
	}

	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}

	var duplicates []string
	for _, rec := range records {
		if taken[rec.Name] {
			duplicates = append(duplicates, rec.Name)
		}
	}
	if len(duplicates) > 0 {
		return 0, nil, &DuplicateNamesError{Names: duplicates}
	}

	// A concurrent insert can still slip past the registry check; the unique
	// index turns that race into a storage error reported to the caller.
	if err := s.store.CreateBatch(ctx, records); err != nil {
		return 0, nil, errors.Wrap(err, "failed to create records")
	}

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}

	log.Info().Str("entity", s.entity).Int("count", len(names)).Msg("Batch created")
	return int64(len(records)), names, nil
}

// DeleteBatch removes all submitted records, or none. Any record whose id
// appears in the join table rejects the whole batch with those records.
func (s *RosterService) DeleteBatch(ctx context.Context, records []models.RosterRecord) (int64, []string, error) {
	bookedIDs, err := s.store.BookedIDs(ctx)
	if err != nil {
		return 0, nil, err
	}

	booked := make(map[uint]bool, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = true
	}

	var withHistory []models.RosterRecord
	for _, rec := range records {
		if booked[rec.ID] {
			withHistory = append(withHistory, rec)
		}
	}
	if len(withHistory) > 0 {
		return 0, nil, &BookedRecordsError{Records: withHistory}
	}

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}

	count, err := s.store.DeleteByNames(ctx, names)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to delete records")
	}

	log.Info().Str("entity", s.entity).Int64("count", count).Msg("Batch deleted")
	return count, names, nil
}

// Update applies a partial update to a single record. A new name must not
// collide with any existing name.
func (s *RosterService) Update(ctx context.Context, id uint, name *string, isActive *bool) (*models.RosterRecord, error) {
	updates := make(map[string]interface{}, 2)

	if name != nil {
		existing, err := s.store.Names(ctx)
		if err != nil {
			return nil, err
		}
		for _, existingName := range existing {
			if existingName == *name {
				return nil, &NameTakenError{Name: *name}
			}
		}
		updates["name"] = *name
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	record, err := s.store.UpdateByID(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	log.Info().Str("entity", s.entity).Uint("id", id).Msg("Record updated")
	return record, nil
}

// SetActive toggles isActive for all named records, or none. Every name must
// already exist in the registry; a zero-row update after a clean check is its
// own failure, distinct from the validation one.
func (s *RosterService) SetActive(ctx context.Context, names []string, active bool) (int64, error) {
	existing, err := s.store.Names(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
	}

	var unknown []string
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return 0, &UnknownNamesError{Names: unknown}
	}

	count, err := s.store.SetActiveByNames(ctx, names, active)
	if err != nil {
		return 0, errors.Wrap(err, "failed to toggle records")
	}
	if count == 0 {
		return 0, ErrNoUpdates
	}

	log.Info().Str("entity", s.entity).Int64("count", count).Bool("active", active).Msg("Batch toggled")
	return count, nil
}
