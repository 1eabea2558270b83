package repositories

import (
	"context"
	"time"

	"example.com/eventpro/services/booking/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RosterRepository provides access to one of the two roster tables
// (characters or activities). Both tables share the same shape, so a single
// repository parameterized by table name serves them.
type RosterRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
	table      string
	joinTable  string
	joinColumn string
}

// NewCharacterRepository creates a roster repository over the characters table
func NewCharacterRepository(db *gorm.DB, readOnlyDB *gorm.DB) *RosterRepository {
	return &RosterRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
		table:      "characters",
		joinTable:  "characters_at_events",
		joinColumn: "character_id",
	}
}

// NewActivityRepository creates a roster repository over the activities table
func NewActivityRepository(db *gorm.DB, readOnlyDB *gorm.DB) *RosterRepository {
	return &RosterRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
		table:      "activities",
		joinTable:  "activities_for_events",
		joinColumn: "activity_id",
	}
}

// Names returns every stored name, active or not. Callers use this as the
// registry for uniqueness and spelling checks, so it always hits the database.
func (r *RosterRepository) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := r.readOnlyDB.WithContext(ctx).Table(r.table).Pluck("name", &names).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list names")
	}
	return names, nil
}

// ListActive returns all records with isActive set
func (r *RosterRepository) ListActive(ctx context.Context) ([]models.RosterRecord, error) {
	var records []models.RosterRecord
	err := r.readOnlyDB.WithContext(ctx).Table(r.table).
		Where("is_active = ?", true).
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active records")
	}
	return records, nil
}

// ListAll returns every record regardless of status
func (r *RosterRepository) ListAll(ctx context.Context) ([]models.RosterRecord, error) {
	var records []models.RosterRecord
	err := r.readOnlyDB.WithContext(ctx).Table(r.table).Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list records")
	}
	return records, nil
}

// CreateBatch inserts all records in one statement. Client-supplied ids are
// discarded so the database assigns them.
func (r *RosterRepository) CreateBatch(ctx context.Context, records []models.RosterRecord) error {
	rows := make([]models.RosterRecord, len(records))
	for i, rec := range records {
		rows[i] = models.RosterRecord{Name: rec.Name, IsActive: rec.IsActive}
	}
	return r.db.WithContext(ctx).Table(r.table).Create(&rows).Error
}

// DeleteByNames deletes all rows whose name matches and reports the count
func (r *RosterRepository) DeleteByNames(ctx context.Context, names []string) (int64, error) {
	result := r.db.WithContext(ctx).Table(r.table).
		Where("name IN ?", names).
		Delete(&models.RosterRecord{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete records")
	}
	return result.RowsAffected, nil
}

// BookedIDs returns the ids referenced by the corresponding join table
func (r *RosterRepository) BookedIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.readOnlyDB.WithContext(ctx).Table(r.joinTable).
		Distinct(r.joinColumn).
		Pluck(r.joinColumn, &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list booked ids")
	}
	return ids, nil
}

// UpdateByID applies a partial update and returns the updated record
func (r *RosterRepository) UpdateByID(ctx context.Context, id uint, updates map[string]interface{}) (*models.RosterRecord, error) {
	result := r.db.WithContext(ctx).Table(r.table).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to update record")
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var record models.RosterRecord
	err := r.db.WithContext(ctx).Table(r.table).
		Where("id = ?", id).
		Take(&record).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load updated record")
	}
	return &record, nil
}

// SetActiveByNames toggles isActive on all matching rows in one update
func (r *RosterRepository) SetActiveByNames(ctx context.Context, names []string, active bool) (int64, error) {
	result := r.db.WithContext(ctx).Table(r.table).
		Where("name IN ?", names).
		Update("is_active", active)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to toggle records")
	}
	return result.RowsAffected, nil
}

// IDByName resolves a single name to its id
func (r *RosterRepository) IDByName(ctx context.Context, name string) (uint, error) {
	var record models.RosterRecord
	err := r.readOnlyDB.WithContext(ctx).Table(r.table).
		Where("name = ?", name).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve name")
	}
	return record.ID, nil
}

// CatalogRepository provides the raw listings of reference and join tables
type CatalogRepository struct {
	readOnlyDB *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(readOnlyDB *gorm.DB) *CatalogRepository {
	return &CatalogRepository{readOnlyDB: readOnlyDB}
}

// Events returns all events
func (r *CatalogRepository) Events(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.readOnlyDB.WithContext(ctx).Find(&events).Error
	return events, errors.Wrap(err, "failed to list events")
}

// Addresses returns all addresses
func (r *CatalogRepository) Addresses(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	err := r.readOnlyDB.WithContext(ctx).Find(&addresses).Error
	return addresses, errors.Wrap(err, "failed to list addresses")
}

// Packages returns all packages
func (r *CatalogRepository) Packages(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	err := r.readOnlyDB.WithContext(ctx).Find(&packages).Error
	return packages, errors.Wrap(err, "failed to list packages")
}

// Statuses returns all statuses
func (r *CatalogRepository) Statuses(ctx context.Context) ([]models.Status, error) {
	var statuses []models.Status
	err := r.readOnlyDB.WithContext(ctx).Find(&statuses).Error
	return statuses, errors.Wrap(err, "failed to list statuses")
}

// CharacterLinks returns all characters-at-event rows
func (r *CatalogRepository) CharacterLinks(ctx context.Context) ([]models.CharactersAtEvent, error) {
	var links []models.CharactersAtEvent
	err := r.readOnlyDB.WithContext(ctx).Find(&links).Error
	return links, errors.Wrap(err, "failed to list character links")
}

// ActivityLinks returns all activities-for-event rows
func (r *CatalogRepository) ActivityLinks(ctx context.Context) ([]models.ActivitiesForEvent, error) {
	var links []models.ActivitiesForEvent
	err := r.readOnlyDB.WithContext(ctx).Find(&links).Error
	return links, errors.Wrap(err, "failed to list activity links")
}

// AddressByID loads one address
func (r *CatalogRepository) AddressByID(ctx context.Context, id uint) (*models.Address, error) {
	var address models.Address
	err := r.readOnlyDB.WithContext(ctx).First(&address, id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get address by ID")
	}
	return &address, nil
}

// PackageByID loads one package
func (r *CatalogRepository) PackageByID(ctx context.Context, id uint) (*models.Package, error) {
	var pkg models.Package
	err := r.readOnlyDB.WithContext(ctx).First(&pkg, id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get package by ID")
	}
	return &pkg, nil
}

// MaintenanceRepository supports the background worker jobs
type MaintenanceRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *gorm.DB, readOnlyDB *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db, readOnlyDB: readOnlyDB}
}

// OrphanAddressIDs finds addresses no event references. Rows like this were
// left behind by booking revisions that created the address before the rest
// of the workflow could still fail.
func (r *MaintenanceRepository) OrphanAddressIDs(ctx context.Context, olderThan time.Time) ([]uint, error) {
	var ids []uint
	err := r.readOnlyDB.WithContext(ctx).Table("addresses").
		Joins("LEFT JOIN events ON events.address_id = addresses.id").
		Where("events.id IS NULL AND addresses.created_at < ?", olderThan).
		Pluck("addresses.id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find orphaned addresses")
	}
	return ids, nil
}

// DeleteAddresses removes the given addresses and reports the count
func (r *MaintenanceRepository) DeleteAddresses(ctx context.Context, ids []uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Address{}, ids)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete addresses")
	}
	return result.RowsAffected, nil
}

// RecentEvents returns the most recently updated events, newest first
func (r *MaintenanceRepository) RecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.readOnlyDB.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent events")
	}
	return events, nil
}
