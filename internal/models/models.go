package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Character represents a performer that can be booked for an event
type Character struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null;uniqueIndex" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`
}

// Activity represents a bookable activity, same shape as Character but an
// independent namespace
type Activity struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null;uniqueIndex" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`
}

// RosterRecord is the entity-agnostic view of a Character or Activity row.
// The roster repository and service operate on this shape for both tables.
type RosterRecord struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `gorm:"column:is_active" json:"isActive"`
}

// Address is created fresh per booking and owned by exactly one event
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	LineOne   string    `gorm:"not null" json:"lineOne"`
	LineTwo   string    `json:"lineTwo"`
	City      string    `gorm:"not null" json:"city"`
	State     string    `gorm:"not null" json:"state"`
}

// Package is read-only reference data resolved by name during booking
type Package struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex" json:"name"`
}

// Status is the lifecycle state of an event
type Status struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex" json:"name"`
}

// Event is the booking record
type Event struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Email             string    `gorm:"not null" json:"email"`
	ParentFirstName   string    `gorm:"not null" json:"parentFirstName"`
	ParentLastName    string    `gorm:"not null" json:"parentLastName"`
	PhoneNumber       int64     `gorm:"not null" json:"phoneNumber"`
	DateTime          time.Time `gorm:"not null" json:"dateTime"`
	AddressID         uint      `gorm:"not null" json:"addressId"`
	Indoors           bool      `gorm:"not null" json:"indoors"`
	PackageID         uint      `gorm:"not null" json:"packageId"`
	Participants      int       `gorm:"not null" json:"participants"`
	MinParticipantAge int       `gorm:"not null" json:"minParticipantAge"`
	MaxParticipantAge int       `gorm:"not null" json:"maxParticipantAge"`
	BirthdayChildName string    `json:"birthdayChildName"`
	BirthdayChildAge  int       `json:"birthdayChildAge"`
	FirstInteraction  bool      `json:"firstInteraction"`
	Notes             string    `json:"notes"`
	CouponCode        string    `json:"couponCode"`
	ReferralCode      string    `json:"referralCode"`
	HowDidYouFindUs   string    `json:"howDidYouFindUs"`
	StatusID          uint      `gorm:"not null" json:"statusId"`
	Address           Address   `gorm:"foreignKey:AddressID" json:"-"`
	Package           Package   `gorm:"foreignKey:PackageID" json:"-"`
	Status            Status    `gorm:"foreignKey:StatusID" json:"-"`
}

// CharactersAtEvent links one character to one event
type CharactersAtEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"not null;index" json:"eventId"`
	CharacterID uint      `gorm:"not null;index" json:"characterId"`
	Event       Event     `gorm:"foreignKey:EventID" json:"-"`
	Character   Character `gorm:"foreignKey:CharacterID" json:"-"`
}

// ActivitiesForEvent links one activity to one event
type ActivitiesForEvent struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	EventID    uint     `gorm:"not null;index" json:"eventId"`
	ActivityID uint     `gorm:"not null;index" json:"activityId"`
	Event      Event    `gorm:"foreignKey:EventID" json:"-"`
	Activity   Activity `gorm:"foreignKey:ActivityID" json:"-"`
}

// BatchResult reports the outcome of a multi-row insert or update
type BatchResult struct {
	Count int64 `json:"count"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Character{},
		&Activity{},
		&Address{},
		&Package{},
		&Status{},
		&Event{},
		&CharactersAtEvent{},
		&ActivitiesForEvent{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
