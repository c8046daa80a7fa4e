// Package models defines the core data structures for users, plants and
// their care logs, together with the enumerations and validation rules
// applied before anything is persisted.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the unique login name chosen by the user.
	Username string `json:"username"`
	// Email is optional.
	Email string `json:"email"`
	// DisplayName is an optional alias shown instead of the username.
	DisplayName string `json:"display_name"`
	// PasswordHash is the bcrypt hash of the user's password. It is never serialized.
	PasswordHash []byte `json:"-"`
	// IsActive users may log in.
	IsActive bool `json:"is_active"`
	// IsStaff marks administrative accounts.
	IsStaff bool `json:"is_staff"`
	// CreatedAt is set once at registration.
	CreatedAt time.Time `json:"date_joined"`
}

// UserPatch lists the account fields a user may change about themselves.
// Nil members are left untouched.
type UserPatch struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	DisplayName *string `json:"display_name"`
}

// Plant is a plant owned by a single user.
type Plant struct {
	ID                 int64              `json:"id"`
	Name               string             `json:"name"`
	Category           Category           `json:"category"`
	CareLevel          *string            `json:"care_level"`
	WateringSchedule   WateringSchedule   `json:"watering_schedule"`
	SunlightPreference SunlightPreference `json:"sunlight_preference"`
	Location           *string            `json:"location"`
	PotSize            PotSize            `json:"pot_size"`
	// AddedAt is set once on creation.
	AddedAt time.Time `json:"added_at"`
	// OwnerID references the owning User.
	OwnerID int64 `json:"owner"`
	// Logs is only populated when a single plant is retrieved.
	Logs []Log `json:"logs,omitempty"`
}

// Log records a single care activity for a plant.
type Log struct {
	ID int64 `json:"id"`
	// PlantID is fixed at creation.
	PlantID int64   `json:"plant"`
	LogType LogType `json:"log_type"`
	// Timestamp is set by the store and never edited.
	Timestamp     time.Time `json:"timestamp"`
	SunlightHours *float64  `json:"sunlight_hours"`
	// OwnerID always equals the parent plant's owner.
	OwnerID int64 `json:"owner"`
}

// CareSummary aggregates a plant's recent maintenance.
type CareSummary struct {
	PlantID          int64      `json:"plant"`
	Days             int        `json:"days"`
	LastWatered      *time.Time `json:"last_watered"`
	NeedsWater       bool       `json:"needs_water"`
	WaterCount       int        `json:"water_count"`
	FertilizeCount   int        `json:"fertilize_count"`
	PruneCount       int        `json:"prune_count"`
	AvgSunlightHours *float64   `json:"avg_sunlight_hours"`
}

// UserUpdate is a storage-level account change. PasswordHash is nil when
// the password is unchanged.
type UserUpdate struct {
	Username     *string
	Email        *string
	DisplayName  *string
	PasswordHash []byte
}

// LogStats are the raw aggregates behind a CareSummary.
type LogStats struct {
	WaterCount       int
	FertilizeCount   int
	PruneCount       int
	AvgSunlightHours *float64
	// LastWatered is the most recent watering of all time, not just the window.
	LastWatered *time.Time
}
