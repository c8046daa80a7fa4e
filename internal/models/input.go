package models

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/PlantCare/internal/apperr"
)

const (
	maxNameLen      = 100
	maxLocationLen  = 100
	maxCareLevelLen = 50
	// MaxSunlightHours is the inclusive upper bound for Log.SunlightHours.
	MaxSunlightHours = 24.0
)

// PlantInput is the payload accepted when creating a plant.
type PlantInput struct {
	Name               string             `json:"name"`
	Category           Category           `json:"category"`
	CareLevel          *string            `json:"care_level"`
	WateringSchedule   WateringSchedule   `json:"watering_schedule"`
	SunlightPreference SunlightPreference `json:"sunlight_preference"`
	Location           *string            `json:"location"`
	PotSize            PotSize            `json:"pot_size"`
}

// Normalize trims text fields, turns blank optionals into nil and applies
// the schema defaults for category and pot size.
func (in *PlantInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.CareLevel = blankToNil(in.CareLevel)
	in.Location = blankToNil(in.Location)
	if in.Category == "" {
		in.Category = CategoryFoliagePlant
	}
	if in.PotSize == "" {
		in.PotSize = PotMedium
	}
}

// Validate checks a normalized PlantInput. Unset watering schedule and
// sunlight preference are allowed; they are derived later.
func (in PlantInput) Validate() error {
	if in.Name == "" {
		return apperr.Invalid("name", "This field is required.")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLen {
		return apperr.Invalid("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLen))
	}
	if !in.Category.Valid() {
		return apperr.Invalid("category", fmt.Sprintf("Invalid category '%s'", in.Category))
	}
	if !in.PotSize.Valid() {
		return apperr.Invalid("pot_size", fmt.Sprintf("Invalid pot size '%s'", in.PotSize))
	}
	if in.WateringSchedule != "" && !in.WateringSchedule.Valid() {
		return apperr.Invalid("watering_schedule", fmt.Sprintf("Invalid watering schedule '%s'", in.WateringSchedule))
	}
	if in.SunlightPreference != "" && !in.SunlightPreference.Valid() {
		return apperr.Invalid("sunlight_preference", fmt.Sprintf("Invalid sunlight preference '%s'", in.SunlightPreference))
	}
	return validateText(in.CareLevel, in.Location)
}

// PlantPatch is a partial plant update. Only the listed fields are
// updatable; nil members are left unchanged.
type PlantPatch struct {
	Name               *string             `json:"name"`
	Category           *Category           `json:"category"`
	CareLevel          *string             `json:"care_level"`
	WateringSchedule   *WateringSchedule   `json:"watering_schedule"`
	SunlightPreference *SunlightPreference `json:"sunlight_preference"`
	Location           *string             `json:"location"`
	PotSize            *PotSize            `json:"pot_size"`
}

// Normalize treats empty strings as "not supplied".
func (p *PlantPatch) Normalize() {
	p.Name = blankToNil(p.Name)
	p.CareLevel = blankToNil(p.CareLevel)
	p.Location = blankToNil(p.Location)
	p.Category = blankEnumToNil(p.Category)
	p.WateringSchedule = blankEnumToNil(p.WateringSchedule)
	p.SunlightPreference = blankEnumToNil(p.SunlightPreference)
	p.PotSize = blankEnumToNil(p.PotSize)
}

// Validate checks every supplied member of a normalized patch.
func (p PlantPatch) Validate() error {
	if p.Name != nil && utf8.RuneCountInString(*p.Name) > maxNameLen {
		return apperr.Invalid("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLen))
	}
	if p.Category != nil && !p.Category.Valid() {
		return apperr.Invalid("category", fmt.Sprintf("Invalid category '%s'", *p.Category))
	}
	if p.PotSize != nil && !p.PotSize.Valid() {
		return apperr.Invalid("pot_size", fmt.Sprintf("Invalid pot size '%s'", *p.PotSize))
	}
	if p.WateringSchedule != nil && !p.WateringSchedule.Valid() {
		return apperr.Invalid("watering_schedule", fmt.Sprintf("Invalid watering schedule '%s'", *p.WateringSchedule))
	}
	if p.SunlightPreference != nil && !p.SunlightPreference.Valid() {
		return apperr.Invalid("sunlight_preference", fmt.Sprintf("Invalid sunlight preference '%s'", *p.SunlightPreference))
	}
	return validateText(p.CareLevel, p.Location)
}

// Apply copies the supplied members onto pl.
func (p PlantPatch) Apply(pl *Plant) {
	if p.Name != nil {
		pl.Name = *p.Name
	}
	if p.Category != nil {
		pl.Category = *p.Category
	}
	if p.CareLevel != nil {
		pl.CareLevel = p.CareLevel
	}
	if p.WateringSchedule != nil {
		pl.WateringSchedule = *p.WateringSchedule
	}
	if p.SunlightPreference != nil {
		pl.SunlightPreference = *p.SunlightPreference
	}
	if p.Location != nil {
		pl.Location = p.Location
	}
	if p.PotSize != nil {
		pl.PotSize = *p.PotSize
	}
}

// LogInput is the payload accepted when creating a log.
type LogInput struct {
	PlantID       int64    `json:"plant"`
	LogType       LogType  `json:"log_type"`
	SunlightHours *float64 `json:"sunlight_hours"`
}

// Validate checks the log type and the sunlight range.
func (in LogInput) Validate() error {
	if in.PlantID <= 0 {
		return apperr.Invalid("plant", "This field is required.")
	}
	if !in.LogType.Valid() {
		return apperr.Invalid("log_type", fmt.Sprintf("\"%s\" is not a valid choice.", in.LogType))
	}
	if in.SunlightHours != nil {
		return ValidateSunlightHours(*in.SunlightHours)
	}
	return nil
}

// LogPatch is a partial log update.
type LogPatch struct {
	LogType       *LogType `json:"log_type"`
	SunlightHours *float64 `json:"sunlight_hours"`
}

// Normalize treats an empty log type as "not supplied".
func (p *LogPatch) Normalize() {
	p.LogType = blankEnumToNil(p.LogType)
}

// Validate checks every supplied member.
func (p LogPatch) Validate() error {
	if p.LogType != nil && !p.LogType.Valid() {
		return apperr.Invalid("log_type", fmt.Sprintf("\"%s\" is not a valid choice.", *p.LogType))
	}
	if p.SunlightHours != nil {
		return ValidateSunlightHours(*p.SunlightHours)
	}
	return nil
}

// Apply copies the supplied members onto l.
func (p LogPatch) Apply(l *Log) {
	if p.LogType != nil {
		l.LogType = *p.LogType
	}
	if p.SunlightHours != nil {
		h := *p.SunlightHours
		l.SunlightHours = &h
	}
}

// ValidateSunlightHours enforces 0 <= h <= 24.
func ValidateSunlightHours(h float64) error {
	if math.IsNaN(h) || h < 0 || h > MaxSunlightHours {
		return apperr.Invalid("sunlight_hours", "Sunlight hours must be between 0 and 24")
	}
	return nil
}

func validateText(careLevel, location *string) error {
	if careLevel != nil && utf8.RuneCountInString(*careLevel) > maxCareLevelLen {
		return apperr.Invalid("care_level", fmt.Sprintf("Ensure this field has no more than %d characters.", maxCareLevelLen))
	}
	if location != nil && utf8.RuneCountInString(*location) > maxLocationLen {
		return apperr.Invalid("location", fmt.Sprintf("Ensure this field has no more than %d characters.", maxLocationLen))
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func blankEnumToNil[T ~string](v *T) *T {
	if v == nil || strings.TrimSpace(string(*v)) == "" {
		return nil
	}
	return v
}
