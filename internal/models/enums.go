package models

import "slices"

// Category is the botanical grouping used to pick care defaults.
type Category string

const (
	CategorySucculent      Category = "succulent"
	CategoryHerb           Category = "herb"
	CategoryFern           Category = "fern"
	CategoryFloweringPlant Category = "flowering_plant"
	CategoryVegetable      Category = "vegetable"
	CategoryFoliagePlant   Category = "foliage_plant"
)

// Categories lists every valid Category.
var Categories = []Category{
	CategorySucculent,
	CategoryHerb,
	CategoryFern,
	CategoryFloweringPlant,
	CategoryVegetable,
	CategoryFoliagePlant,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return slices.Contains(Categories, c) }

// PotSize is the size of a plant's container.
type PotSize string

const (
	PotSmall  PotSize = "small"
	PotMedium PotSize = "medium"
	PotLarge  PotSize = "large"
	PotXLarge PotSize = "x-large"
)

// PotSizes lists every valid PotSize.
var PotSizes = []PotSize{PotSmall, PotMedium, PotLarge, PotXLarge}

// Valid reports whether p is a known pot size.
func (p PotSize) Valid() bool { return slices.Contains(PotSizes, p) }

// WateringSchedule is how often a plant should be watered.
type WateringSchedule string

const (
	WaterDaily         WateringSchedule = "daily"
	WaterTwiceWeekly   WateringSchedule = "twice_weekly"
	WaterWeekly        WateringSchedule = "weekly"
	WaterBiweekly      WateringSchedule = "biweekly"
	WaterMonthly       WateringSchedule = "monthly"
	WaterInfrequent    WateringSchedule = "infrequent"
	WaterModerate      WateringSchedule = "moderate"
	WaterConsistent    WateringSchedule = "consistent"
	WaterWhenSoilIsDry WateringSchedule = "when_soil_is_dry"
	WaterFrequent      WateringSchedule = "frequent"
	WaterOccasionally  WateringSchedule = "occasionally"
	WaterNone          WateringSchedule = "none"
)

// DefaultWateringSchedule applies when neither the caller nor a care template supplies one.
const DefaultWateringSchedule = WaterWeekly

// WateringSchedules lists every valid WateringSchedule.
var WateringSchedules = []WateringSchedule{
	WaterDaily, WaterTwiceWeekly, WaterWeekly, WaterBiweekly, WaterMonthly,
	WaterInfrequent, WaterModerate, WaterConsistent, WaterWhenSoilIsDry,
	WaterFrequent, WaterOccasionally, WaterNone,
}

// Valid reports whether w is a known schedule.
func (w WateringSchedule) Valid() bool { return slices.Contains(WateringSchedules, w) }

// SunlightPreference is the light a plant wants.
type SunlightPreference string

const (
	SunFull             SunlightPreference = "full_sun"
	SunPartial          SunlightPreference = "partial_sun"
	ShadePartial        SunlightPreference = "partial_shade"
	ShadeFull           SunlightPreference = "full_shade"
	LightBrightIndirect SunlightPreference = "bright_indirect_light"
	LightIndirect       SunlightPreference = "indirect_light"
	LightLow            SunlightPreference = "low_light"
	LightMedium         SunlightPreference = "medium_light"
)

// DefaultSunlightPreference applies when neither the caller nor a care template supplies one.
const DefaultSunlightPreference = LightBrightIndirect

// SunlightPreferences lists every valid SunlightPreference.
var SunlightPreferences = []SunlightPreference{
	SunFull, SunPartial, ShadePartial, ShadeFull,
	LightBrightIndirect, LightIndirect, LightLow, LightMedium,
}

// Valid reports whether s is a known preference.
func (s SunlightPreference) Valid() bool { return slices.Contains(SunlightPreferences, s) }

// LogType is the kind of care activity recorded.
type LogType string

const (
	LogWater     LogType = "water"
	LogFertilize LogType = "fertilize"
	LogPrune     LogType = "prune"
)

// LogTypes lists every valid LogType.
var LogTypes = []LogType{LogWater, LogFertilize, LogPrune}

// Valid reports whether t is a known log type.
func (t LogType) Valid() bool { return slices.Contains(LogTypes, t) }
