package models

import (
	"math"
	"strings"
	"testing"

	"github.com/atinyakov/PlantCare/internal/apperr"
)

func ptr[T any](v T) *T { return &v }

func TestValidateSunlightHours(t *testing.T) {
	tests := []struct {
		hours float64
		ok    bool
	}{
		{0, true},
		{6, true},
		{24, true},
		{-0.01, false},
		{24.01, false},
		{math.NaN(), false},
	}
	for _, tt := range tests {
		err := ValidateSunlightHours(tt.hours)
		if tt.ok && err != nil {
			t.Errorf("ValidateSunlightHours(%v) = %v; want nil", tt.hours, err)
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ValidateSunlightHours(%v) = nil; want error", tt.hours)
				continue
			}
			if !apperr.Is(err, apperr.KindInvalid) {
				t.Errorf("ValidateSunlightHours(%v) kind = %v; want invalid", tt.hours, apperr.KindOf(err))
			}
		}
	}
}

func TestPlantInput_NormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        PlantInput
		wantField string
	}{
		{name: "minimal", in: PlantInput{Name: "Aloe", Category: CategorySucculent}},
		{name: "defaults category", in: PlantInput{Name: "Pothos"}},
		{name: "missing name", in: PlantInput{Name: "   ", Category: CategoryHerb}, wantField: "name"},
		{name: "long name", in: PlantInput{Name: strings.Repeat("a", 101)}, wantField: "name"},
		{name: "bad category", in: PlantInput{Name: "X", Category: "tree"}, wantField: "category"},
		{name: "bad pot", in: PlantInput{Name: "X", PotSize: "huge"}, wantField: "pot_size"},
		{name: "bad watering", in: PlantInput{Name: "X", WateringSchedule: "hourly"}, wantField: "watering_schedule"},
		{name: "bad sunlight", in: PlantInput{Name: "X", SunlightPreference: "moonlight"}, wantField: "sunlight_preference"},
		{name: "long care level", in: PlantInput{Name: "X", CareLevel: ptr(strings.Repeat("c", 51))}, wantField: "care_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Normalize()
			err := in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			e, ok := apperr.As(err)
			if !ok || e.Field != tt.wantField {
				t.Fatalf("error = %v; want invalid field %q", err, tt.wantField)
			}
		})
	}
}

func TestPlantInput_NormalizeDefaults(t *testing.T) {
	in := PlantInput{Name: "  Fern  ", Location: ptr("  "), CareLevel: ptr(" easy ")}
	in.Normalize()

	if in.Name != "Fern" {
		t.Errorf("Name = %q", in.Name)
	}
	if in.Category != CategoryFoliagePlant {
		t.Errorf("Category = %q; want foliage_plant", in.Category)
	}
	if in.PotSize != PotMedium {
		t.Errorf("PotSize = %q; want medium", in.PotSize)
	}
	if in.Location != nil {
		t.Errorf("blank location should be nil, got %q", *in.Location)
	}
	if in.CareLevel == nil || *in.CareLevel != "easy" {
		t.Errorf("CareLevel = %v", in.CareLevel)
	}
}

func TestPlantPatch_BlankMeansUnset(t *testing.T) {
	p := PlantPatch{
		Category:  ptr(Category("")),
		CareLevel: ptr(""),
		Location:  ptr("Kitchen"),
		PotSize:   ptr(PotSize("")),
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	pl := Plant{Category: CategoryFern, CareLevel: ptr("hard"), PotSize: PotLarge}
	p.Apply(&pl)

	if pl.Category != CategoryFern || pl.PotSize != PotLarge {
		t.Errorf("blank enum members must not change the plant: %+v", pl)
	}
	if pl.CareLevel == nil || *pl.CareLevel != "hard" {
		t.Errorf("blank care level must not change the plant")
	}
	if pl.Location == nil || *pl.Location != "Kitchen" {
		t.Errorf("Location = %v; want Kitchen", pl.Location)
	}
}

func TestPlantPatch_InvalidEnum(t *testing.T) {
	p := PlantPatch{PotSize: ptr(PotSize("giant"))}
	p.Normalize()
	if err := p.Validate(); !apperr.Is(err, apperr.KindInvalid) {
		t.Fatalf("Validate = %v; want invalid", err)
	}
}

func TestLogInput_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   LogInput
		ok   bool
	}{
		{"water", LogInput{PlantID: 1, LogType: LogWater}, true},
		{"boundary 0", LogInput{PlantID: 1, LogType: LogPrune, SunlightHours: ptr(0.0)}, true},
		{"boundary 24", LogInput{PlantID: 1, LogType: LogFertilize, SunlightHours: ptr(24.0)}, true},
		{"too many hours", LogInput{PlantID: 1, LogType: LogWater, SunlightHours: ptr(24.01)}, false},
		{"negative hours", LogInput{PlantID: 1, LogType: LogWater, SunlightHours: ptr(-0.01)}, false},
		{"health issue is not persisted", LogInput{PlantID: 1, LogType: "health_issue"}, false},
		{"missing plant", LogInput{LogType: LogWater}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v; ok want %v", err, tt.ok)
			}
		})
	}
}

func TestLogPatch_ValidateAndApply(t *testing.T) {
	bad := LogPatch{SunlightHours: ptr(25.0)}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected out-of-range sunlight to be rejected")
	}

	p := LogPatch{LogType: ptr(LogType("")), SunlightHours: ptr(3.5)}
	p.Normalize()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	l := Log{LogType: LogWater}
	p.Apply(&l)
	if l.LogType != LogWater {
		t.Errorf("LogType = %q; want unchanged", l.LogType)
	}
	if l.SunlightHours == nil || *l.SunlightHours != 3.5 {
		t.Errorf("SunlightHours = %v; want 3.5", l.SunlightHours)
	}
}
