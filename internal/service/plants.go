package service

import (
	"context"
	"time"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/models"
)

// Summary defaults.
const (
	DefaultSummaryDays        = 30
	DefaultWaterThresholdDays = 7
)

// PlantRepository defines the owner-scoped plant persistence operations.
// Foreign and missing plants both yield a not-found error.
type PlantRepository interface {
	ListPlants(ctx context.Context, ownerID int64) ([]models.Plant, error)
	CreatePlant(ctx context.Context, p models.Plant) (*models.Plant, error)
	GetPlant(ctx context.Context, ownerID, id int64) (*models.Plant, error)
	UpdatePlant(ctx context.Context, ownerID, id int64, patch models.PlantPatch) (*models.Plant, error)
	DeletePlant(ctx context.Context, ownerID, id int64) error
	// PlantOwner is not owner-scoped; it tells a foreign plant from a
	// missing one.
	PlantOwner(ctx context.Context, id int64) (int64, error)
}

// CareCatalog fills unset care fields from the category template.
type CareCatalog interface {
	Fill(in *models.PlantInput)
}

// PlantService implements plant operations for an authenticated owner.
type PlantService struct {
	plants PlantRepository
	logs   LogRepository
	care   CareCatalog
	now    func() time.Time
}

// NewPlantService constructs a PlantService.
func NewPlantService(plants PlantRepository, logs LogRepository, care CareCatalog) *PlantService {
	return &PlantService{plants: plants, logs: logs, care: care, now: time.Now}
}

// List returns the owner's plants, newest first.
func (s *PlantService) List(ctx context.Context, ownerID int64) ([]models.Plant, error) {
	return s.plants.ListPlants(ctx, ownerID)
}

// Create validates in, fills care defaults and stores the plant for ownerID.
func (s *PlantService) Create(ctx context.Context, ownerID int64, in models.PlantInput) (*models.Plant, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.care.Fill(&in)

	return s.plants.CreatePlant(ctx, models.Plant{
		Name:               in.Name,
		Category:           in.Category,
		CareLevel:          in.CareLevel,
		WateringSchedule:   in.WateringSchedule,
		SunlightPreference: in.SunlightPreference,
		Location:           in.Location,
		PotSize:            in.PotSize,
		OwnerID:            ownerID,
	})
}

// Get returns one plant with its logs, newest first.
func (s *PlantService) Get(ctx context.Context, ownerID, id int64) (*models.Plant, error) {
	p, err := s.plants.GetPlant(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListLogsForPlant(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	p.Logs = logs
	return p, nil
}

// Update applies the supplied fields of patch. Blank values are ignored.
func (s *PlantService) Update(ctx context.Context, ownerID, id int64, patch models.PlantPatch) (*models.Plant, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.plants.UpdatePlant(ctx, ownerID, id, patch)
}

// Delete removes the plant and its logs.
func (s *PlantService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.plants.DeletePlant(ctx, ownerID, id)
}

// Summary reports the plant's maintenance over the last days days.
// The plant needs water when it was never watered or not within
// thresholdDays.
func (s *PlantService) Summary(ctx context.Context, ownerID, id int64, days, thresholdDays int) (*models.CareSummary, error) {
	if days <= 0 {
		return nil, apperr.Invalid("days", "Must be a positive number of days.")
	}
	if thresholdDays <= 0 {
		return nil, apperr.Invalid("threshold", "Must be a positive number of days.")
	}
	if _, err := s.plants.GetPlant(ctx, ownerID, id); err != nil {
		return nil, err
	}

	now := s.now()
	st, err := s.logs.LogStats(ctx, ownerID, id, now.AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	needsWater := st.LastWatered == nil ||
		now.Sub(*st.LastWatered) >= time.Duration(thresholdDays)*24*time.Hour

	return &models.CareSummary{
		PlantID:          id,
		Days:             days,
		LastWatered:      st.LastWatered,
		NeedsWater:       needsWater,
		WaterCount:       st.WaterCount,
		FertilizeCount:   st.FertilizeCount,
		PruneCount:       st.PruneCount,
		AvgSunlightHours: st.AvgSunlightHours,
	}, nil
}
