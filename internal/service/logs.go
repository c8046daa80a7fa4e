package service

import (
	"context"
	"time"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/models"
)

// LogRepository defines the care log persistence operations. Visibility
// follows the owner of the parent plant.
type LogRepository interface {
	ListLogs(ctx context.Context, ownerID int64) ([]models.Log, error)
	ListLogsForPlant(ctx context.Context, ownerID, plantID int64) ([]models.Log, error)
	CreateLog(ctx context.Context, l models.Log) (*models.Log, error)
	GetLog(ctx context.Context, ownerID, id int64) (*models.Log, error)
	UpdateLog(ctx context.Context, ownerID, id int64, patch models.LogPatch) (*models.Log, error)
	DeleteLog(ctx context.Context, ownerID, id int64) error
	LogStats(ctx context.Context, ownerID, plantID int64, since time.Time) (models.LogStats, error)
}

// LogService implements care log operations for an authenticated owner.
type LogService struct {
	logs   LogRepository
	plants PlantRepository
}

// NewLogService constructs a LogService.
func NewLogService(logs LogRepository, plants PlantRepository) *LogService {
	return &LogService{logs: logs, plants: plants}
}

// List returns every log on the owner's plants.
func (s *LogService) List(ctx context.Context, ownerID int64) ([]models.Log, error) {
	return s.logs.ListLogs(ctx, ownerID)
}

// ListForPlant returns the logs of one plant. A foreign or missing plant
// is not found.
func (s *LogService) ListForPlant(ctx context.Context, ownerID, plantID int64) ([]models.Log, error) {
	if _, err := s.plants.GetPlant(ctx, ownerID, plantID); err != nil {
		return nil, err
	}
	return s.logs.ListLogsForPlant(ctx, ownerID, plantID)
}

// Create records a care activity. A missing plant is not found; a plant
// owned by someone else is forbidden. The log always belongs to the
// plant's owner.
func (s *LogService) Create(ctx context.Context, ownerID int64, in models.LogInput) (*models.Log, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	plantOwner, err := s.plants.PlantOwner(ctx, in.PlantID)
	if err != nil {
		return nil, err
	}
	if plantOwner != ownerID {
		return nil, apperr.Forbidden("You do not have permission to add logs to this plant.")
	}

	return s.logs.CreateLog(ctx, models.Log{
		PlantID:       in.PlantID,
		LogType:       in.LogType,
		SunlightHours: in.SunlightHours,
		OwnerID:       plantOwner,
	})
}

// Get returns one log.
func (s *LogService) Get(ctx context.Context, ownerID, id int64) (*models.Log, error) {
	return s.logs.GetLog(ctx, ownerID, id)
}

// Update changes the log type or sunlight hours.
func (s *LogService) Update(ctx context.Context, ownerID, id int64, patch models.LogPatch) (*models.Log, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.logs.UpdateLog(ctx, ownerID, id, patch)
}

// Delete removes one log.
func (s *LogService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.logs.DeleteLog(ctx, ownerID, id)
}
