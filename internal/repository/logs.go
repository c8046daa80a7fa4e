package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/PlantCare/internal/db"
	"github.com/atinyakov/PlantCare/internal/models"
)

const logColumns = `l.id, l.plant_id, l.log_type, l.timestamp, l.sunlight_hours, l.owner_id`

// PostgresLogRepository stores care logs. Visibility follows the parent
// plant's owner.
type PostgresLogRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB

	retrier *db.Retrier
}

// NewPostgresLogRepository creates a repository that runs every query
// through r.
func NewPostgresLogRepository(r *db.Retrier) *PostgresLogRepository {
	return &PostgresLogRepository{DB: r.DB, retrier: r}
}

// ListLogs returns every log on plants ownerID owns, newest first.
func (s *PostgresLogRepository) ListLogs(ctx context.Context, ownerID int64) ([]models.Log, error) {
	return s.queryLogs(ctx, `
		SELECT `+logColumns+` FROM logs l
		JOIN plants p ON p.id = l.plant_id
		WHERE p.owner_id = $1
		ORDER BY l.timestamp DESC, l.id DESC
	`, ownerID)
}

// ListLogsForPlant returns the logs of one plant ownerID owns, newest first.
// It does not distinguish a missing plant from an empty one.
func (s *PostgresLogRepository) ListLogsForPlant(ctx context.Context, ownerID, plantID int64) ([]models.Log, error) {
	return s.queryLogs(ctx, `
		SELECT `+logColumns+` FROM logs l
		JOIN plants p ON p.id = l.plant_id
		WHERE p.owner_id = $1 AND l.plant_id = $2
		ORDER BY l.timestamp DESC, l.id DESC
	`, ownerID, plantID)
}

// CreateLog inserts l and fills in its id and timestamp.
func (s *PostgresLogRepository) CreateLog(ctx context.Context, l models.Log) (*models.Log, error) {
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := s.DB.QueryRowContext(ctx, `
			INSERT INTO logs (plant_id, log_type, sunlight_hours, owner_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, timestamp
		`, l.PlantID, string(l.LogType), l.SunlightHours, l.OwnerID).Scan(&l.ID, &l.Timestamp)
		if err != nil {
			return fmt.Errorf("CreateLog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLog returns the log if ownerID owns its plant.
func (s *PostgresLogRepository) GetLog(ctx context.Context, ownerID, id int64) (*models.Log, error) {
	var l models.Log
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := scanLog(s.DB.QueryRowContext(ctx, `
			SELECT `+logColumns+` FROM logs l
			JOIN plants p ON p.id = l.plant_id
			WHERE l.id = $1 AND p.owner_id = $2
		`, id, ownerID), &l)
		if errors.Is(err, sql.ErrNoRows) {
			return errLogNotFound
		}
		if err != nil {
			return fmt.Errorf("GetLog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLog applies the supplied members of patch to a log ownerID owns.
func (s *PostgresLogRepository) UpdateLog(ctx context.Context, ownerID, id int64, patch models.LogPatch) (*models.Log, error) {
	var l models.Log
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := scanLog(s.DB.QueryRowContext(ctx, `
			UPDATE logs l SET
				log_type = COALESCE($3, l.log_type),
				sunlight_hours = COALESCE($4, l.sunlight_hours)
			FROM plants p
			WHERE l.id = $1 AND p.id = l.plant_id AND p.owner_id = $2
			RETURNING `+logColumns,
			id, ownerID, nullable(patch.LogType), patch.SunlightHours,
		), &l)
		if errors.Is(err, sql.ErrNoRows) {
			return errLogNotFound
		}
		if err != nil {
			return fmt.Errorf("UpdateLog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLog removes a log ownerID owns.
func (s *PostgresLogRepository) DeleteLog(ctx context.Context, ownerID, id int64) error {
	return s.retrier.Run(ctx, func(ctx context.Context) error {
		res, err := s.DB.ExecContext(ctx, `
			DELETE FROM logs l USING plants p
			WHERE l.id = $1 AND p.id = l.plant_id AND p.owner_id = $2
		`, id, ownerID)
		if err != nil {
			return fmt.Errorf("DeleteLog: %w", err)
		}
		return requireAffected(res, errLogNotFound)
	})
}

// LogStats aggregates a plant's logs since the given time. The last
// watering is taken over the plant's whole history.
func (s *PostgresLogRepository) LogStats(ctx context.Context, ownerID, plantID int64, since time.Time) (models.LogStats, error) {
	var st models.LogStats
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := s.DB.QueryRowContext(ctx, `
			SELECT
				COUNT(*) FILTER (WHERE l.log_type = 'water' AND l.timestamp >= $3),
				COUNT(*) FILTER (WHERE l.log_type = 'fertilize' AND l.timestamp >= $3),
				COUNT(*) FILTER (WHERE l.log_type = 'prune' AND l.timestamp >= $3),
				AVG(l.sunlight_hours) FILTER (WHERE l.timestamp >= $3),
				MAX(l.timestamp) FILTER (WHERE l.log_type = 'water')
			FROM logs l
			JOIN plants p ON p.id = l.plant_id
			WHERE l.plant_id = $1 AND p.owner_id = $2
		`, plantID, ownerID, since).Scan(
			&st.WaterCount, &st.FertilizeCount, &st.PruneCount, &st.AvgSunlightHours, &st.LastWatered,
		)
		if err != nil {
			return fmt.Errorf("LogStats: %w", err)
		}
		return nil
	})
	return st, err
}

func (s *PostgresLogRepository) queryLogs(ctx context.Context, query string, args ...any) ([]models.Log, error) {
	var logs []models.Log
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		logs = make([]models.Log, 0)
		rows, err := s.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("queryLogs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var l models.Log
			if err := scanLog(rows, &l); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			logs = append(logs, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func scanLog(row scanner, l *models.Log) error {
	var owner sql.NullInt64
	if err := row.Scan(&l.ID, &l.PlantID, &l.LogType, &l.Timestamp, &l.SunlightHours, &owner); err != nil {
		return err
	}
	l.OwnerID = owner.Int64
	return nil
}
