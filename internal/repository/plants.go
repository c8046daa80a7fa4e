package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/PlantCare/internal/db"
	"github.com/atinyakov/PlantCare/internal/models"
)

const plantColumns = `id, name, category, care_level, watering_schedule, sunlight_preference, location, pot_size, added_at, owner_id`

// PostgresPlantRepository stores plants.
type PostgresPlantRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB

	retrier *db.Retrier
}

// NewPostgresPlantRepository creates a repository that runs every query
// through r.
func NewPostgresPlantRepository(r *db.Retrier) *PostgresPlantRepository {
	return &PostgresPlantRepository{DB: r.DB, retrier: r}
}

// ListPlants returns the owner's plants, newest first.
func (s *PostgresPlantRepository) ListPlants(ctx context.Context, ownerID int64) ([]models.Plant, error) {
	var plants []models.Plant
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		plants = make([]models.Plant, 0)
		rows, err := s.DB.QueryContext(ctx, `
			SELECT `+plantColumns+` FROM plants
			WHERE owner_id = $1
			ORDER BY added_at DESC, id DESC
		`, ownerID)
		if err != nil {
			return fmt.Errorf("ListPlants: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p models.Plant
			if err := scanPlant(rows, &p); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			plants = append(plants, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return plants, nil
}

// CreatePlant inserts p and fills in its id and creation time.
func (s *PostgresPlantRepository) CreatePlant(ctx context.Context, p models.Plant) (*models.Plant, error) {
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := s.DB.QueryRowContext(ctx, `
			INSERT INTO plants (name, category, care_level, watering_schedule, sunlight_preference, location, pot_size, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, added_at
		`, p.Name, string(p.Category), p.CareLevel, string(p.WateringSchedule),
			string(p.SunlightPreference), p.Location, string(p.PotSize), p.OwnerID,
		).Scan(&p.ID, &p.AddedAt)
		if err != nil {
			return fmt.Errorf("CreatePlant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlant returns the plant if ownerID owns it.
func (s *PostgresPlantRepository) GetPlant(ctx context.Context, ownerID, id int64) (*models.Plant, error) {
	var p models.Plant
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := scanPlant(s.DB.QueryRowContext(ctx, `
			SELECT `+plantColumns+` FROM plants WHERE id = $1 AND owner_id = $2
		`, id, ownerID), &p)
		if errors.Is(err, sql.ErrNoRows) {
			return errPlantNotFound
		}
		if err != nil {
			return fmt.Errorf("GetPlant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlant applies the supplied members of patch to a plant ownerID owns.
func (s *PostgresPlantRepository) UpdatePlant(ctx context.Context, ownerID, id int64, patch models.PlantPatch) (*models.Plant, error) {
	var p models.Plant
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := scanPlant(s.DB.QueryRowContext(ctx, `
			UPDATE plants SET
				name = COALESCE($3, name),
				category = COALESCE($4, category),
				care_level = COALESCE($5, care_level),
				watering_schedule = COALESCE($6, watering_schedule),
				sunlight_preference = COALESCE($7, sunlight_preference),
				location = COALESCE($8, location),
				pot_size = COALESCE($9, pot_size)
			WHERE id = $1 AND owner_id = $2
			RETURNING `+plantColumns,
			id, ownerID,
			patch.Name, nullable(patch.Category), patch.CareLevel,
			nullable(patch.WateringSchedule), nullable(patch.SunlightPreference),
			patch.Location, nullable(patch.PotSize),
		), &p)
		if errors.Is(err, sql.ErrNoRows) {
			return errPlantNotFound
		}
		if err != nil {
			return fmt.Errorf("UpdatePlant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlant removes a plant ownerID owns. Its logs are removed by the
// foreign key cascade.
func (s *PostgresPlantRepository) DeletePlant(ctx context.Context, ownerID, id int64) error {
	return s.retrier.Run(ctx, func(ctx context.Context) error {
		res, err := s.DB.ExecContext(ctx, `DELETE FROM plants WHERE id = $1 AND owner_id = $2`, id, ownerID)
		if err != nil {
			return fmt.Errorf("DeletePlant: %w", err)
		}
		return requireAffected(res, errPlantNotFound)
	})
}

// PlantOwner returns the owner of any plant. It is used only to tell a
// foreign plant from a missing one when creating logs.
func (s *PostgresPlantRepository) PlantOwner(ctx context.Context, id int64) (int64, error) {
	var owner sql.NullInt64
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := s.DB.QueryRowContext(ctx, `SELECT owner_id FROM plants WHERE id = $1`, id).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return errPlantNotFound
		}
		if err != nil {
			return fmt.Errorf("PlantOwner: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return owner.Int64, nil
}

func scanPlant(row scanner, p *models.Plant) error {
	var owner sql.NullInt64
	if err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.CareLevel, &p.WateringSchedule,
		&p.SunlightPreference, &p.Location, &p.PotSize, &p.AddedAt, &owner,
	); err != nil {
		return err
	}
	p.OwnerID = owner.Int64
	return nil
}

// nullable turns a typed string pointer into a driver value, nil when unset.
func nullable[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
