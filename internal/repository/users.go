// Package repository provides PostgreSQL persistence for users, plants and
// care logs. Every plant and log query is scoped to the owning user.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/PlantCare/internal/db"
	"github.com/atinyakov/PlantCare/internal/models"
)

const userColumns = `id, username, email, display_name, password_hash, is_active, is_staff, created_at`

// PostgresUserRepository stores user accounts.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB

	retrier *db.Retrier
}

// NewPostgresUserRepository creates a repository that runs every query
// through r.
func NewPostgresUserRepository(r *db.Retrier) *PostgresUserRepository {
	return &PostgresUserRepository{DB: r.DB, retrier: r}
}

// CreateUser inserts u and fills in its id and creation time.
// A taken username is reported as a validation error.
func (s *PostgresUserRepository) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := s.DB.QueryRowContext(ctx, `
			INSERT INTO users (username, email, display_name, password_hash, is_active, is_staff)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`, u.Username, u.Email, u.DisplayName, u.PasswordHash, u.IsActive, u.IsStaff).Scan(&u.ID, &u.CreatedAt)
		if db.IsUniqueViolation(err) {
			return errUsernameTaken
		}
		if err != nil {
			return fmt.Errorf("CreateUser: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername looks a user up by login name.
func (s *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetUserByID looks a user up by id.
func (s *PostgresUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// UpdateUser applies the non-nil members of upd and returns the new row.
func (s *PostgresUserRepository) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	var hash any
	if upd.PasswordHash != nil {
		hash = upd.PasswordHash
	}

	var u models.User
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		row := s.DB.QueryRowContext(ctx, `
			UPDATE users SET
				username = COALESCE($2, username),
				email = COALESCE($3, email),
				display_name = COALESCE($4, display_name),
				password_hash = COALESCE($5, password_hash)
			WHERE id = $1
			RETURNING `+userColumns,
			id, upd.Username, upd.Email, upd.DisplayName, hash)
		err := scanUser(row, &u)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return errUserNotFound
		case db.IsUniqueViolation(err):
			return errUsernameTaken
		case err != nil:
			return fmt.Errorf("UpdateUser: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the account. Plants and logs go with it.
func (s *PostgresUserRepository) DeleteUser(ctx context.Context, id int64) error {
	return s.retrier.Run(ctx, func(ctx context.Context) error {
		res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("DeleteUser: %w", err)
		}
		return requireAffected(res, errUserNotFound)
	})
}

// ListUsers returns every account ordered by id.
func (s *PostgresUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		users = make([]models.User, 0)
		rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
		if err != nil {
			return fmt.Errorf("ListUsers: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var u models.User
			if err := scanUser(rows, &u); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *PostgresUserRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.retrier.Run(ctx, func(ctx context.Context) error {
		err := scanUser(s.DB.QueryRowContext(ctx, query, arg), &u)
		if errors.Is(err, sql.ErrNoRows) {
			return errUserNotFound
		}
		if err != nil {
			return fmt.Errorf("getUser: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.PasswordHash, &u.IsActive, &u.IsStaff, &u.CreatedAt)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
