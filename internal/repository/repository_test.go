package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/PlantCare/internal/db"
)

func setupMock(t *testing.T) (*db.Retrier, sqlmock.Sqlmock, func()) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	r := db.NewRetrier(conn, nil)
	r.Policy.Delay = 0
	cleanup := func() {
		conn.Close()
	}
	return r, mock, cleanup
}

func ptr[T any](v T) *T { return &v }
