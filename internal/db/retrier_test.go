package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/atinyakov/PlantCare/internal/apperr"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"conn done", sql.ErrConnDone, true},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), true},
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"no rows", sql.ErrNoRows, false},
		{"plain", errors.New("boom"), false},
		{"deadline exceeded", fmt.Errorf("q: %w", context.DeadlineExceeded), false},
		{"canceled", fmt.Errorf("q: %w", context.Canceled), false},
		{"net timeout", &net.OpError{Op: "read", Err: errors.New("i/o timeout")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v; want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(errors.New("x")) {
		t.Error("plain error is not a unique violation")
	}
}

func newTestRetrier(t *testing.T) (*Retrier, sqlmock.Sqlmock) {
	t.Helper()
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { dbMock.Close() })

	r := NewRetrier(dbMock, nil)
	r.Policy.Delay = time.Millisecond
	return r, mock
}

func TestRetrier_RecoversFromTransientError(t *testing.T) {
	r, _ := newTestRetrier(t)
	retried := 0
	r.OnRetry = func() { retried++ }

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &pq.Error{Code: "08006", Message: "connection failure"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
	if retried != 2 {
		t.Errorf("retried = %d; want 2", retried)
	}
}

func TestRetrier_Exhausted(t *testing.T) {
	r, _ := newTestRetrier(t)

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return &pq.Error{Code: "08006", Message: "connection failure"}
	})
	if calls != DefaultAttempts {
		t.Errorf("calls = %d; want %d", calls, DefaultAttempts)
	}
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("error kind = %v; want unavailable", apperr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "database operation failed after 3 retries. Last error:") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRetrier_NonTransientNotRetried(t *testing.T) {
	r, _ := newTestRetrier(t)

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return errors.New("syntax error")
	})
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err.Error() != "database operation failed: syntax error" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRetrier_AppErrorPassesThrough(t *testing.T) {
	r, _ := newTestRetrier(t)

	want := apperr.NotFound("Plant not found.")
	err := r.Run(context.Background(), func(context.Context) error { return want })
	if err != want {
		t.Fatalf("Run = %v; want %v", err, want)
	}
}

func TestRetrier_ContextDeadlineNotRetried(t *testing.T) {
	r, mock := newTestRetrier(t)
	retried := 0
	r.OnRetry = func() { retried++ }

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	calls := 0
	err := r.Run(ctx, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("select plants: %w", ctx.Err())
	})
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
	if retried != 0 {
		t.Errorf("retried = %d; want 0", retried)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v; want wrapped deadline exceeded", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected reconnect ping: %v", err)
	}
}
