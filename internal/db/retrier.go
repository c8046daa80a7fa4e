package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/retry"
)

// Defaults for storage retries.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Retrier runs storage operations, retrying transient connection failures
// and converting every other driver error into an application error.
type Retrier struct {
	DB     *sql.DB
	Policy retry.Policy
	// OnRetry, if set, is called once per retried attempt.
	OnRetry func()

	log *zap.Logger
}

// NewRetrier returns a Retrier with the default bound and delay.
func NewRetrier(conn *sql.DB, log *zap.Logger) *Retrier {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Retrier{DB: conn, log: log}
	r.Policy = retry.Policy{
		MaxAttempts: DefaultAttempts,
		Delay:       DefaultDelay,
		Retryable:   IsTransient,
		BeforeRetry: r.reconnect,
	}
	return r
}

// Run executes op under the retry policy. Application errors returned by op
// pass through untouched.
func (r *Retrier) Run(ctx context.Context, op func(ctx context.Context) error) error {
	err := r.Policy.Do(ctx, op)
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		r.log.Error("database retries exhausted",
			zap.Int("attempts", exhausted.Attempts),
			zap.Error(exhausted.Last),
		)
		return apperr.Unavailable(
			fmt.Sprintf("database operation failed after %d retries. Last error: %v", exhausted.Attempts, exhausted.Last),
			err,
		)
	}
	return apperr.Internal(fmt.Sprintf("database operation failed: %v", err), err)
}

// reconnect drops the broken connection by forcing the pool to dial again.
func (r *Retrier) reconnect(ctx context.Context, attempt int, err error) {
	r.log.Warn("transient database error, retrying",
		zap.Int("attempt", attempt),
		zap.Error(err),
	)
	if r.OnRetry != nil {
		r.OnRetry()
	}
	if r.DB == nil {
		return
	}
	if pingErr := r.DB.PingContext(ctx); pingErr != nil {
		r.log.Warn("reconnect failed", zap.Error(pingErr))
	}
}

// IsTransient reports whether err is a connection-level failure worth
// retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	// The caller gave up; another attempt would run on a dead context.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 08: connection exception, 57P01..57P03: server shutting down.
		return pqErr.Code.Class() == "08" ||
			pqErr.Code == "57P01" || pqErr.Code == "57P02" || pqErr.Code == "57P03"
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
