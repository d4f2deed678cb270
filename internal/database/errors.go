package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"shala/internal/apperr"
	"shala/internal/logger"
)

// Postgres error codes that matter to callers. Serialization failures,
// deadlocks and timeouts are safe to retry; unique violations signal a
// business conflict (duplicate booking).
const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqQueryCanceled        = "57014"
	pqLockNotAvailable     = "55P03"
)

// MapError converts driver-level errors into the shared taxonomy. sql.ErrNoRows
// is left untouched: repositories translate it per lookup.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, "duplicate", "row already exists", err)
		case pqSerializationFailure, pqDeadlockDetected, pqQueryCanceled, pqLockNotAvailable:
			return apperr.Transient("db_contention", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Transient("db_timeout", err)
	}

	return err
}

// IsNoRows reports whether err is the driver's empty-result sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// WithRetry re-runs fn on transient failures with a short fixed backoff,
// capped at attempts. Business errors surface immediately.
func WithRetry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !apperr.IsRetryable(err) {
			return err
		}
		logger.WithContext(ctx).Warn("Retrying after transient database error",
			"attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return apperr.Transient("ctx_cancelled", ctx.Err())
		case <-time.After(time.Duration(i+1) * 50 * time.Millisecond):
		}
	}
	return err
}
