package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"shala/internal/apperr"
)

func TestMapErrorUniqueViolation(t *testing.T) {
	err := MapError(&pq.Error{Code: "23505"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Equal(t, "duplicate", apperr.CodeOf(err))
}

func TestMapErrorRetryableCodes(t *testing.T) {
	for _, code := range []pq.ErrorCode{"40001", "40P01", "57014", "55P03"} {
		err := MapError(&pq.Error{Code: code})
		assert.True(t, apperr.IsRetryable(err), "code %s should be retryable", code)
	}
}

func TestMapErrorWrappedDriverError(t *testing.T) {
	inner := &pq.Error{Code: "40P01"}
	err := MapError(fmt.Errorf("exec update: %w", inner))
	assert.True(t, apperr.IsRetryable(err))
	assert.True(t, errors.Is(err, inner))
}

func TestMapErrorDeadline(t *testing.T) {
	err := MapError(context.DeadlineExceeded)
	assert.True(t, apperr.IsRetryable(err))
	assert.Equal(t, "db_timeout", apperr.CodeOf(err))
}

func TestMapErrorPassThrough(t *testing.T) {
	assert.NoError(t, MapError(nil))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, MapError(plain))

	// No-rows stays raw so each lookup decides its own not-found semantics.
	assert.True(t, IsNoRows(MapError(sql.ErrNoRows)))
}

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		if calls < 2 {
			return apperr.Transient("db_contention", errors.New("deadlock"))
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryBusinessErrorImmediate(t *testing.T) {
	calls := 0
	conflict := apperr.Conflict("class_full", "class is fully booked")
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		return conflict
	})
	assert.Equal(t, conflict, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		return apperr.Transient("db_contention", errors.New("deadlock"))
	})
	assert.True(t, apperr.IsRetryable(err))
	assert.Equal(t, 3, calls)
}

func TestWithRetryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, 5, func() error {
		return apperr.Transient("db_contention", errors.New("deadlock"))
	})
	assert.True(t, apperr.IsRetryable(err))
	assert.Equal(t, "ctx_cancelled", apperr.CodeOf(err))
}
