package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfTaggedError(t *testing.T) {
	err := Conflict("class_full", "class is fully booked")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "class_full", CodeOf(err))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindNotFound))
}

func TestKindOfWrappedError(t *testing.T) {
	inner := Conflict("already_booked", "duplicate booking")
	wrapped := fmt.Errorf("creating booking: %w", inner)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "already_booked", CodeOf(wrapped))
}

func TestKindOfUntaggedError(t *testing.T) {
	err := errors.New("connection reset")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "internal", CodeOf(err))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Transient("db_contention", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(Conflict("class_full", "full")))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("class_not_found", "")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("not_owner", "")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("class_full", "")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Invalid("cutoff_passed", "")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthenticated("no credentials")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Transient("db_contention", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "class_full: class is fully booked",
		Conflict("class_full", "class is fully booked").Error())

	wrapped := Wrap(KindTransient, "db_timeout", "query timed out", errors.New("canceling statement"))
	assert.Contains(t, wrapped.Error(), "db_timeout")
	assert.Contains(t, wrapped.Error(), "canceling statement")
}
