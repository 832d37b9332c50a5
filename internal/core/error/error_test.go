package errx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "version conflict: expected latest version 2, found 3", VersionConflict(2, 3).Error())
	assert.Equal(t, "internal server error", New(nil, http.StatusInternalServerError, SystemErrorMessage).Error())
}

func TestAppError_IsAndStatus(t *testing.T) {
	cause := errors.New("bad pointer")
	err := fmt.Errorf("create version: %w", InvalidPatch(cause))

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, New(nil, http.StatusUnprocessableEntity, InvalidPatchMessage))
	assert.NotErrorIs(t, err, New(nil, http.StatusConflict, VersionConflictMessage))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(err))
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("bs-1")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))
	assert.Equal(t, http.StatusNotFound, StatusOf(WrapRedis(redis.Nil)))
	assert.Equal(t, http.StatusBadGateway, StatusOf(WrapRedis(errors.New("connection refused"))))
}

func TestWrapPostgres(t *testing.T) {
	conflict := VersionConflict(1, 2)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "app error passes through", err: conflict, want: http.StatusConflict},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "no rows", err: sql.ErrNoRows, want: http.StatusNotFound},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: http.StatusConflict},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: http.StatusConflict},
		{name: "syntax error", err: &pq.Error{Code: "42601"}, want: http.StatusBadGateway},
		{name: "other", err: errors.New("conn reset"), want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(WrapPostgres(tt.err)))
		})
	}

	assert.NoError(t, WrapPostgres(nil))
	assert.Same(t, conflict, WrapPostgres(conflict))
}
