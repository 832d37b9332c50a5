package errx

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/lib/pq"
)

// WrapPostgres maps database errors to AppError. AppErrors pass through
// untouched so repository code can wrap every return uniformly.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return New(err, http.StatusGatewayTimeout, PostgresErrorMessage)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, SchemaNotFoundMessage)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity_constraint_violation
			return New(err, http.StatusConflict, VersionConflictMessage)
		case "40": // transaction_rollback (serialization failure, deadlock)
			return New(err, http.StatusConflict, VersionConflictMessage)
		}
	}

	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}
