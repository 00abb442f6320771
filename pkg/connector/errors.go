package connector

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ajitpratap0/nimble/pkg/nimbleerrors"
)

// classify wraps a driver error in a typed error. Server errors are typed by
// SQLSTATE; anything the server did not report falls back to fallback.
func classify(err error, fallback nimbleerrors.ErrorType, message string) *nimbleerrors.Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return nimbleerrors.Wrap(err, typeForSQLState(pgErr.Code), message).
			WithDetail("sqlstate", pgErr.Code).
			WithDetail("severity", pgErr.Severity)
	}

	errType := fallback
	var connectErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		errType = nimbleerrors.ErrorTypeTimeout
	case errors.Is(err, context.Canceled):
		errType = nimbleerrors.ErrorTypeConnection
	case errors.As(err, &connectErr):
		errType = nimbleerrors.ErrorTypeConnection
	}
	return nimbleerrors.Wrap(err, errType, message)
}

func typeForSQLState(code string) nimbleerrors.ErrorType {
	switch {
	case code == "42501":
		return nimbleerrors.ErrorTypePermission
	case code == "57014":
		return nimbleerrors.ErrorTypeTimeout
	case strings.HasPrefix(code, "28"):
		return nimbleerrors.ErrorTypeAuthentication
	case strings.HasPrefix(code, "08"),
		strings.HasPrefix(code, "3D"),
		strings.HasPrefix(code, "53"),
		code == "57P01", code == "57P02", code == "57P03":
		return nimbleerrors.ErrorTypeConnection
	default:
		return nimbleerrors.ErrorTypeStatement
	}
}
