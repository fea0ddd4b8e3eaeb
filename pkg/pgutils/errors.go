package pgutils

import (
	"errors"
	"net"
	"strings"
)

// PostgreSQL error codes
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 23 — Integrity Constraint Violation
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeCheckViolation      = "23514"

	// Class 08 — Connection Exception
	CodeConnectionException    = "08000"
	CodeUnableToEstablish      = "08001"
	CodeConnectionDoesNotExist = "08003"
	CodeConnectionRejected     = "08004"
	CodeConnectionFailure      = "08006"
)

var connectionCodes = []string{
	CodeConnectionException,
	CodeUnableToEstablish,
	CodeConnectionDoesNotExist,
	CodeConnectionRejected,
	CodeConnectionFailure,
}

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation (23505).
func IsUniqueViolation(err error) bool {
	return containsErrorCode(err, CodeUniqueViolation)
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (23503).
func IsForeignKeyViolation(err error) bool {
	return containsErrorCode(err, CodeForeignKeyViolation)
}

// IsNotNullViolation checks if the error is a PostgreSQL not-null constraint violation (23502).
func IsNotNullViolation(err error) bool {
	return containsErrorCode(err, CodeNotNullViolation)
}

// IsCheckViolation checks if the error is a PostgreSQL check constraint violation (23514).
func IsCheckViolation(err error) bool {
	return containsErrorCode(err, CodeCheckViolation)
}

// IsConnectionFailure checks if the error means the database itself is
// unreachable (SQLSTATE class 08 or a network-level dial/reset failure),
// as opposed to a query the server rejected.
func IsConnectionFailure(err error) bool {
	if err == nil {
		return false
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	for _, code := range connectionCodes {
		if containsErrorCode(err, code) {
			return true
		}
	}

	errStr := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset by peer",
		"no such host",
		"failed to connect",
		"broken pipe",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// containsErrorCode checks if the error message contains a PostgreSQL error code.
func containsErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return len(errStr) > 0 && (strings.Contains(errStr, code) || strings.Contains(errStr, "SQLSTATE "+code))
}
