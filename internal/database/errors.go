package database

import (
	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/pgutils"
)

// WrapError maps a low-level database error into the API error taxonomy.
// Connection-class failures (the store itself is unreachable) surface as
// 503 so clients know a retry may succeed; every other database error is
// a plain 500.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if pgutils.IsConnectionFailure(err) {
		return apperror.ErrStoreUnavailable.WithInternal(err)
	}
	return apperror.ErrDatabase.WithInternal(err)
}
