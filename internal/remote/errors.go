package remote

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/subtrack/internal/errs"
)

// pgerrClassIntegrity is the leading class of Postgres integrity-constraint
// violation codes (23xxx: unique, foreign key, check, not-null).
const pgerrClassIntegrity = "23"

// Authorization-related SQLSTATE codes surfaced by row-level access control.
const (
	pgerrInsufficientPrivilege = "42501"
	pgerrInvalidAuthorization  = "28000"
)

// mapError classifies a driver error into the shared taxonomy. Constraint
// and authorization failures become ErrRemoteRejected; everything else,
// including timeouts and transport failures, becomes ErrRemoteUnreachable so
// callers fail toward the cache fallback.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch {
		case len(code) >= 2 && code[:2] == pgerrClassIntegrity:
			return fmt.Errorf("%s: %w: %s", op, errs.ErrRemoteRejected, pgErr.Message)
		case code == pgerrInsufficientPrivilege, code == pgerrInvalidAuthorization:
			return fmt.Errorf("%s: %w: %s", op, errs.ErrRemoteRejected, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, errs.ErrRemoteUnreachable, err)
}
