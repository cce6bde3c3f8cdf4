package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-access-control/internal/domain/repository"
)

const (
	codeUniqueViolation     = "23505"
	codeInvalidTextRepr     = "22P02"
	codeForeignKeyViolation = "23503"
)

// mapError translates driver errors into repository sentinels.
// Errors that never reached the server (dial, timeout, closed pool) become
// ErrStorageUnavailable; server-side errors are returned wrapped but unchanged.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return repository.ErrDuplicateEmail
		case codeInvalidTextRepr:
			// malformed uuid in a lookup
			return repository.ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, repository.ErrStorageUnavailable, err)
}
