package application

import (
	"errors"

	repo "github.com/oksasatya/go-access-control/internal/domain/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient role")
	ErrUserNotFound       = errors.New("user not found")
	ErrSearchDisabled     = errors.New("access log search is not enabled")
	ErrExportDisabled     = errors.New("access log export is not enabled")

	// Storage-level failures are re-exported so callers depend on one package.
	ErrDuplicateEmail     = repo.ErrDuplicateEmail
	ErrStorageUnavailable = repo.ErrStorageUnavailable
)
