package handlers

import (
	"errors"
	"net/http"

	"github.com/oksasatya/go-access-control/internal/application"
	repo "github.com/oksasatya/go-access-control/internal/domain/repository"
)

// statusFor maps application errors onto HTTP status codes and client-safe messages.
// Driver details never reach the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, application.ErrInvalidCredentials.Error()
	case errors.Is(err, application.ErrUnauthenticated):
		return http.StatusUnauthorized, application.ErrUnauthenticated.Error()
	case errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden, application.ErrForbidden.Error()
	case errors.Is(err, repo.ErrDuplicateEmail):
		return http.StatusConflict, repo.ErrDuplicateEmail.Error()
	case errors.Is(err, application.ErrUserNotFound), errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, application.ErrSearchDisabled), errors.Is(err, application.ErrExportDisabled):
		return http.StatusNotImplemented, err.Error()
	case errors.Is(err, repo.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
