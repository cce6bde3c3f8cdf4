package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/pkg/response"
)

// RequireRole rejects requests whose principal does not hold role.
// It must run after JWTAuth.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := application.RequireRole(PrincipalFrom(c), role)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, application.ErrUnauthenticated):
			response.Abort(c, http.StatusUnauthorized, err.Error(), nil)
		default:
			response.Abort(c, http.StatusForbidden, err.Error(), nil)
		}
	}
}
