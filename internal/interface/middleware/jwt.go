package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/pkg/helpers"
	"github.com/oksasatya/go-access-control/pkg/response"
)

const CtxPrincipalKey = "principal"

// TokenVerifier is satisfied by helpers.JWTManager.
type TokenVerifier interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// JWTAuth verifies the access token from the Authorization header, falling back to
// the access_token cookie, and stores the resulting Principal in the context.
func JWTAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := v.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxPrincipalKey, application.PrincipalFromClaims(claims))
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if tok, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return tok
	}
	return ""
}

// PrincipalFrom returns the principal set by JWTAuth, or nil.
func PrincipalFrom(c *gin.Context) *application.Principal {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*application.Principal)
	return p
}
