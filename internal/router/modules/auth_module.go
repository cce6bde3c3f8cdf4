package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-access-control/internal/interface/http"
)

// AuthModule exposes the public login endpoint.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", m.Handler.Login)
}
