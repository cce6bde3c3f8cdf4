package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-access-control/internal/interface/http"
	"github.com/oksasatya/go-access-control/internal/interface/middleware"
)

// UserModule wires user routes.
// Public: POST /api/users
// Protected: GET /api/profile, GET /api/users/:id (self or admin), GET /api/users (admin)
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     middleware.TokenVerifier
}

func NewUserModule(h *handlers.UserHandler, jwt middleware.TokenVerifier) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users", m.Handler.Register)

	auth := rg.Group("/")
	auth.Use(middleware.JWTAuth(m.JWT))
	{
		auth.GET("/profile", m.Handler.Profile)
		auth.GET("/users/:id", m.Handler.GetByID)
		auth.GET("/users", m.Handler.List)
	}
}
