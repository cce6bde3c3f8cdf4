package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	handlers "github.com/oksasatya/go-access-control/internal/interface/http"
	"github.com/oksasatya/go-access-control/internal/interface/middleware"
)

// AccessLogModule serves the audit trail to administrators.
type AccessLogModule struct {
	Handler *handlers.AccessLogHandler
	JWT     middleware.TokenVerifier
}

func NewAccessLogModule(h *handlers.AccessLogHandler, jwt middleware.TokenVerifier) *AccessLogModule {
	return &AccessLogModule{Handler: h, JWT: jwt}
}

func (m *AccessLogModule) Register(rg *gin.RouterGroup) {
	logs := rg.Group("/access-logs")
	logs.Use(middleware.JWTAuth(m.JWT), middleware.RequireRole(entity.RoleAdmin))
	{
		logs.GET("", m.Handler.List)
		logs.GET("/users/:id", m.Handler.ListByUser)
		logs.GET("/search", m.Handler.Search)
		logs.POST("/export", m.Handler.Export)
	}
}
