package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/internal/interface/middleware"
	"github.com/oksasatya/go-access-control/pkg/helpers"
	"github.com/oksasatya/go-access-control/pkg/response"
	"github.com/oksasatya/go-access-control/pkg/validation"
)

// Authenticator is satisfied by application.AuthService.
type Authenticator interface {
	Login(ctx context.Context, creds application.Credentials, client application.ClientInfo) (*application.AuthResult, error)
}

type AuthHandler struct {
	Svc     Authenticator
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc Authenticator, logger *logrus.Logger, cookies *helpers.Manager) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: cookies}
}

// recorded when the remote address cannot be parsed, e.g. over a unix socket
const unknownClientIP = "unknown"

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ip := middleware.ClientIP(c)
	if ip == "" {
		ip = unknownClientIP
	}
	client := application.ClientInfo{IPAddress: ip, UserAgent: c.Request.UserAgent()}
	res, err := h.Svc.Login(c.Request.Context(), application.Credentials{Email: req.Email, Password: req.Password}, client)
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			helpers.LogError(h.Logger, "login failed", err, logrus.Fields{"ip": client.IPAddress})
		}
		response.Error[any](c, status, msg, nil)
		return
	}

	if h.Cookies != nil {
		h.Cookies.SetAccessToken(c, res.Token, res.ExpiresAt)
	}
	response.Success(c, http.StatusOK, res, "login successful", nil)
}
