package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/internal/interface/middleware"
	"github.com/oksasatya/go-access-control/pkg/helpers"
	"github.com/oksasatya/go-access-control/pkg/response"
	"github.com/oksasatya/go-access-control/pkg/validation"
)

// UserService is satisfied by application.UserService.
type UserService interface {
	Register(ctx context.Context, in application.RegisterInput) (*entity.PublicUser, error)
	GetPublic(ctx context.Context, id string) (*entity.PublicUser, error)
	List(ctx context.Context) ([]entity.PublicUser, error)
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,pwd"`
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		helpers.LogError(h.Logger, "user request failed", err, logrus.Fields{"path": c.FullPath()})
	}
	response.Error[any](c, status, msg, nil)
}

// Register creates a regular user. Admins are provisioned by the seed command.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.RoleUser,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user registered", nil)
}

func (h *UserHandler) Profile(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		h.fail(c, application.ErrUnauthenticated)
		return
	}
	u, err := h.Svc.GetPublic(c.Request.Context(), p.SubjectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

// GetByID is open to the user itself and to admins.
func (h *UserHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if err := application.RequireSelfOrRole(middleware.PrincipalFrom(c), id, entity.RoleAdmin); err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Svc.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	if err := application.RequireRole(middleware.PrincipalFrom(c), entity.RoleAdmin); err != nil {
		h.fail(c, err)
		return
	}
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", map[string]any{"count": len(users)})
}
