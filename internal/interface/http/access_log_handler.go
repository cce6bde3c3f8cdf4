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

// AccessLogReader is satisfied by application.AccessLogService.
type AccessLogReader interface {
	ListAll(ctx context.Context, p application.Page) ([]entity.AccessLog, error)
	ListByUser(ctx context.Context, userID string, p application.Page) ([]entity.AccessLog, error)
	Search(ctx context.Context, q string, size int) ([]entity.AccessLog, error)
	Export(ctx context.Context) (*application.ExportResult, error)
}

// AccessLogHandler serves the audit trail. Every route is admin only.
type AccessLogHandler struct {
	Svc    AccessLogReader
	Logger *logrus.Logger
}

func NewAccessLogHandler(svc AccessLogReader, logger *logrus.Logger) *AccessLogHandler {
	return &AccessLogHandler{Svc: svc, Logger: logger}
}

type pageQuery struct {
	Limit  int `form:"limit" json:"limit" binding:"gte=0,lte=1000"`
	Offset int `form:"offset" json:"offset" binding:"gte=0,lte=2147483647"`
}

type searchQuery struct {
	Q    string `form:"q" json:"q" binding:"required,max=200"`
	Size int    `form:"size" json:"size" binding:"gte=0,lte=100"`
}

type userIDParam struct {
	ID string `uri:"id" json:"id" binding:"required,uuid"`
}

func (h *AccessLogHandler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		helpers.LogError(h.Logger, "access log request failed", err, logrus.Fields{"path": c.FullPath()})
	}
	response.Error[any](c, status, msg, nil)
}

func (h *AccessLogHandler) admin(c *gin.Context) bool {
	if err := application.RequireRole(middleware.PrincipalFrom(c), entity.RoleAdmin); err != nil {
		h.fail(c, err)
		return false
	}
	return true
}

func (h *AccessLogHandler) List(c *gin.Context) {
	if !h.admin(c) {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	logs, err := h.Svc.ListAll(c.Request.Context(), application.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs, "access logs", map[string]any{"count": len(logs), "limit": q.Limit, "offset": q.Offset})
}

func (h *AccessLogHandler) ListByUser(c *gin.Context) {
	if !h.admin(c) {
		return
	}
	var p userIDParam
	if err := c.ShouldBindUri(&p); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", validation.ToDetails(err))
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	logs, err := h.Svc.ListByUser(c.Request.Context(), p.ID, application.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs, "access logs", map[string]any{"count": len(logs)})
}

func (h *AccessLogHandler) Search(c *gin.Context) {
	if !h.admin(c) {
		return
	}
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *AccessLogHandler) Export(c *gin.Context) {
	if !h.admin(c) {
		return
	}
	res, err := h.Svc.Export(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res, "access logs exported", nil)
}
