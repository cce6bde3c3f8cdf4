package repository

import (
	"context"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
)

// AccessLogFilter narrows a listing. Zero Limit means no limit.
type AccessLogFilter struct {
	UserID string
	Limit  int
	Offset int
}

// AccessLogRepository is append-only; entries are never updated or deleted.
type AccessLogRepository interface {
	Create(ctx context.Context, log *entity.AccessLog) error
	List(ctx context.Context, filter AccessLogFilter) ([]entity.AccessLog, error)
}
