package postgres

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/internal/domain/repository"
	"github.com/oksasatya/go-access-control/internal/infrastructure/postgres/pgstore"
)

// AccessLogRepository persists audit rows. It only inserts and reads.
type AccessLogRepository struct {
	q *pgstore.Queries
}

func NewAccessLogRepository(db pgstore.DBTX) *AccessLogRepository {
	return &AccessLogRepository{q: pgstore.New(db)}
}

func (r *AccessLogRepository) Create(ctx context.Context, l *entity.AccessLog) error {
	uid, err := uuidParam(l.UserID)
	if err != nil {
		return err
	}
	id, err := r.q.InsertAccessLog(ctx, pgstore.InsertAccessLogParams{
		Timestamp: l.Timestamp,
		UserID:    uid,
		Email:     textParam(l.Email),
		IpAddress: l.IPAddress,
		UserAgent: textParam(l.UserAgent),
		Status:    string(l.Status),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			return repository.ErrNotFound
		}
		return mapError("insert access log", err)
	}
	l.ID = id
	return nil
}

func (r *AccessLogRepository) List(ctx context.Context, f repository.AccessLogFilter) ([]entity.AccessLog, error) {
	params := pgstore.ListAccessLogsParams{Offset: int32(min(max(f.Offset, 0), math.MaxInt32))}
	if f.UserID != "" {
		uid, err := uuidParam(f.UserID)
		if err != nil {
			return []entity.AccessLog{}, nil
		}
		params.UserID = uid
	}
	if f.Limit > 0 {
		params.Limit = pgtype.Int4{Int32: int32(min(f.Limit, math.MaxInt32)), Valid: true}
	}
	rows, err := r.q.ListAccessLogs(ctx, params)
	if err != nil {
		return nil, mapError("list access logs", err)
	}
	out := make([]entity.AccessLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAccessLog(row))
	}
	return out, nil
}

func toAccessLog(row pgstore.ListAccessLogsRow) entity.AccessLog {
	l := entity.AccessLog{
		ID:        row.AccessLog.ID,
		Timestamp: row.AccessLog.Timestamp.UTC(),
		Email:     row.AccessLog.Email.String,
		IPAddress: row.AccessLog.IpAddress,
		UserAgent: row.AccessLog.UserAgent.String,
		Status:    entity.AccessStatus(row.AccessLog.Status),
	}
	if row.AccessLog.UserID.Valid {
		l.UserID = uuid.UUID(row.AccessLog.UserID.Bytes).String()
	}
	if row.UserID.Valid {
		l.User = &entity.PublicUser{
			ID:        uuid.UUID(row.UserID.Bytes).String(),
			Name:      row.UserName.String,
			Email:     row.UserEmail.String,
			Role:      entity.Role(row.UserRole.String),
			CreatedAt: row.UserCreatedAt.Time,
			UpdatedAt: row.UserUpdatedAt.Time,
		}
	}
	return l
}

func uuidParam(s string) (pgtype.UUID, error) {
	if s == "" {
		return pgtype.UUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, repository.ErrNotFound
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func textParam(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

var _ repository.AccessLogRepository = (*AccessLogRepository)(nil)
