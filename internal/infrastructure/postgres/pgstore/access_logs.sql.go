package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertAccessLog = `-- name: InsertAccessLog :one
INSERT INTO access_logs (timestamp, user_id, email, ip_address, user_agent, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`

type InsertAccessLogParams struct {
	Timestamp time.Time
	UserID    pgtype.UUID
	Email     pgtype.Text
	IpAddress string
	UserAgent pgtype.Text
	Status    string
}

func (q *Queries) InsertAccessLog(ctx context.Context, arg InsertAccessLogParams) (string, error) {
	row := q.db.QueryRow(ctx, insertAccessLog,
		arg.Timestamp,
		arg.UserID,
		arg.Email,
		arg.IpAddress,
		arg.UserAgent,
		arg.Status,
	)
	var id string
	err := row.Scan(&id)
	return id, err
}

const listAccessLogs = `-- name: ListAccessLogs :many
SELECT l.id, l.timestamp, l.user_id, l.email, l.ip_address, l.user_agent, l.status,
       u.id, u.name, u.email, u.role, u.created_at, u.updated_at
FROM access_logs l
LEFT JOIN users u ON u.id = l.user_id
WHERE ($1::uuid IS NULL OR l.user_id = $1::uuid)
ORDER BY l.timestamp DESC, l.id DESC
LIMIT $2 OFFSET $3
`

type ListAccessLogsParams struct {
	UserID pgtype.UUID
	Limit  pgtype.Int4
	Offset int32
}

type ListAccessLogsRow struct {
	AccessLog     AccessLog
	UserID        pgtype.UUID
	UserName      pgtype.Text
	UserEmail     pgtype.Text
	UserRole      pgtype.Text
	UserCreatedAt pgtype.Timestamptz
	UserUpdatedAt pgtype.Timestamptz
}

func (q *Queries) ListAccessLogs(ctx context.Context, arg ListAccessLogsParams) ([]ListAccessLogsRow, error) {
	rows, err := q.db.Query(ctx, listAccessLogs, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListAccessLogsRow
	for rows.Next() {
		var i ListAccessLogsRow
		if err := rows.Scan(
			&i.AccessLog.ID,
			&i.AccessLog.Timestamp,
			&i.AccessLog.UserID,
			&i.AccessLog.Email,
			&i.AccessLog.IpAddress,
			&i.AccessLog.UserAgent,
			&i.AccessLog.Status,
			&i.UserID,
			&i.UserName,
			&i.UserEmail,
			&i.UserRole,
			&i.UserCreatedAt,
			&i.UserUpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
