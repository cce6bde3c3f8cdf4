package pgstore

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AccessLog struct {
	ID        string
	Timestamp time.Time
	UserID    pgtype.UUID
	Email     pgtype.Text
	IpAddress string
	UserAgent pgtype.Text
	Status    string
}
