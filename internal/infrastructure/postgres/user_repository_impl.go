package postgres

import (
	"context"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/internal/domain/repository"
	"github.com/oksasatya/go-access-control/internal/infrastructure/postgres/pgstore"
)

type UserRepository struct {
	q *pgstore.Queries
}

func NewUserRepository(db pgstore.DBTX) *UserRepository {
	return &UserRepository{q: pgstore.New(db)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	row, err := r.q.CreateUser(ctx, pgstore.CreateUserParams{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	})
	if err != nil {
		return mapError("create user", err)
	}
	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapError("get user by id", err)
	}
	return toUser(row), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return toUser(row), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ok, err := r.q.UserExistsByEmail(ctx, email)
	if err != nil {
		return false, mapError("user exists", err)
	}
	return ok, nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.q.ListUsers(ctx)
	if err != nil {
		return nil, mapError("list users", err)
	}
	out := make([]entity.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toUser(row))
	}
	return out, nil
}

func toUser(row pgstore.User) *entity.User {
	return &entity.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         entity.Role(row.Role),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
