package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	repo "github.com/oksasatya/go-access-control/internal/domain/repository"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

// PublicUserCache holds caller-facing user views. It never sees password hashes.
type PublicUserCache interface {
	Get(ctx context.Context, id string) (*entity.PublicUser, bool, error)
	Set(ctx context.Context, u entity.PublicUser) error
}

type UserService struct {
	Repo   repo.UserRepository
	Hasher helpers.PasswordHasher
	Cache  PublicUserCache
	Logger *logrus.Logger
}

func NewUserService(r repo.UserRepository, hasher helpers.PasswordHasher, cache PublicUserCache, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &UserService{Repo: r, Hasher: hasher, Cache: cache, Logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// NormalizeEmail is applied to every address before it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. The role defaults to user; an unknown role is rejected.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.PublicUser, error) {
	email := NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	exists, err := s.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	// Create still reports ErrDuplicateEmail when a concurrent registration wins.
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")

	pub := u.Public()
	s.cache(ctx, pub)
	return &pub, nil
}

// GetPublic reads through the cache. Cache failures fall back to the store.
func (s *UserService) GetPublic(ctx context.Context, id string) (*entity.PublicUser, error) {
	if s.Cache != nil {
		pub, ok, err := s.Cache.Get(ctx, id)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("user cache read failed")
		} else if ok {
			return pub, nil
		}
	}

	u, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	s.cache(ctx, pub)
	return &pub, nil
}

func (s *UserService) List(ctx context.Context) ([]entity.PublicUser, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (s *UserService) cache(ctx context.Context, pub entity.PublicUser) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, pub); err != nil {
		s.Logger.WithError(err).WithField("user_id", pub.ID).Warn("user cache write failed")
	}
}
