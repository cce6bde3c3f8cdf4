package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/config"
	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/internal/domain/entity"
	pginfra "github.com/oksasatya/go-access-control/internal/infrastructure/postgres"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 2, MinConns: 1, MaxConnLife: cfg.DBMaxConnLife})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	users := application.NewUserService(pginfra.NewUserRepository(pool), helpers.NewBcryptHasher(cfg.BcryptCost), nil, logger)

	seeds := []seedUser{
		{Name: "Administrator", Email: envOr("SEED_ADMIN_EMAIL", "admin@example.com"), Password: envOr("SEED_ADMIN_PASSWORD", "admin12345"), Role: entity.RoleAdmin},
		{Name: "Demo User", Email: envOr("SEED_USER_EMAIL", "user@example.com"), Password: envOr("SEED_USER_PASSWORD", "user12345"), Role: entity.RoleUser},
	}
	for _, s := range seeds {
		u, err := users.Register(ctx, application.RegisterInput{Name: s.Name, Email: s.Email, Password: s.Password, Role: s.Role})
		if errors.Is(err, application.ErrDuplicateEmail) {
			logger.WithField("email", s.Email).Info("user already seeded")
			continue
		}
		if err != nil {
			logger.WithError(err).WithField("email", s.Email).Fatal("failed to seed user")
		}
		logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "role": u.Role}).Info("seeded user")
	}
}
