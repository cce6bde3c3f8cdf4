package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/config"
	pginfra "github.com/oksasatya/go-access-control/internal/infrastructure/postgres"
	"github.com/oksasatya/go-access-control/internal/infrastructure/search"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

// Container holds the process-wide components built at start-up.
// It is passed explicitly; nothing here is reachable through package state.
// Optional clients are nil when their feature is disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher

	JWT    *helpers.JWTManager
	Hasher helpers.PasswordHasher
}

// New connects to Postgres and to every optional backend enabled in cfg.
// Postgres is required; optional backends that fail to connect are logged and left nil.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		PGPool: pool,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL),
		Hasher: helpers.NewBcryptHasher(cfg.BcryptCost),
	}

	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable; user cache disabled")
			_ = rdb.Close()
		} else {
			c.Redis = rdb
		}
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(helpers.ESConfig{
			Addresses: cfg.ESAddrs(),
			Username:  cfg.ElasticsearchUser,
			Password:  cfg.ElasticsearchPass,
		})
		if err == nil {
			err = helpers.ESPing(ctx, es)
		}
		if err == nil {
			err = search.NewAccessLogIndex(es, cfg.ESAccessLogsIndex).EnsureIndex(ctx)
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
		} else {
			c.ES = es
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs client init failed; export disabled")
		} else {
			c.GCS = gcs
		}
	}

	if cfg.LoginAlertsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; login alerts disabled")
		} else {
			c.Rabbit = pub
		}
	}

	return c, nil
}

// Close releases every client in reverse order of construction.
func (c *Container) Close() {
	c.Rabbit.Close()
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
