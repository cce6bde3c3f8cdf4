package router

import (
	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/internal/container"
	"github.com/oksasatya/go-access-control/internal/infrastructure/cache"
	"github.com/oksasatya/go-access-control/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/go-access-control/internal/infrastructure/postgres"
	"github.com/oksasatya/go-access-control/internal/infrastructure/search"
	"github.com/oksasatya/go-access-control/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-access-control/internal/interface/http"
	"github.com/oksasatya/go-access-control/internal/router/modules"
	"github.com/oksasatya/go-access-control/pkg/helpers"
	mailtpl "github.com/oksasatya/go-access-control/pkg/mailer/templates"
)

// Services groups the application services built from a container.
type Services struct {
	Users      *application.UserService
	Auth       *application.AuthService
	AccessLogs *application.AccessLogService
}

// BuildServices wires repositories and optional backends into the application services.
func BuildServices(c *container.Container) Services {
	users := pginfra.NewUserRepository(c.PGPool)
	accessLogs := pginfra.NewAccessLogRepository(c.PGPool)

	var logOpts []application.AccessLogOption
	if c.ES != nil {
		logOpts = append(logOpts, application.WithIndexer(search.NewAccessLogIndex(c.ES, c.Config.ESAccessLogsIndex)))
	}
	if c.GCS != nil {
		logOpts = append(logOpts, application.WithExporter(storage.NewGCSExporter(c.GCS, c.Config.GCSBucket)))
	}
	auditSvc := application.NewAccessLogService(accessLogs, c.Logger, logOpts...)

	var userCache application.PublicUserCache
	if c.Redis != nil {
		userCache = cache.NewUserCache(c.Redis, c.Config.UserCacheTTL)
	}
	userSvc := application.NewUserService(users, c.Hasher, userCache, c.Logger)

	authSvc := application.NewAuthService(users, c.Hasher, c.JWT, auditSvc, c.Logger)
	if c.Rabbit != nil {
		authSvc.WithNotifier(messaging.NewLoginAlertPublisher(c.Rabbit, mailtpl.Brand{
			AppName:        c.Config.AppName,
			CompanyName:    c.Config.CompanyName,
			CompanyAddress: c.Config.CompanyAddress,
			LogoURL:        c.Config.LogoURL,
			SupportURL:     c.Config.SupportURL,
		}))
	}

	return Services{Users: userSvc, Auth: authSvc, AccessLogs: auditSvc}
}

// InitModules builds every feature module from c and adds it to r.
// Call once during start-up, before r.RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	svc := BuildServices(c)
	cookies := helpers.NewCookie(c.Config.CookieDomain, c.Config.CookieSecure)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, c.Logger, cookies)))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, c.Logger), c.JWT))
	r.Add(modules.NewAccessLogModule(handlers.NewAccessLogHandler(svc.AccessLogs, c.Logger), c.JWT))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
