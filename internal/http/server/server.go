// Package server arma la aplicación completa: store, cache, protocolo,
// services HTTP y router, a partir de la configuración.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/portalgate/internal/cache"
	cachemem "github.com/dropDatabas3/portalgate/internal/cache/memory"
	cacheredis "github.com/dropDatabas3/portalgate/internal/cache/redis"
	"github.com/dropDatabas3/portalgate/internal/config"
	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/email"
	"github.com/dropDatabas3/portalgate/internal/exchange"
	activationctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/activation"
	adminctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/admin"
	apiv2ctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/apiv2"
	healthctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/health"
	ssoctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/sso"
	"github.com/dropDatabas3/portalgate/internal/http/router"
	activationsvc "github.com/dropDatabas3/portalgate/internal/http/services/activation"
	adminsvc "github.com/dropDatabas3/portalgate/internal/http/services/admin"
	apiv2svc "github.com/dropDatabas3/portalgate/internal/http/services/apiv2"
	healthsvc "github.com/dropDatabas3/portalgate/internal/http/services/health"
	ssosvc "github.com/dropDatabas3/portalgate/internal/http/services/sso"
	"github.com/dropDatabas3/portalgate/internal/invite"
	"github.com/dropDatabas3/portalgate/internal/keystore"
	"github.com/dropDatabas3/portalgate/internal/ledger"
	"github.com/dropDatabas3/portalgate/internal/metrics"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/rate"
	"github.com/dropDatabas3/portalgate/internal/roles"
	"github.com/dropDatabas3/portalgate/internal/store/memory"
	"github.com/dropDatabas3/portalgate/internal/store/pg"
	migrations "github.com/dropDatabas3/portalgate/migrations/postgres"
)

// dataStore es lo que ambos drivers de storage exponen.
type dataStore interface {
	Portals() repository.PortalRepository
	Tokens() repository.TokenRepository
	Organisations() repository.OrganisationRepository
	Profiles() repository.ProfileRepository
	Invitations() repository.InvitationRepository
	Directory() directory.Directory
}

// App es la aplicación armada: el handler HTTP más las piezas que el
// proceso necesita manejar aparte (ledger para el sweeper, cleanups).
type App struct {
	Handler http.Handler
	Ledger  *ledger.Ledger

	cleanups []func()
}

// Close libera conexiones en orden inverso al armado.
func (a *App) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// Build cablea todas las dependencias según la configuración.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	// Storage
	var (
		st        dataStore
		pingStore func(ctx context.Context) error
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxConns:        int32(cfg.Storage.Postgres.MaxConns),
			MinConns:        int32(cfg.Storage.Postgres.MinConns),
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("server: init postgres store: %w", err)
		}
		app.cleanups = append(app.cleanups, pgStore.Close)
		if cfg.Storage.Migrate {
			if err := pgStore.RunMigrations(ctx, migrations.FS); err != nil {
				app.Close()
				return nil, fmt.Errorf("server: run migrations: %w", err)
			}
		}
		st = pgStore
		pingStore = pgStore.Ping
	case "memory":
		st = memory.New()
		pingStore = func(context.Context) error { return nil }
	default:
		return nil, fmt.Errorf("server: unknown storage driver %q", cfg.Storage.Driver)
	}

	// Cache
	var (
		cacheClient cache.Client
		limiter     rate.Limiter
	)
	switch cfg.Cache.Kind {
	case "redis":
		rc, err := cacheredis.New(ctx, cacheredis.Config{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("server: init redis cache: %w", err)
		}
		app.cleanups = append(app.cleanups, func() { _ = rc.Close() })
		cacheClient = rc
		if cfg.Rate.Enabled {
			limiter = rate.NewRedisLimiter(rc.Client(), cfg.Cache.Redis.Prefix+"rate:", cfg.Rate.Limit, cfg.Rate.Window)
		}
	case "memory":
		cacheClient = cachemem.New(cfg.Cache.Memory.DefaultTTL)
		if cfg.Rate.Enabled {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Limit, cfg.Rate.Window)
		}
	default:
		app.Close()
		return nil, fmt.Errorf("server: unknown cache kind %q", cfg.Cache.Kind)
	}

	// Núcleo del protocolo
	keys := keystore.New(st.Portals(), cacheClient, 0)
	lg := ledger.New(st.Tokens(), cfg.SSO.TokenTimeout)
	resolver := roles.NewResolver(st.Organisations(), st.Profiles())
	protocol := exchange.New(keys, lg, resolver, st.Directory(), st.Profiles(), cfg.SSO.JWTTTL)
	app.Ledger = lg

	// Email
	var sender email.Sender = email.NopSender{}
	if cfg.SMTP.Host != "" {
		smtp := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		if cfg.SMTP.TLS != "" {
			smtp.TLSMode = cfg.SMTP.TLS
		}
		smtp.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		sender = smtp
	} else {
		logger.L().Warn("smtp not configured, activation mails are discarded",
			logger.Component("server"))
	}

	invites := invite.NewService(st.Invitations(), st.Organisations(), st.Profiles(), st.Directory(), sender, cfg.Server.BaseURL, cfg.Invite.ActivationDays)

	// Services y controllers
	ssoService := ssosvc.NewService(protocol, keys, st.Directory())
	apiv2Service := apiv2svc.NewService(protocol, keys, st.Directory(), st.Organisations())
	adminService := adminsvc.NewService(keys, st.Portals(), invites)
	activationService := activationsvc.NewService(invites)
	healthService := healthsvc.NewService(healthsvc.Deps{
		StoreCheck: pingStore,
		CacheCheck: func(ctx context.Context) error {
			return cacheClient.Set(ctx, "healthcheck", []byte("ok"), time.Second)
		},
	})

	app.Handler = router.New(router.Deps{
		SSO:         ssoctrl.NewController(ssoService),
		APIv2:       apiv2ctrl.NewController(apiv2Service),
		Admin:       adminctrl.NewController(adminService),
		Activation:  activationctrl.NewController(activationService),
		Health:      healthctrl.NewController(healthService),
		Metrics:     metrics.Register(),
		Limiter:     limiter,
		AdminAPIKey: cfg.Admin.APIKey,
	})
	return app, nil
}
