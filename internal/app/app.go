// Package app wires configuration, storage, middleware, and the resource
// catalog into a runnable service.
package app

import (
	"context"
	"net/http"

	"github.com/workshophq/backoffice/internal/catalog"
	"github.com/workshophq/backoffice/pkg/auth"
	"github.com/workshophq/backoffice/pkg/config"
	"github.com/workshophq/backoffice/pkg/engine"
	"github.com/workshophq/backoffice/pkg/health"
	mwauth "github.com/workshophq/backoffice/pkg/middleware/auth"
	"github.com/workshophq/backoffice/pkg/middleware/cors"
	"github.com/workshophq/backoffice/pkg/middleware/logging"
	metricsmw "github.com/workshophq/backoffice/pkg/middleware/metrics"
	"github.com/workshophq/backoffice/pkg/middleware/ratelimit"
	"github.com/workshophq/backoffice/pkg/middleware/recovery"
	"github.com/workshophq/backoffice/pkg/middleware/requestid"
	"github.com/workshophq/backoffice/pkg/observability/logger"
	"github.com/workshophq/backoffice/pkg/observability/metrics"
	"github.com/workshophq/backoffice/pkg/server"
	"github.com/workshophq/backoffice/pkg/server/router"
	ginrouter "github.com/workshophq/backoffice/pkg/server/router/gin"
	"github.com/workshophq/backoffice/pkg/store/mongodb"
	"github.com/workshophq/backoffice/pkg/version"
)

// App holds the assembled service.
type App struct {
	cfg     *config.Config
	log     *logger.ZapLogger
	adapter *mongodb.Adapter
	server  *server.Server
	health  *health.Registry
}

// New assembles the service from configuration: logger, store, engine,
// middleware chain, and the full resource catalog.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.NewZapLogger(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	adapter, err := mongodb.NewAdapter(mongodb.Config{
		URL:              cfg.Mongo.URI,
		Database:         cfg.Mongo.Database,
		ConnectTimeout:   cfg.Mongo.Timeout,
		OperationTimeout: cfg.Mongo.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	store, err := engine.NewMongoStore(adapter)
	if err != nil {
		adapter.Close()
		return nil, err
	}

	verifier, err := auth.NewVerifier(auth.Config{
		Secret: cfg.Auth.Secret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TTL,
	})
	if err != nil {
		adapter.Close()
		return nil, err
	}

	healthReg := health.NewRegistry()
	healthReg.Register(health.NewPingChecker("service"))
	healthReg.Register(health.NewAdapterChecker("mongodb", adapter, cfg.Mongo.Timeout))

	metricsReg := metrics.NewRegistry()

	rt := ginrouter.NewRouter()
	rt.Use(
		requestid.RequestID(),
		recovery.Recovery(log),
		logging.Logging(log),
		metricsmw.Metrics(),
		cors.Middleware(cors.Config{
			Enabled:          cfg.CORS.Enabled,
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowMethods:     cfg.CORS.AllowMethods,
			AllowHeaders:     cfg.CORS.AllowHeaders,
			ExposeHeaders:    cfg.CORS.ExposeHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}),
	)
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewTokenBucketLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		rt.Use(ratelimit.RateLimit(limiter, ratelimit.Config{}))
	}

	registerOperational(rt, cfg, healthReg, metricsReg)

	api := rt.Group("/api", mwauth.Authenticate(verifier))
	if err := catalog.Mount(catalog.Deps{
		Store:    store,
		Registry: engine.NewRegistry(),
		Router:   api,
		Log:      log,
	}); err != nil {
		adapter.Close()
		return nil, err
	}

	srv := server.NewServer(server.Config{
		Port:            cfg.HTTP.Port,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, rt, log)

	return &App{
		cfg:     cfg,
		log:     log,
		adapter: adapter,
		server:  srv,
		health:  healthReg,
	}, nil
}

// registerOperational mounts the unauthenticated operational endpoints.
func registerOperational(rt router.Router, cfg *config.Config, healthReg *health.Registry, metricsReg *metrics.Registry) {
	rt.GET("/healthz", func(c router.Context) error {
		result := healthReg.Check(c.Request().Context())
		status := http.StatusOK
		if !result.IsHealthy() {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, result)
	})

	metricsHandler := metricsReg.Handler()
	rt.GET("/metrics", func(c router.Context) error {
		metricsHandler.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	info := version.Current(cfg.Service.Name)
	rt.GET("/version", func(c router.Context) error {
		return c.JSON(http.StatusOK, info)
	})
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and releases the store connection.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("service starting",
		"service", a.cfg.Service.Name,
		"environment", a.cfg.Service.Environment,
		"version", version.Current(a.cfg.Service.Name).Version,
	)
	defer a.Close()
	return a.server.Start(ctx)
}

// EnsureIndexes creates the catalog's index set: owner scoping, default
// lookups, and the unique backstops behind the uniqueness guards.
func (a *App) EnsureIndexes(ctx context.Context) error {
	return a.adapter.EnsureIndexes(ctx, catalog.IndexSpecs())
}

// Close releases held resources. Safe to call more than once.
func (a *App) Close() {
	if err := a.adapter.Close(); err != nil {
		a.log.Error("failed to close mongodb adapter", "error", err)
	}
	_ = a.log.Sync()
}
