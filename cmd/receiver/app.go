package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"bodgate/internal/archive"
	"bodgate/internal/broker"
	"bodgate/internal/config"
	"bodgate/internal/console"
	"bodgate/internal/dedup"
	"bodgate/internal/inbox"
	"bodgate/internal/logger"
	"bodgate/internal/receiver"
	"bodgate/pkg/bootstrap"
	"bodgate/pkg/circuitbreaker"
	"bodgate/pkg/health"
	"bodgate/pkg/metrics"
	"bodgate/pkg/middleware"
	"bodgate/pkg/ratelimit"
	"bodgate/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector

	redis       *redis.Client
	pg          *sql.DB
	store       dedup.Store
	writer      *inbox.Writer
	archiveRepo archive.Repository
	producer    *broker.KafkaProducer
	service     *receiver.Service

	tracerProvider *tracing.TracerProvider
	publicServer   *http.Server
	opsServer      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("receiver")
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	writer, err := inbox.NewWriter(a.Config.Inbox.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize inbox: %w", err)
	}
	a.writer = writer

	if err := a.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize dedup store: %w", err)
	}

	if err := a.initArchive(ctx); err != nil {
		return fmt.Errorf("failed to initialize archive: %w", err)
	}

	if a.Config.Forward.Enabled {
		a.producer = broker.NewKafkaProducer(a.Config.Forward, a.Logger)
		metrics.RegisterForwardMetrics()
	}

	tp, err := tracing.Init(a.Config.Tracing, "receiver")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterReceiverMetrics()

	a.initService()
	a.initHTTPServers()

	return nil
}

func (a *App) initStore(ctx context.Context) error {
	switch a.Config.Dedup.Backend {
	case "redis":
		rdb, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			return err
		}
		a.redis = rdb

		ttl := time.Duration(a.Config.Dedup.TTLSeconds) * time.Second
		base := dedup.NewRedisStore(rdb, a.Config.Dedup.KeyPrefix, ttl)
		a.store = dedup.NewCircuitBreakerStore(base, circuitbreaker.DefaultConfig("dedup-store"))
		metrics.RegisterCircuitBreakerMetrics()
		a.Logger.InfowCtx(ctx, "Dedup store initialized", "backend", "redis")
	default:
		a.store = dedup.NewMemoryStore()
		a.Logger.InfowCtx(ctx, "Dedup store initialized", "backend", "memory")
	}
	return nil
}

func (a *App) initArchive(ctx context.Context) error {
	if !a.Config.Archive.Enabled {
		return nil
	}

	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("archive enabled but postgres host is not configured")
	}
	a.pg = db

	if a.Config.Database.RunMigrations {
		if err := archive.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	a.archiveRepo = archive.NewRepository(db)
	metrics.RegisterArchiveMetrics()
	return nil
}

func (a *App) initService() {
	presenter := console.New(os.Stdout, a.Config.Server.EndpointPath)

	opts := []receiver.Option{}
	if a.archiveRepo != nil {
		opts = append(opts, receiver.WithArchive(a.archiveRepo))
	}
	if a.producer != nil {
		opts = append(opts, receiver.WithForwarder(a.producer, a.Config.Forward.Topic))
	}

	a.service = receiver.NewService(a.store, a.writer, presenter, a.Config, a.Logger, opts...)
}

// initHTTPServers builds two listeners. The public one exposes only the
// submission endpoint so unknown paths and methods keep returning the
// documented 404 body; health, metrics and archive queries live on the
// ops port.
func (a *App) initHTTPServers() {
	gin.SetMode(gin.ReleaseMode)

	public := gin.New()
	public.Use(middleware.RequestIDMiddleware())
	public.Use(middleware.LoggerMiddleware(a.Logger))
	public.Use(middleware.RecoveryMiddleware(a.Logger))
	if a.Config.Tracing.Enabled {
		public.Use(tracing.GinMiddleware("receiver"))
	}
	if a.Config.RateLimit.Enabled {
		public.Use(ratelimit.Middleware(ratelimit.Config{
			RPS:             a.Config.RateLimit.RPS,
			Burst:           a.Config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.RateLimit.MaxAge) * time.Second,
		}))
	}

	handler := receiver.NewHandler(a.service, a.Logger)
	handler.RegisterRoutes(public, a.Config.Server.EndpointPath)

	a.publicServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      public,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}

	ops := gin.New()
	ops.Use(middleware.RecoveryMiddleware(a.Logger))

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewInboxChecker(a.Config.Inbox.Dir))
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}
	if a.pg != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.pg))
	}

	ops.GET("/healthz", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})
	ops.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if a.archiveRepo != nil {
		archiveHandler := archive.NewHandler(a.archiveRepo, a.Logger)
		archiveHandler.RegisterRoutes(ops)
	}

	a.opsServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.OpsPort),
		Handler: ops,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting",
			"addr", a.publicServer.Addr,
			"endpoint", a.Config.Server.EndpointPath,
		)
		if err := a.publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "Ops server starting", "addr", a.opsServer.Addr)
		if err := a.opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ops server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.publicServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		if err := a.opsServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ops server shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("producer close error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(a.redis, a.pg)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
