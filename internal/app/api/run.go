package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	apiserver "github.com/Apurer/go-gin-users-orders/go"
	ordermemory "github.com/Apurer/go-gin-users-orders/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/go-gin-users-orders/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/go-gin-users-orders/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/go-gin-users-orders/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-users-orders/internal/domains/orders/ports"
	usermemory "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/go-gin-users-orders/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-users-orders/internal/domains/users/ports"
	"github.com/Apurer/go-gin-users-orders/internal/health"
	"github.com/Apurer/go-gin-users-orders/internal/platform/kafka"
	"github.com/Apurer/go-gin-users-orders/internal/platform/metrics"
	"github.com/Apurer/go-gin-users-orders/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-users-orders/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-users-orders/internal/platform/postgres"
	"github.com/Apurer/go-gin-users-orders/internal/shared/events"
	"github.com/Apurer/go-gin-users-orders/internal/shared/references"
)

const serviceName = "users-orders-api"

// Version is overridden at build time with -ldflags "-X .../internal/app/api.Version=...".
var Version = "dev"

// Run boots the users/orders HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdownTelemetry, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		LogLevel:       cfg.LogLevel,
		TraceExporter:  cfg.TraceExporter,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := instruments.Logger
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	publisher, closePublisher := buildPublisher(cfg, logger, metrics.NewEventMetrics(registry))
	defer closePublisher()

	router := newRouter(cfg, store, publisher, instruments, registry)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("users/orders API listening",
			slog.String("addr", server.Addr),
			slog.String("delete_policy", string(cfg.DeletePolicy)),
			slog.Bool("events", cfg.EventsEnabled()),
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("users/orders API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down users/orders API", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// newRouter composes services, decorators and middleware into the HTTP handler.
func newRouter(
	cfg Config,
	store *storage,
	publisher events.Publisher,
	instruments *platformobservability.Instruments,
	registry *prometheus.Registry,
) *gin.Engine {
	logger := instruments.Logger

	coreOrders := orderapp.NewService(store.orders, store.users,
		orderapp.WithEventPublisher(publisher),
		orderapp.WithReferenceGuard(store.guard),
	)
	orderService := orderobs.New(
		coreOrders,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	coreUsers := userapp.NewService(
		store.users,
		userapp.WithOrderReferences(coreOrders),
		userapp.WithDeletePolicy(cfg.DeletePolicy),
		userapp.WithEventPublisher(publisher),
		userapp.WithReferenceGuard(store.guard),
	)
	userService := userobs.New(
		coreUsers,
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	checks := health.NewRegistry(Version)
	checks.Register("storage", store.check)

	httpMetrics := metrics.NewHTTPMetrics(registry)
	handlers := apiserver.ApiHandleFunctions{
		UserAPI:   apiserver.NewUserAPI(userService),
		OrderAPI:  apiserver.NewOrderAPI(orderService),
		HealthAPI: apiserver.NewHealthAPI(checks),
		Metrics:   metrics.Handler(registry),
	}
	return apiserver.NewRouter(handlers,
		otelgin.Middleware(serviceName, otelgin.WithTracerProvider(instruments.TracerProvider)),
		apiserver.RequestID(),
		apiserver.AccessLog(logger),
		httpMetrics.Middleware(),
		apiserver.RequestTimeout(cfg.RequestTimeout),
	)
}

type storage struct {
	users  userports.Repository
	orders orderports.Repository
	guard  references.Guard
	check  health.Checker
	close  func()
}

func memoryStorage() *storage {
	return &storage{
		users:  usermemory.NewRepository(),
		orders: ordermemory.NewRepository(),
		guard:  references.NewMemoryGuard(),
		check:  health.MemoryStorage(),
		close:  func() {},
	}
}

// gormStorage migrates the schema and builds both repositories on db.
func gormStorage(db *gorm.DB) (*storage, error) {
	if err := migrations.Run(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &storage{
		users:  userpostgres.NewRepository(db),
		orders: orderpostgres.NewRepository(db),
		guard:  platformpostgres.NewReferenceGuard(db),
		check:  health.GormStorage(db),
		close:  func() { _ = sqlDB.Close() },
	}, nil
}

func buildStorage(ctx context.Context, cfg Config, logger *slog.Logger) (*storage, error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryStorage(), nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryStorage(), nil
	}
	store, err := gormStorage(db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	logger.Info("repositories configured with postgres")
	return store, nil
}

func buildPublisher(cfg Config, logger *slog.Logger, eventMetrics *metrics.EventMetrics) (events.Publisher, func()) {
	if !cfg.EventsEnabled() {
		logger.Info("KAFKA_BROKERS not set, resource events disabled")
		return events.NoopPublisher, func() {}
	}
	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic,
		kafka.WithLogger(logger),
		kafka.WithMetrics(eventMetrics),
	)
	if err != nil {
		logger.Warn("kafka producer unavailable, resource events disabled", slog.String("error", err.Error()))
		return events.NoopPublisher, func() {}
	}
	logger.Info("publishing resource events to kafka", slog.String("topic", cfg.KafkaTopic))
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close kafka producer", slog.String("error", err.Error()))
		}
	}
}
