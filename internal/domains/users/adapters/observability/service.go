package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-users-orders/internal/domains/users/application/types"
	userdomain "github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-users-orders/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, input types.CreateUserInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.CreateUser", trace.WithAttributes(attribute.String("user.email", input.Email)))
	defer span.End()
	s.logInfo(ctx, "creating user", slog.String("email", input.Email))
	result, err := s.inner.CreateUser(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create user", slog.String("email", input.Email))
	}
	span.SetAttributes(attribute.Int64("user.id", result.ID))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "user created", slog.Int64("user_id", result.ID))
	return result, nil
}

func (s *Service) GetUser(ctx context.Context, input types.UserIdentifier) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetUser", trace.WithAttributes(attribute.Int64("user.id", input.ID)))
	defer span.End()
	return s.inner.GetUser(ctx, input)
}

func (s *Service) ListUsers(ctx context.Context, input types.ListUsersInput) ([]*userdomain.User, error) {
	page := input.Page.Normalize()
	ctx, span := s.tracer.Start(ctx, "UserService.ListUsers", trace.WithAttributes(
		attribute.Int("page.limit", page.Limit),
		attribute.Int("page.offset", page.Offset),
	))
	defer span.End()
	result, err := s.inner.ListUsers(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("user.count", len(result)))
	return result, nil
}

func (s *Service) ReplaceUser(ctx context.Context, input types.ReplaceUserInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ReplaceUser", trace.WithAttributes(attribute.Int64("user.id", input.ID)))
	defer span.End()
	result, err := s.inner.ReplaceUser(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to replace user", slog.Int64("user_id", input.ID))
	}
	s.metrics.recordReplaced(ctx)
	return result, nil
}

func (s *Service) UpdateUser(ctx context.Context, input types.UpdateUserInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateUser", trace.WithAttributes(attribute.Int64("user.id", input.ID)))
	defer span.End()
	result, err := s.inner.UpdateUser(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update user", slog.Int64("user_id", input.ID))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

func (s *Service) DeleteUser(ctx context.Context, input types.UserIdentifier) error {
	ctx, span := s.tracer.Start(ctx, "UserService.DeleteUser", trace.WithAttributes(attribute.Int64("user.id", input.ID)))
	defer span.End()
	if err := s.inner.DeleteUser(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete user", slog.Int64("user_id", input.ID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "user deleted", slog.Int64("user_id", input.ID))
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	usersCreated  metric.Int64Counter
	usersReplaced metric.Int64Counter
	usersUpdated  metric.Int64Counter
	usersDeleted  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("users.service.created", metric.WithDescription("Number of users created"))
	replaced, _ := m.Int64Counter("users.service.replaced", metric.WithDescription("Number of users replaced"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Number of users partially updated"))
	deleted, _ := m.Int64Counter("users.service.deleted", metric.WithDescription("Number of users deleted"))
	return serviceMetrics{usersCreated: created, usersReplaced: replaced, usersUpdated: updated, usersDeleted: deleted}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.usersCreated != nil {
		m.usersCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordReplaced(ctx context.Context) {
	if m.usersReplaced != nil {
		m.usersReplaced.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.usersUpdated != nil {
		m.usersUpdated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.usersDeleted != nil {
		m.usersDeleted.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
