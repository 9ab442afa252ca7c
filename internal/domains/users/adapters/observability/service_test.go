package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/memory"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/application"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/application/types"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/ports"
)

func TestService_DelegatesAndLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := New(application.NewService(memory.NewRepository()),
		WithLogger(logger),
		WithMeter(noop.NewMeterProvider().Meter("test")),
	)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, types.CreateUserInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Contains(t, buf.String(), "user created")

	_, err = svc.CreateUser(ctx, types.CreateUserInput{Name: "Ann", Email: "ann@x.com"})
	require.True(t, errors.Is(err, ports.ErrDuplicateEmail))
	assert.Contains(t, buf.String(), "failed to create user")

	list, err := svc.ListUsers(ctx, types.ListUsersInput{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteUser(ctx, types.UserIdentifier{ID: 1}))
	_, err = svc.GetUser(ctx, types.UserIdentifier{ID: 1})
	require.ErrorIs(t, err, ports.ErrNotFound)
}
