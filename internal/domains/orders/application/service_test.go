package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-users-orders/internal/shared/events"
	"github.com/Apurer/go-gin-users-orders/internal/shared/pagination"
)

type fakeUserDirectory struct {
	ids map[int64]bool
	err error
}

func (f fakeUserDirectory) Exists(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.ids[id], nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(users ...int64) (*Service, *recordingPublisher) {
	dir := fakeUserDirectory{ids: map[int64]bool{}}
	for _, id := range users {
		dir.ids[id] = true
	}
	publisher := &recordingPublisher{}
	return NewService(memory.NewRepository(), dir, WithEventPublisher(publisher)), publisher
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }

func TestService_CreateOrder(t *testing.T) {
	svc, publisher := newTestService(1)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, types.CreateOrderInput{Item: "Book", Amount: 10, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "Book", order.Item)

	_, err = svc.CreateOrder(ctx, types.CreateOrderInput{Item: "Book", Amount: 10, UserID: 99})
	require.ErrorIs(t, err, ports.ErrUnknownUser)

	_, err = svc.CreateOrder(ctx, types.CreateOrderInput{Item: " ", Amount: 10, UserID: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyItem)

	_, err = svc.CreateOrder(ctx, types.CreateOrderInput{Item: "Book", Amount: 1, UserID: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	all, err := svc.ListOrders(ctx, types.ListOrdersInput{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, []events.Type{events.OrderCreated}, publisher.types())
}

func TestService_CreateOrderPropagatesDirectoryFailure(t *testing.T) {
	boom := errors.New("users offline")
	svc := NewService(memory.NewRepository(), fakeUserDirectory{err: boom})
	_, err := svc.CreateOrder(context.Background(), types.CreateOrderInput{Item: "Book", Amount: 1, UserID: 1})
	require.ErrorIs(t, err, boom)

	unwired := NewService(memory.NewRepository(), nil)
	_, err = unwired.CreateOrder(context.Background(), types.CreateOrderInput{Item: "Book", Amount: 1, UserID: 1})
	require.ErrorIs(t, err, ports.ErrUnknownUser)
}

func TestService_ReplaceOrder(t *testing.T) {
	svc, publisher := newTestService(1, 2)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, types.CreateOrderInput{Item: "Book", Amount: 10, UserID: 1})
	require.NoError(t, err)

	replaced, err := svc.ReplaceOrder(ctx, types.ReplaceOrderInput{ID: order.ID, Item: "Pen", Amount: 2, UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.Order{ID: order.ID, Item: "Pen", Amount: 2, UserID: 2}, *replaced)

	_, err = svc.ReplaceOrder(ctx, types.ReplaceOrderInput{ID: order.ID, Item: "Pen", Amount: 2, UserID: 3})
	require.ErrorIs(t, err, ports.ErrUnknownUser)

	_, err = svc.ReplaceOrder(ctx, types.ReplaceOrderInput{ID: 50, Item: "Pen", Amount: 2, UserID: 1})
	require.ErrorIs(t, err, ports.ErrNotFound)

	stored, err := svc.GetOrder(ctx, types.OrderIdentifier{ID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.UserID)
	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderReplaced}, publisher.types())
}

func TestService_UpdateOrder(t *testing.T) {
	svc, publisher := newTestService(1)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, types.CreateOrderInput{Item: "Book", Amount: 10, UserID: 1})
	require.NoError(t, err)

	same, err := svc.UpdateOrder(ctx, types.UpdateOrderInput{ID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, order, same)

	cheaper, err := svc.UpdateOrder(ctx, types.UpdateOrderInput{ID: order.ID, Amount: floatPtr(0)})
	require.NoError(t, err)
	assert.Zero(t, cheaper.Amount)
	assert.Equal(t, "Book", cheaper.Item)
	assert.Equal(t, int64(1), cheaper.UserID)

	renamed, err := svc.UpdateOrder(ctx, types.UpdateOrderInput{ID: order.ID, Item: strPtr("Novel")})
	require.NoError(t, err)
	assert.Equal(t, "Novel", renamed.Item)
	assert.Zero(t, renamed.Amount)

	_, err = svc.UpdateOrder(ctx, types.UpdateOrderInput{ID: order.ID, Item: strPtr("")})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateOrder(ctx, types.UpdateOrderInput{ID: 404, Amount: floatPtr(1)})
	require.ErrorIs(t, err, ports.ErrNotFound)

	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderUpdated, events.OrderUpdated}, publisher.types())
}

func TestService_ListAndDelete(t *testing.T) {
	svc, publisher := newTestService(1, 2)
	ctx := context.Background()

	for _, in := range []types.CreateOrderInput{
		{Item: "Book", Amount: 10, UserID: 1},
		{Item: "Pen", Amount: 2, UserID: 2},
		{Item: "Lamp", Amount: 40, UserID: 1},
	} {
		_, err := svc.CreateOrder(ctx, in)
		require.NoError(t, err)
	}

	mine, err := svc.ListOrders(ctx, types.ListOrdersInput{UserID: 1, MaxAmount: floatPtr(40)})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(3), mine[1].ID)

	window, err := svc.ListOrders(ctx, types.ListOrdersInput{Page: pagination.Page{Limit: 1, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, int64(3), window[0].ID)

	require.NoError(t, svc.DeleteOrder(ctx, types.OrderIdentifier{ID: 2}))
	require.ErrorIs(t, svc.DeleteOrder(ctx, types.OrderIdentifier{ID: 2}), ports.ErrNotFound)

	count, err := svc.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	removed, err := svc.DeleteByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	assert.Equal(t, events.OrderDeleted, publisher.types()[len(publisher.events)-1])
}
