package ports

import (
	"context"

	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error)
	ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error)
	ReplaceOrder(ctx context.Context, input types.ReplaceOrderInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, input types.UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, input types.OrderIdentifier) error
}
