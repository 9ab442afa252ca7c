package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-users-orders/internal/shared/pagination"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrUnknownUser is returned when an order names a user that does not exist.
	ErrUnknownUser = errors.New("referenced user does not exist")
)

// ListFilter narrows an order listing. Zero values mean "no filter"; bounds are inclusive.
type ListFilter struct {
	UserID    int64
	MinAmount *float64
	MaxAmount *float64
	Page      pagination.Page
}

// Matches reports whether the order passes every set filter.
func (f ListFilter) Matches(order *domain.Order) bool {
	if f.UserID != 0 && order.UserID != f.UserID {
		return false
	}
	if f.MinAmount != nil && order.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && order.Amount > *f.MaxAmount {
		return false
	}
	return true
}

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
