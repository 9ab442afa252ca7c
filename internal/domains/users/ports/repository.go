package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
	"github.com/Apurer/go-gin-users-orders/internal/shared/pagination"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUserHasOrders  = errors.New("user still has orders")
)

// ListFilter narrows a user listing. Empty strings disable the corresponding filter.
type ListFilter struct {
	Email        string
	NameContains string
	Page         pagination.Page
}

// Repository persists users. Implementations assign identifiers on Create and
// reject an email already held by another live user with ErrDuplicateEmail.
type Repository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*domain.User, error)
}
