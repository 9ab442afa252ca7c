package ports

import (
	"context"

	"github.com/Apurer/go-gin-users-orders/internal/domains/users/application/types"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	CreateUser(ctx context.Context, input types.CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, input types.UserIdentifier) (*domain.User, error)
	ListUsers(ctx context.Context, input types.ListUsersInput) ([]*domain.User, error)
	ReplaceUser(ctx context.Context, input types.ReplaceUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, input types.UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, input types.UserIdentifier) error
}
