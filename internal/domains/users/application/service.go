package application

import (
	"context"
	"fmt"

	"github.com/Apurer/go-gin-users-orders/internal/domains/users/application/types"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/ports"
	"github.com/Apurer/go-gin-users-orders/internal/shared/events"
	"github.com/Apurer/go-gin-users-orders/internal/shared/references"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo   ports.Repository
	orders ports.OrderReferences
	policy DeletePolicy
	events events.Publisher
	guard  references.Guard
}

// Option customises the service collaborators.
type Option func(*Service)

// WithOrderReferences gives the delete policy access to the order store.
func WithOrderReferences(orders ports.OrderReferences) Option {
	return func(s *Service) { s.orders = orders }
}

// WithDeletePolicy selects how deleting a user treats its orders.
func WithDeletePolicy(policy DeletePolicy) Option {
	return func(s *Service) { s.policy = policy }
}

// WithEventPublisher emits an event after every successful mutation.
func WithEventPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.events = publisher }
}

// WithReferenceGuard holds the user exclusively while the delete policy runs.
// The order service must share the same guard.
func WithReferenceGuard(guard references.Guard) Option {
	return func(s *Service) { s.guard = guard }
}

// NewService wires the user service. Without options deletes orphan orders and no events are emitted.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, policy: DeleteOrphan, events: events.NoopPublisher, guard: references.Unguarded}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.events == nil {
		s.events = events.NoopPublisher
	}
	if s.policy == "" {
		s.policy = DeleteOrphan
	}
	if s.guard == nil {
		s.guard = references.Unguarded
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, input types.CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Name, input.Email)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events.UserCreated, saved)
	return saved, nil
}

func (s *Service) GetUser(ctx context.Context, input types.UserIdentifier) (*domain.User, error) {
	return s.repo.GetByID(ctx, input.ID)
}

// ListUsers filters first, orders by id and then applies the page window.
func (s *Service) ListUsers(ctx context.Context, input types.ListUsersInput) ([]*domain.User, error) {
	return s.repo.List(ctx, ports.ListFilter{
		Email:        input.Email,
		NameContains: input.NameContains,
		Page:         input.Page.Normalize(),
	})
}

// ReplaceUser overwrites name and email of an existing user.
func (s *Service) ReplaceUser(ctx context.Context, input types.ReplaceUserInput) (*domain.User, error) {
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := existing.Rename(input.Name); err != nil {
		return nil, mapError(err)
	}
	if err := existing.ChangeEmail(input.Email); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events.UserReplaced, saved)
	return saved, nil
}

// UpdateUser applies only the supplied fields. An empty update returns the stored record untouched.
func (s *Service) UpdateUser(ctx context.Context, input types.UpdateUserInput) (*domain.User, error) {
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return existing, nil
	}
	if input.Name != nil {
		if err := existing.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Email != nil {
		if err := existing.ChangeEmail(*input.Email); err != nil {
			return nil, mapError(err)
		}
	}
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events.UserUpdated, saved)
	return saved, nil
}

// DeleteUser removes a user according to the configured delete policy.
// The policy check, any cascade and the delete run as one guarded unit.
func (s *Service) DeleteUser(ctx context.Context, input types.UserIdentifier) error {
	if s.policy != DeleteOrphan && s.orders == nil {
		return ErrPolicyMisconfigured
	}
	var data map[string]any
	err := s.guard.Exclusive(ctx, input.ID, func(ctx context.Context) error {
		if s.policy != DeleteOrphan {
			if _, err := s.repo.GetByID(ctx, input.ID); err != nil {
				return err
			}
		}
		switch s.policy {
		case DeleteRestrict:
			count, err := s.orders.CountByUser(ctx, input.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: %d order(s) reference user %d", ports.ErrUserHasOrders, count, input.ID)
			}
		case DeleteCascade:
			removed, err := s.orders.DeleteByUser(ctx, input.ID)
			if err != nil {
				return err
			}
			data = map[string]any{"orders_removed": removed}
		}
		return s.repo.Delete(ctx, input.ID)
	})
	if err != nil {
		return err
	}
	_ = s.events.Publish(ctx, events.New(events.UserDeleted, events.ResourceUser, input.ID, data))
	return nil
}

// Policy reports the configured delete policy.
func (s *Service) Policy() DeletePolicy {
	return s.policy
}

func (s *Service) publish(ctx context.Context, eventType events.Type, user *domain.User) {
	_ = s.events.Publish(ctx, events.New(eventType, events.ResourceUser, user.ID, map[string]any{
		"name":  user.Name,
		"email": user.Email,
	}))
}

var _ ports.Service = (*Service)(nil)
