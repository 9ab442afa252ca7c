package application

import (
	"context"
	"fmt"

	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-users-orders/internal/shared/events"
	"github.com/Apurer/go-gin-users-orders/internal/shared/references"
)

// Service orchestrates order use cases.
type Service struct {
	repo   ports.Repository
	users  ports.UserDirectory
	events events.Publisher
	guard  references.Guard
}

type Option func(*Service)

// WithEventPublisher emits an event after every successful mutation.
func WithEventPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.events = publisher }
}

// WithReferenceGuard holds the owner across the existence check and the write.
// Share one guard with the user service so a concurrent delete cannot orphan the order.
func WithReferenceGuard(guard references.Guard) Option {
	return func(s *Service) { s.guard = guard }
}

// NewService wires the order service. The user directory backs the reference check on create and replace.
func NewService(repo ports.Repository, users ports.UserDirectory, opts ...Option) *Service {
	s := &Service{repo: repo, users: users, events: events.NoopPublisher, guard: references.Unguarded}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.events == nil {
		s.events = events.NoopPublisher
	}
	if s.guard == nil {
		s.guard = references.Unguarded
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	order, err := domain.NewOrder(input.Item, input.Amount, input.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	var saved *domain.Order
	err = s.guard.Shared(ctx, order.UserID, func(ctx context.Context) error {
		if err := s.ensureUser(ctx, order.UserID); err != nil {
			return err
		}
		created, err := s.repo.Create(ctx, order)
		if err != nil {
			return mapError(err)
		}
		saved = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderCreated, saved)
	return saved, nil
}

func (s *Service) GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	return s.repo.GetByID(ctx, input.ID)
}

// ListOrders applies the conjunctive filters, orders by id and then pages.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error) {
	return s.repo.List(ctx, ports.ListFilter{
		UserID:    input.UserID,
		MinAmount: input.MinAmount,
		MaxAmount: input.MaxAmount,
		Page:      input.Page.Normalize(),
	})
}

// ReplaceOrder overwrites item, amount and owner. The owner must exist at call time.
func (s *Service) ReplaceOrder(ctx context.Context, input types.ReplaceOrderInput) (*domain.Order, error) {
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := existing.ChangeItem(input.Item); err != nil {
		return nil, mapError(err)
	}
	if err := existing.ChangeAmount(input.Amount); err != nil {
		return nil, mapError(err)
	}
	if err := existing.AssignUser(input.UserID); err != nil {
		return nil, mapError(err)
	}
	var saved *domain.Order
	err = s.guard.Shared(ctx, existing.UserID, func(ctx context.Context) error {
		if err := s.ensureUser(ctx, existing.UserID); err != nil {
			return err
		}
		updated, err := s.repo.Update(ctx, existing)
		if err != nil {
			return mapError(err)
		}
		saved = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderReplaced, saved)
	return saved, nil
}

// UpdateOrder applies only the supplied fields. An empty update returns the stored record untouched.
func (s *Service) UpdateOrder(ctx context.Context, input types.UpdateOrderInput) (*domain.Order, error) {
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return existing, nil
	}
	if input.Item != nil {
		if err := existing.ChangeItem(*input.Item); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Amount != nil {
		if err := existing.ChangeAmount(*input.Amount); err != nil {
			return nil, mapError(err)
		}
	}
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events.OrderUpdated, saved)
	return saved, nil
}

func (s *Service) DeleteOrder(ctx context.Context, input types.OrderIdentifier) error {
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, events.New(events.OrderDeleted, events.ResourceOrder, input.ID, nil))
	return nil
}

// CountByUser and DeleteByUser let the user service enforce its delete policy.
func (s *Service) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountByUser(ctx, userID)
}

func (s *Service) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return s.repo.DeleteByUser(ctx, userID)
}

func (s *Service) ensureUser(ctx context.Context, userID int64) error {
	if s.users == nil {
		return fmt.Errorf("%w: no user directory configured", ports.ErrUnknownUser)
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d", ports.ErrUnknownUser, userID)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType events.Type, order *domain.Order) {
	_ = s.events.Publish(ctx, events.New(eventType, events.ResourceOrder, order.ID, map[string]any{
		"item":    order.Item,
		"amount":  order.Amount,
		"user_id": order.UserID,
	}))
}

var _ ports.Service = (*Service)(nil)
