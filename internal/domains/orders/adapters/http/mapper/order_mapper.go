package mapper

import (
	"github.com/Apurer/go-gin-users-orders/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/go-gin-users-orders/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-users-orders/internal/shared/pagination"
)

// Order represents the transport-layer order payload.
type Order struct {
	ID     int64   `json:"id"`
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
	UserID int64   `json:"user_id"`
}

// CreateOrder is the POST /orders body. Amount is a pointer so that 0 is accepted but absence is not.
type CreateOrder struct {
	Item   string   `json:"item" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
	UserID int64    `json:"user_id" binding:"required,min=1"`
}

type ReplaceOrder struct {
	Item   string   `json:"item" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
	UserID int64    `json:"user_id" binding:"required,min=1"`
}

// PatchOrder is the PATCH /orders/{id} body. user_id is not accepted here.
type PatchOrder struct {
	Item   *string  `json:"item" binding:"omitempty,min=1"`
	Amount *float64 `json:"amount"`
}

// ListOrdersQuery binds the GET /orders query string.
type ListOrdersQuery struct {
	UserID    *int64   `form:"user_id" json:"user_id" binding:"omitempty,min=1"`
	MinAmount *float64 `form:"min_amount" json:"min_amount" binding:"omitempty,finite"`
	MaxAmount *float64 `form:"max_amount" json:"max_amount" binding:"omitempty,finite"`
	Limit     *int     `form:"limit" json:"limit" binding:"omitempty,min=1,max=1000"`
	Offset    *int     `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

func (b CreateOrder) ToInput() types.CreateOrderInput {
	return types.CreateOrderInput{Item: b.Item, Amount: deref(b.Amount), UserID: b.UserID}
}

func (b ReplaceOrder) ToInput(id int64) types.ReplaceOrderInput {
	return types.ReplaceOrderInput{ID: id, Item: b.Item, Amount: deref(b.Amount), UserID: b.UserID}
}

func (b PatchOrder) ToInput(id int64) types.UpdateOrderInput {
	return types.UpdateOrderInput{ID: id, Item: b.Item, Amount: b.Amount}
}

func (q ListOrdersQuery) ToInput() types.ListOrdersInput {
	var userID int64
	if q.UserID != nil {
		userID = *q.UserID
	}
	return types.ListOrdersInput{
		UserID:    userID,
		MinAmount: q.MinAmount,
		MaxAmount: q.MaxAmount,
		Page:      pagination.FromQuery(q.Limit, q.Offset),
	}
}

// FromDomainOrder converts a domain order into its transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	return Order{ID: order.ID, Item: order.Item, Amount: order.Amount, UserID: order.UserID}
}

func FromDomainOrders(orders []*orderdomain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
