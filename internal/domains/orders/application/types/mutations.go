package types

// CreateOrderInput carries the fields required to place an order.
type CreateOrderInput struct {
	Item   string
	Amount float64
	UserID int64
}

// ReplaceOrderInput overwrites every mutable field, including the owning user.
type ReplaceOrderInput struct {
	ID     int64
	Item   string
	Amount float64
	UserID int64
}

// UpdateOrderInput changes only the fields that are set. The owning user is fixed.
type UpdateOrderInput struct {
	ID     int64
	Item   *string
	Amount *float64
}

func (in UpdateOrderInput) Empty() bool {
	return in.Item == nil && in.Amount == nil
}
