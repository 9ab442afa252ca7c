package domain

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrEmptyItem     = errors.New("item is required")
	ErrInvalidAmount = errors.New("amount must be a finite number")
	ErrInvalidUserID = errors.New("user id must be greater than zero")
)

// Order models a purchase placed by a user.
type Order struct {
	ID     int64
	Item   string
	Amount float64
	UserID int64
}

// NewOrder validates and constructs a new Order. The identifier is assigned by the repository.
func NewOrder(item string, amount float64, userID int64) (*Order, error) {
	order := &Order{}
	if err := order.ChangeItem(item); err != nil {
		return nil, err
	}
	if err := order.ChangeAmount(amount); err != nil {
		return nil, err
	}
	if err := order.AssignUser(userID); err != nil {
		return nil, err
	}
	return order, nil
}

// ChangeItem trims and sets the item description.
func (o *Order) ChangeItem(item string) error {
	item = strings.TrimSpace(item)
	if item == "" {
		return ErrEmptyItem
	}
	o.Item = item
	return nil
}

// IsFiniteAmount reports whether amount is neither NaN nor infinite.
func IsFiniteAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// ChangeAmount accepts any finite amount, including zero and negatives.
func (o *Order) ChangeAmount(amount float64) error {
	if !IsFiniteAmount(amount) {
		return ErrInvalidAmount
	}
	o.Amount = amount
	return nil
}

func (o *Order) AssignUser(userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	o.UserID = userID
	return nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if err := o.ChangeItem(o.Item); err != nil {
		return err
	}
	if err := o.ChangeAmount(o.Amount); err != nil {
		return err
	}
	return o.AssignUser(o.UserID)
}
