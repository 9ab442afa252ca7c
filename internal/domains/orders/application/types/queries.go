package types

import "github.com/Apurer/go-gin-users-orders/internal/shared/pagination"

type OrderIdentifier struct {
	ID int64
}

// ListOrdersInput filters and pages an order listing.
type ListOrdersInput struct {
	UserID    int64
	MinAmount *float64
	MaxAmount *float64
	Page      pagination.Page
}
