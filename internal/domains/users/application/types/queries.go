package types

import "github.com/Apurer/go-gin-users-orders/internal/shared/pagination"

// UserIdentifier addresses a single user.
type UserIdentifier struct {
	ID int64
}

// ListUsersInput filters and pages a user listing.
type ListUsersInput struct {
	Email        string
	NameContains string
	Page         pagination.Page
}
