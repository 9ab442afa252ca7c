package mapper

import (
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/application/types"
	userdomain "github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
	"github.com/Apurer/go-gin-users-orders/internal/shared/pagination"
)

// User represents the transport-level user payload.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUser is the POST /users body.
type CreateUser struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// ReplaceUser is the PUT /users/{id} body; every field is mandatory.
type ReplaceUser struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// PatchUser is the PATCH /users/{id} body. Absent fields are left untouched.
type PatchUser struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// ListUsersQuery binds the GET /users query string.
type ListUsersQuery struct {
	Email        string `form:"email" json:"email"`
	NameContains string `form:"name_contains" json:"name_contains"`
	Limit        *int   `form:"limit" json:"limit" binding:"omitempty,min=1,max=1000"`
	Offset       *int   `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

func (b CreateUser) ToInput() types.CreateUserInput {
	return types.CreateUserInput{Name: b.Name, Email: b.Email}
}

func (b ReplaceUser) ToInput(id int64) types.ReplaceUserInput {
	return types.ReplaceUserInput{ID: id, Name: b.Name, Email: b.Email}
}

func (b PatchUser) ToInput(id int64) types.UpdateUserInput {
	return types.UpdateUserInput{ID: id, Name: b.Name, Email: b.Email}
}

func (q ListUsersQuery) ToInput() types.ListUsersInput {
	return types.ListUsersInput{
		Email:        q.Email,
		NameContains: q.NameContains,
		Page:         pagination.FromQuery(q.Limit, q.Offset),
	}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{ID: user.ID, Name: user.Name, Email: user.Email}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}
