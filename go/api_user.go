package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-gin-users-orders/internal/domains/users/adapters/http/mapper"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/application/types"
	userports "github.com/Apurer/go-gin-users-orders/internal/domains/users/ports"
)

// UserAPI implements the /users section.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /users
// Create user
func (api *UserAPI) CreateUser(c *gin.Context) {
	var payload userhttpmapper.CreateUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := api.service.CreateUser(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(saved))
}

// Get /users
// List users filtered by email or name fragment
func (api *UserAPI) ListUsers(c *gin.Context) {
	var query userhttpmapper.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}
	users, err := api.service.ListUsers(c.Request.Context(), query.ToInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUsers(users))
}

// Get /users/:id
// Get user by id
func (api *UserAPI) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	user, err := api.service.GetUser(c.Request.Context(), types.UserIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /users/:id
// Replace user
func (api *UserAPI) ReplaceUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload userhttpmapper.ReplaceUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.ReplaceUser(c.Request.Context(), payload.ToInput(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Patch /users/:id
// Partially update user
func (api *UserAPI) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload userhttpmapper.PatchUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.UpdateUser(c.Request.Context(), payload.ToInput(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Delete /users/:id
// Delete user
func (api *UserAPI) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := api.service.DeleteUser(c.Request.Context(), types.UserIdentifier{ID: id}); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
