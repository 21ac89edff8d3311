package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/inventa/backend/internal/application/identity"
)

// UserHandler handles user-related API endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns active users in id order. The search term matches names.
func (h *UserHandler) List(c *gin.Context) {
	var req identityapp.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	page, err := h.userService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

func (h *UserHandler) ListTrashed(c *gin.Context) {
	var req identityapp.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	page, err := h.userService.ListTrashed(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Graveyard returns trashed users and the audit records of purged ones
func (h *UserHandler) Graveyard(c *gin.Context) {
	var req identityapp.GraveyardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	graveyard, err := h.userService.Graveyard(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, graveyard)
}

// GetByID returns an active user; password hashes are never serialized
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Create creates a user
func (h *UserHandler) Create(c *gin.Context) {
	var req identityapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Update changes a user. An empty password keeps the current one.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req identityapp.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete moves a user to the trash
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user, err := h.userService.Delete(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Restore brings a trashed user back
func (h *UserHandler) Restore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user, err := h.userService.Restore(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ForceDelete permanently removes a user
func (h *UserHandler) ForceDelete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.userService.ForceDelete(c.Request.Context(), actorID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
