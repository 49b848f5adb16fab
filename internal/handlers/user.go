package handlers

import (
	"strconv"

	"github.com/codemule/adminbase/backend/internal/middleware"
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/codemule/adminbase/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userSvc *services.UserService) *UserHandler {
	return &UserHandler{userService: userSvc}
}

// List returns a page of users
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	var q services.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	users, total, err := h.userService.List(&q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, total, q.Page, q.PageSize, users)
}

// Get returns a single user
// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

// Create adds a new user
// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		if err == services.ErrUserAlreadyExists {
			response.Error(c, response.NewConflict("email already registered"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update modifies a user
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(id, &req)
	if err != nil {
		if err == services.ErrUserNotFound {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Delete removes a user
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if id == middleware.GetUserID(c) {
		response.BadRequest(c, "cannot delete your own account")
		return
	}

	if err := h.userService.Delete(id); err != nil {
		if err == services.ErrUserNotFound {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "user deleted"})
}

// UpdateProfile updates the caller's own display fields
// PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
