package handlers

import (
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/codemule/adminbase/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleSvc *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleSvc}
}

// List returns all roles
// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roles)
}

// Create adds a role
// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req services.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(&req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, role)
}

// Update modifies a role
// PUT /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}

	var req services.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Update(id, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, role)
}

// Delete removes a role
// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}

	if err := h.roleService.Delete(id); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "role deleted"})
}
