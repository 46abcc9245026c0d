package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stackmesa/identity-service/internal/middleware"
	"github.com/stackmesa/identity-service/internal/service"
)

// AdminHandler handles the admin dashboard HTTP surface. Authorization for
// the "admin" role is enforced by middleware at the route group boundary;
// handlers here assume it already passed.
type AdminHandler struct {
	rbacService service.RBACService
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(rbacService service.RBACService) *AdminHandler {
	return &AdminHandler{rbacService: rbacService}
}

// RoleRequest names a role in grant, revoke, and create payloads.
type RoleRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

// ActiveRequest carries the desired active state for a user.
type ActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ListUsers godoc
// @Summary List all users with their roles
// @Tags admin
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} map[string]string
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.rbacService.ListUsers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GrantRole godoc
// @Summary Grant a role to a user
// @Description Idempotent; granting an already-held role is a no-op
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body RoleRequest true "Role name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/users/{id}/roles [post]
func (h *AdminHandler) GrantRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	if err := h.rbacService.GrantRole(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role granted"})
}

// RevokeRole godoc
// @Summary Revoke a role from a user
// @Description Idempotent; revoking an unheld role is a no-op
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Param role path string true "Role name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/users/{id}/roles/{role} [delete]
func (h *AdminHandler) RevokeRole(c *gin.Context) {
	err := h.rbacService.RevokeRole(c.Request.Context(), c.Param("id"), c.Param("role"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role revoked"})
}

// SetActive godoc
// @Summary Activate or deactivate a user account
// @Description Deactivating your own account is rejected
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body ActiveRequest true "Desired state"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/users/{id}/active [put]
func (h *AdminHandler) SetActive(c *gin.Context) {
	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	actorID := middleware.CurrentUserID(c)
	err := h.rbacService.SetActive(c.Request.Context(), actorID, c.Param("id"), *req.Active)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

// ListRoles godoc
// @Summary List all roles
// @Tags admin
// @Produce json
// @Success 200 {array} models.Role
// @Router /admin/roles [get]
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.rbacService.ListRoles(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// CreateRole godoc
// @Summary Create a role
// @Tags admin
// @Accept json
// @Produce json
// @Param request body RoleRequest true "Role name"
// @Success 201 {object} models.Role
// @Failure 409 {object} map[string]string
// @Router /admin/roles [post]
func (h *AdminHandler) CreateRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	role, err := h.rbacService.CreateRole(c.Request.Context(), req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// DeleteRole godoc
// @Summary Delete a role
// @Description Removes the role and cascades removal of its memberships
// @Tags admin
// @Produce json
// @Param role path string true "Role name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/roles/{role} [delete]
func (h *AdminHandler) DeleteRole(c *gin.Context) {
	if err := h.rbacService.DeleteRole(c.Request.Context(), c.Param("role")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role deleted"})
}
