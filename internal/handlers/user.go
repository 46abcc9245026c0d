package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stackmesa/identity-service/internal/middleware"
	"github.com/stackmesa/identity-service/internal/service"
)

// UserHandler serves the authenticated user's self-service endpoints.
type UserHandler struct {
	rbacService service.RBACService
	authService service.AuthService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(rbacService service.RBACService, authService service.AuthService) *UserHandler {
	return &UserHandler{rbacService: rbacService, authService: authService}
}

// PasswordRequest carries a password change for the authenticated user.
type PasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=64"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// Me godoc
// @Summary Current user profile
// @Description Return the authenticated user together with admin status
// @Tags user
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	isAdmin, err := h.rbacService.Authorize(c.Request.Context(), user.ID, "admin")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"is_admin": isAdmin,
	})
}

// ChangePassword godoc
// @Summary Change the authenticated user's password
// @Description The current password must verify before the new one is stored
// @Tags user
// @Accept json
// @Produce json
// @Param request body PasswordRequest true "Password change"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
