package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stackmesa/identity-service/internal/metrics"
	"github.com/stackmesa/identity-service/internal/service"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	cookies     *CookieHelper
	jwtService  service.JWTService
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, jwtService service.JWTService, cookies *CookieHelper, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		jwtService:  jwtService,
		metrics:     m,
	}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Email           string  `json:"email" binding:"required,email,max=255"`
	Username        string  `json:"username" binding:"required,min=3,max=64"`
	Password        string  `json:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string  `json:"confirm_password" binding:"required,eqfield=Password"`
	FirstName       *string `json:"first_name" binding:"omitempty,max=100"`
	LastName        *string `json:"last_name" binding:"omitempty,max=100"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary Register a new account
// @Description Create an account with the default "user" role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	h.metrics.Registrations.Inc()
	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary User login
// @Description Authenticate with email and password, set auth cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.LoginFailures.Inc()
		RespondDomainError(c, err)
		return
	}

	h.metrics.LoginSuccesses.Inc()
	h.cookies.SetAuthCookies(c, response.AccessToken, response.RefreshToken,
		h.jwtService.GetAccessExpiry(), h.jwtService.GetRefreshExpiry())
	c.JSON(http.StatusOK, response)
}

// Logout godoc
// @Summary User logout
// @Description Invalidate the refresh token and clear auth cookies
// @Tags auth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.cookies.ClearAuthCookies(c)
		RespondError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	h.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Refresh godoc
// @Summary Refresh the token pair
// @Description Rotate access and refresh tokens using the refresh cookie
// @Tags auth
// @Produce json
// @Success 200 {object} service.LoginResponse
// @Failure 401 {object} map[string]string
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := h.cookies.GetRefreshToken(c)
	if refreshToken == "" {
		RespondError(c, http.StatusUnauthorized, "missing refresh token")
		return
	}

	response, err := h.authService.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.cookies.ClearAuthCookies(c)
		RespondDomainError(c, err)
		return
	}

	h.cookies.SetAuthCookies(c, response.AccessToken, response.RefreshToken,
		h.jwtService.GetAccessExpiry(), h.jwtService.GetRefreshExpiry())
	c.JSON(http.StatusOK, response)
}

// extractToken reads the access token from the auth cookie, falling back to
// a bearer Authorization header for non-browser clients.
func (h *AuthHandler) extractToken(c *gin.Context) string {
	if token := h.cookies.GetAccessToken(c); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
