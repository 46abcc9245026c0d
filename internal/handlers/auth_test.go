package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stackmesa/identity-service/internal/apperrors"
	"github.com/stackmesa/identity-service/internal/config"
	"github.com/stackmesa/identity-service/internal/metrics"
	"github.com/stackmesa/identity-service/internal/models"
	"github.com/stackmesa/identity-service/internal/service"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

// =============================================================================
// Mock AuthService
// =============================================================================

type mockAuthService struct {
	registerFunc       func(ctx context.Context, req service.RegisterRequest) (*models.User, error)
	loginFunc          func(ctx context.Context, email, password string) (*service.LoginResponse, error)
	logoutFunc         func(ctx context.Context, token string) error
	refreshTokenFunc   func(ctx context.Context, refreshToken string) (*service.LoginResponse, error)
	changePasswordFunc func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (m *mockAuthService) Register(ctx context.Context, req service.RegisterRequest) (*models.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, token)
	}
	return errors.New("not implemented")
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.LoginResponse, error) {
	if m.refreshTokenFunc != nil {
		return m.refreshTokenFunc(ctx, refreshToken)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.changePasswordFunc != nil {
		return m.changePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	return errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(token string) (*service.Claims, error) {
	return nil, errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupAuthRouter(t *testing.T, mock *mockAuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := service.NewJWTService(testSecret, 15*time.Minute, 168*time.Hour)
	cookies := NewCookieHelper(config.CookieConfig{Path: "/", SameSite: http.SameSiteLaxMode})
	m := metrics.New(prometheus.NewRegistry())
	handler := NewAuthHandler(mock, jwtService, cookies, m)

	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/logout", handler.Logout)
	router.POST("/auth/refresh", handler.Refresh)
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Register Tests
// =============================================================================

func TestRegisterHandler_Created(t *testing.T) {
	mock := &mockAuthService{
		registerFunc: func(ctx context.Context, req service.RegisterRequest) (*models.User, error) {
			return &models.User{ID: "user-1", Email: req.Email, Username: req.Username, Active: true}, nil
		},
	}
	router := setupAuthRouter(t, mock)

	w := postJSON(router, "/auth/register", gin.H{
		"email":            "a@example.com",
		"username":         "alice",
		"password":         "Secret123!",
		"confirm_password": "Secret123!",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestRegisterHandler_ValidationFieldErrors(t *testing.T) {
	router := setupAuthRouter(t, &mockAuthService{})

	w := postJSON(router, "/auth/register", gin.H{
		"email":            "not-an-email",
		"username":         "al",
		"password":         "short",
		"confirm_password": "different",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body struct {
		Fields []FieldError `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	got := make(map[string]bool)
	for _, fe := range body.Fields {
		got[fe.Field] = true
	}
	for _, field := range []string{"Email", "Username", "Password", "ConfirmPassword"} {
		if !got[field] {
			t.Errorf("missing field error for %s, got %v", field, body.Fields)
		}
	}
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	mock := &mockAuthService{
		registerFunc: func(ctx context.Context, req service.RegisterRequest) (*models.User, error) {
			return nil, apperrors.ErrDuplicateEmail
		},
	}
	router := setupAuthRouter(t, mock)

	w := postJSON(router, "/auth/register", gin.H{
		"email":            "a@example.com",
		"username":         "alice",
		"password":         "Secret123!",
		"confirm_password": "Secret123!",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// =============================================================================
// Login Tests
// =============================================================================

func TestLoginHandler_SetsAuthCookies(t *testing.T) {
	mock := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*service.LoginResponse, error) {
			return &service.LoginResponse{
				UserID:       "user-1",
				Username:     "alice",
				AccessToken:  "access",
				RefreshToken: "refresh",
				ExpiresIn:    900,
			}, nil
		},
	}
	router := setupAuthRouter(t, mock)

	w := postJSON(router, "/auth/login", gin.H{"email": "a@example.com", "password": "Secret123!"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	cookies := map[string]string{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	if cookies[AccessTokenCookie] != "access" {
		t.Errorf("access cookie = %q, want %q", cookies[AccessTokenCookie], "access")
	}
	if cookies[RefreshTokenCookie] != "refresh" {
		t.Errorf("refresh cookie = %q, want %q", cookies[RefreshTokenCookie], "refresh")
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*service.LoginResponse, error) {
			return nil, apperrors.ErrInvalidCredentials
		},
	}
	router := setupAuthRouter(t, mock)

	w := postJSON(router, "/auth/login", gin.H{"email": "a@example.com", "password": "wrong"})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLoginHandler_InactiveAccount(t *testing.T) {
	mock := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*service.LoginResponse, error) {
			return nil, apperrors.ErrAccountInactive
		},
	}
	router := setupAuthRouter(t, mock)

	w := postJSON(router, "/auth/login", gin.H{"email": "a@example.com", "password": "Secret123!"})

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// =============================================================================
// Logout Tests
// =============================================================================

func TestLogoutHandler_ClearsCookies(t *testing.T) {
	mock := &mockAuthService{
		logoutFunc: func(ctx context.Context, token string) error { return nil },
	}
	router := setupAuthRouter(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "access"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	for _, c := range w.Result().Cookies() {
		if (c.Name == AccessTokenCookie || c.Name == RefreshTokenCookie) && c.MaxAge >= 0 {
			t.Errorf("cookie %s should be expired, MaxAge = %d", c.Name, c.MaxAge)
		}
	}
}

func TestLogoutHandler_NoToken(t *testing.T) {
	router := setupAuthRouter(t, &mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// =============================================================================
// Refresh Tests
// =============================================================================

func TestRefreshHandler_MissingCookie(t *testing.T) {
	router := setupAuthRouter(t, &mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRefreshHandler_RotatesCookies(t *testing.T) {
	mock := &mockAuthService{
		refreshTokenFunc: func(ctx context.Context, refreshToken string) (*service.LoginResponse, error) {
			if refreshToken != "old-refresh" {
				t.Errorf("refresh token = %q, want %q", refreshToken, "old-refresh")
			}
			return &service.LoginResponse{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
				ExpiresIn:    900,
			}, nil
		},
	}
	router := setupAuthRouter(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "old-refresh"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	cookies := map[string]string{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	if cookies[AccessTokenCookie] != "new-access" || cookies[RefreshTokenCookie] != "new-refresh" {
		t.Errorf("cookies = %v, want rotated pair", cookies)
	}
}
