package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackmesa/identity-service/internal/config"
)

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSetAuthCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	helper := NewCookieHelper(config.CookieConfig{
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		helper.SetAuthCookies(c, "access-value", "refresh-value", 15*time.Minute, 168*time.Hour)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()

	access := cookieByName(cookies, AccessTokenCookie)
	if access == nil {
		t.Fatal("access cookie not set")
	}
	if access.Value != "access-value" {
		t.Errorf("access value = %q, want %q", access.Value, "access-value")
	}
	if !access.HttpOnly {
		t.Error("auth cookies must be HttpOnly")
	}
	if !access.Secure {
		t.Error("Secure flag should carry through from config")
	}
	if access.MaxAge != int((15 * time.Minute).Seconds()) {
		t.Errorf("access MaxAge = %d, want %d", access.MaxAge, int((15 * time.Minute).Seconds()))
	}

	refresh := cookieByName(cookies, RefreshTokenCookie)
	if refresh == nil {
		t.Fatal("refresh cookie not set")
	}
	if refresh.MaxAge != int((168 * time.Hour).Seconds()) {
		t.Errorf("refresh MaxAge = %d, want %d", refresh.MaxAge, int((168 * time.Hour).Seconds()))
	}
}

func TestClearAuthCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	helper := NewCookieHelper(config.CookieConfig{Path: "/", SameSite: http.SameSiteLaxMode})

	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		helper.ClearAuthCookies(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := cookieByName(w.Result().Cookies(), name)
		if c == nil {
			t.Fatalf("%s cookie not set", name)
		}
		if c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("%s should be cleared, value=%q maxAge=%d", name, c.Value, c.MaxAge)
		}
	}
}

func TestGetTokens_MissingCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	helper := NewCookieHelper(config.CookieConfig{Path: "/"})

	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		if got := helper.GetAccessToken(c); got != "" {
			t.Errorf("GetAccessToken() = %q, want empty", got)
		}
		if got := helper.GetRefreshToken(c); got != "" {
			t.Errorf("GetRefreshToken() = %q, want empty", got)
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
}
