package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// CSRF returns middleware that validates Origin/Referer headers on
// state-changing requests. Cookie-based authentication needs this because
// browsers attach the auth cookies to every request for the domain.
//
// allowedOrigins should match the CORS allow list.
func CSRF(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[normalizeOrigin(origin)] = true
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" {
			if !allowed[normalizeOrigin(origin)] {
				abortCSRF(c, "invalid origin")
				return
			}
			c.Next()
			return
		}

		// No Origin header; fall back to Referer.
		if referer := c.GetHeader("Referer"); referer != "" {
			if !allowed[normalizeOrigin(refererOrigin(referer))] {
				abortCSRF(c, "invalid referer")
				return
			}
			c.Next()
			return
		}

		// Neither header present: direct call without browser context.
		abortCSRF(c, "missing origin")
	}
}

func abortCSRF(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error": "CSRF validation failed: " + reason,
	})
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}

// refererOrigin reduces a referer URL to its origin (scheme://host).
func refererOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
