// Package routes defines HTTP routes for the identity service.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stackmesa/identity-service/docs"
	"github.com/stackmesa/identity-service/internal/config"
	"github.com/stackmesa/identity-service/internal/handlers"
	"github.com/stackmesa/identity-service/internal/metrics"
	"github.com/stackmesa/identity-service/internal/middleware"
	"github.com/stackmesa/identity-service/internal/repository"
	"github.com/stackmesa/identity-service/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Config      *config.Config
	Metrics     *metrics.Metrics
	JWTService  service.JWTService
	RBACService service.RBACService
	UserRepo    repository.UserRepository
	Auth        *handlers.AuthHandler
	Admin       *handlers.AdminHandler
	User        *handlers.UserHandler
	Health      *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application. Authorization for
// admin routes is applied once at the group boundary.
func Setup(router *gin.Engine, d Deps) {
	router.Use(d.Metrics.Handler())
	router.Use(middleware.CSRF(d.Config.AllowedOrigins))

	router.GET("/health", d.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
		auth.POST("/logout", d.Auth.Logout)
		auth.POST("/refresh", d.Auth.Refresh)
	}

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(d.JWTService, d.UserRepo))
	{
		authed.GET("/me", d.User.Me)
		authed.PUT("/me/password", d.User.ChangePassword)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAuth(d.JWTService, d.UserRepo))
	admin.Use(middleware.RequireRole(d.RBACService, "admin"))
	{
		admin.GET("/users", d.Admin.ListUsers)
		admin.POST("/users/:id/roles", d.Admin.GrantRole)
		admin.DELETE("/users/:id/roles/:role", d.Admin.RevokeRole)
		admin.PUT("/users/:id/active", d.Admin.SetActive)
		admin.GET("/roles", d.Admin.ListRoles)
		admin.POST("/roles", d.Admin.CreateRole)
		admin.DELETE("/roles/:role", d.Admin.DeleteRole)
	}

	// Swagger documentation (only if SWAGGER_HOST is configured)
	if d.Config.SwaggerHost != "" {
		docs.SwaggerInfo.Host = d.Config.SwaggerHost
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
