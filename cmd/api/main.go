// Package main is the entry point for the identity service.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	_ "github.com/stackmesa/identity-service/docs"
	"github.com/stackmesa/identity-service/internal/config"
	"github.com/stackmesa/identity-service/internal/database"
	"github.com/stackmesa/identity-service/internal/handlers"
	"github.com/stackmesa/identity-service/internal/metrics"
	"github.com/stackmesa/identity-service/internal/repository"
	"github.com/stackmesa/identity-service/internal/routes"
	"github.com/stackmesa/identity-service/internal/service"
	"github.com/stackmesa/identity-service/pkg/redis"
)

// @title Identity Service API
// @version 1.0
// @description Registration, authentication, and role-based access control for the admin dashboard
// @host localhost:8084
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.Seed(context.Background(), db); err != nil {
		log.Fatal("Failed to seed roles: ", err)
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	jwtService := service.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	if jwtService == nil {
		log.Fatal("JWT_SECRET must be at least 32 bytes")
	}
	authService := service.NewAuthService(userRepo, roleRepo, jwtService, redisClient)
	rbacService := service.NewRBACService(userRepo, roleRepo)

	m := metrics.New(prometheus.DefaultRegisterer)
	cookies := handlers.NewCookieHelper(cfg.Cookie)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	routes.Setup(router, routes.Deps{
		Config:      cfg,
		Metrics:     m,
		JWTService:  jwtService,
		RBACService: rbacService,
		UserRepo:    userRepo,
		Auth:        handlers.NewAuthHandler(authService, jwtService, cookies, m),
		Admin:       handlers.NewAdminHandler(rbacService),
		User:        handlers.NewUserHandler(rbacService, authService),
		Health:      handlers.NewHealthHandler(),
	})

	log.Printf("Starting identity service on port %s", cfg.Port)
	if err := router.Run(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
