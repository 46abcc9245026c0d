// Package database handles the Postgres connection and schema setup.
package database

import (
	"context"
	"fmt"

	"github.com/stackmesa/identity-service/internal/config"
	"github.com/stackmesa/identity-service/internal/models"
	"github.com/stackmesa/identity-service/internal/repository"
	"github.com/stackmesa/identity-service/internal/service"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and applies schema migrations.
// The user_roles join table is registered explicitly so its cascade
// foreign keys come from the UserRole model, not the gorm defaults.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode, cfg.TimeZone)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.SetupJoinTable(&models.User{}, "Roles", &models.UserRole{}); err != nil {
		return nil, fmt.Errorf("failed to set up user_roles join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.Role{}, "Users", &models.UserRole{}); err != nil {
		return nil, fmt.Errorf("failed to set up user_roles join table: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Role{}, &models.UserRole{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// Seed ensures the built-in "admin" and "user" roles exist.
func Seed(ctx context.Context, db *gorm.DB) error {
	return service.SeedRoles(ctx, repository.NewRoleRepository(db))
}
