// Package repository provides the data access layer for the identity service.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stackmesa/identity-service/internal/apperrors"
	"github.com/stackmesa/identity-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user and membership operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id string, active bool) error

	GrantRole(ctx context.Context, userID, roleID string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
	HasRole(ctx context.Context, userID, roleName string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user row. Membership rows for any populated Roles are
// written in the same transaction, so a failed insert commits nothing.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return duplicateKeyError(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id %s: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isDuplicateKey(err) {
			return duplicateKeyError(err)
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to set active=%t on user %s: %w", active, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GrantRole inserts a membership row. Granting an already-held role is a
// no-op, enforced by ON CONFLICT DO NOTHING on the composite primary key.
func (r *userRepository) GrantRole(ctx context.Context, userID, roleID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: userID, RoleID: roleID}).Error
	if err != nil {
		return fmt.Errorf("failed to grant role %s to user %s: %w", roleID, userID, err)
	}
	return nil
}

// RevokeRole deletes a membership row. Revoking an unheld role is a no-op.
func (r *userRepository) RevokeRole(ctx context.Context, userID, roleID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke role %s from user %s: %w", roleID, userID, err)
	}
	return nil
}

// HasRole reports whether a membership currently exists between the user and
// the named role. Callers run this per request; the result is never cached.
func (r *userRepository) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role %q for user %s: %w", roleName, userID, err)
	}
	return count > 0, nil
}

// isDuplicateKey detects unique-constraint violations across the gorm
// translated error and the raw Postgres SQLSTATE.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "SQLSTATE 23505") ||
		strings.Contains(err.Error(), "duplicate key")
}

// duplicateKeyError maps a unique-constraint violation to the colliding
// column. Postgres names the violated index in the error message.
func duplicateKeyError(err error) error {
	if strings.Contains(err.Error(), "username") {
		return apperrors.ErrDuplicateUsername
	}
	return apperrors.ErrDuplicateEmail
}
