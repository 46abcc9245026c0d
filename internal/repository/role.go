package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/stackmesa/identity-service/internal/apperrors"
	"github.com/stackmesa/identity-service/internal/models"
	"gorm.io/gorm"
)

// RoleRepository defines the interface for role data operations.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	FindByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	// Delete removes the role; the user_roles foreign keys are declared
	// ON DELETE CASCADE so all memberships referencing it go with it.
	Delete(ctx context.Context, name string) error
	// EnsureExists returns the named role, creating it when absent.
	EnsureExists(ctx context.Context, name string) (*models.Role, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository instance.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.ErrDuplicateRoleName
		}
		return fmt.Errorf("failed to create role %q: %w", role.Name, err)
	}
	return nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find role %q: %w", name, err)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *roleRepository) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Role{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete role %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *roleRepository) EnsureExists(ctx context.Context, name string) (*models.Role, error) {
	role, err := r.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	role = &models.Role{Name: name}
	if err := r.Create(ctx, role); err != nil {
		// Lost a create race; the other writer's row is the one we want.
		if errors.Is(err, apperrors.ErrDuplicateRoleName) {
			return r.FindByName(ctx, name)
		}
		return nil, err
	}
	return role, nil
}
