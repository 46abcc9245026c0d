package service

import (
	"context"
	"errors"

	"github.com/stackmesa/identity-service/internal/apperrors"
	"github.com/stackmesa/identity-service/internal/models"
	"github.com/stackmesa/identity-service/internal/repository"
)

// RBACService implements the authorization check and the admin operations
// composed on top of it. The authorization check hits the store on every
// call; membership is never cached across requests, so a revocation takes
// effect on the target's next request.
type RBACService interface {
	Authorize(ctx context.Context, userID, roleName string) (bool, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	GrantRole(ctx context.Context, userID, roleName string) error
	RevokeRole(ctx context.Context, userID, roleName string) error
	SetActive(ctx context.Context, actorID, userID string, active bool) error

	CreateRole(ctx context.Context, name string) (*models.Role, error)
	DeleteRole(ctx context.Context, name string) error
	ListRoles(ctx context.Context) ([]models.Role, error)
}

type rbacService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewRBACService creates a new RBACService instance.
func NewRBACService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) RBACService {
	return &rbacService{userRepo: userRepo, roleRepo: roleRepo}
}

// Authorize reports whether a membership currently exists between the user
// and the named role.
func (s *rbacService) Authorize(ctx context.Context, userID, roleName string) (bool, error) {
	return s.userRepo.HasRole(ctx, userID, roleName)
}

func (s *rbacService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// GrantRole assigns the named role to the user, creating the role if it
// does not exist yet. Granting an already-held role is a no-op.
func (s *rbacService) GrantRole(ctx context.Context, userID, roleName string) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}

	role, err := s.roleRepo.EnsureExists(ctx, roleName)
	if err != nil {
		return err
	}

	return s.userRepo.GrantRole(ctx, userID, role.ID)
}

// RevokeRole removes the named role from the user. Revoking an unheld role
// is a no-op; a nonexistent role is reported as such.
func (s *rbacService) RevokeRole(ctx context.Context, userID, roleName string) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}

	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		return err
	}

	return s.userRepo.RevokeRole(ctx, userID, role.ID)
}

// SetActive flips the active flag on the target user. Deactivating your own
// account is rejected; an inactive admin can still be reactivated by
// another admin. Nothing stops an admin from deactivating the only other
// admin account, which can leave the system without an active admin.
func (s *rbacService) SetActive(ctx context.Context, actorID, userID string, active bool) error {
	if !active && actorID == userID {
		return apperrors.ErrSelfDeactivation
	}
	return s.userRepo.SetActive(ctx, userID, active)
}

func (s *rbacService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{Name: name}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole removes the role; memberships referencing it are removed by
// the store's cascade constraint.
func (s *rbacService) DeleteRole(ctx context.Context, name string) error {
	return s.roleRepo.Delete(ctx, name)
}

func (s *rbacService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.roleRepo.List(ctx)
}

// SeedRoles ensures the built-in roles exist. Called once at startup.
func SeedRoles(ctx context.Context, roleRepo repository.RoleRepository) error {
	for _, name := range []string{models.RoleAdmin, models.RoleUser} {
		if _, err := roleRepo.EnsureExists(ctx, name); err != nil && !errors.Is(err, apperrors.ErrDuplicateRoleName) {
			return err
		}
	}
	return nil
}
