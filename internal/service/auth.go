// Package service implements the authentication and authorization logic of
// the identity service.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stackmesa/identity-service/internal/apperrors"
	"github.com/stackmesa/identity-service/internal/models"
	"github.com/stackmesa/identity-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest carries validated registration input.
type RegisterRequest struct {
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
}

// LoginResponse is returned on successful authentication or refresh.
type LoginResponse struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService implements registration and the authentication check.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Logout(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error)
	ValidateToken(token string) (*Claims, error)
}

type authService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	jwtService JWTService
	redis      *redis.Client
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, jwtService JWTService, redisClient *redis.Client) AuthService {
	return &authService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
		redis:      redisClient,
	}
}

// Register creates a new account and grants it the default "user" role.
// Emails and usernames are stored lower-cased. The user row and the default
// membership commit together; a failed registration leaves no partial
// account behind.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	role, err := s.roleRepo.EnsureExists(ctx, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure default role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(req.Email),
		Username:     strings.ToLower(req.Username),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Active:       true,
		Roles:        []models.Role{*role},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

// Login performs the authentication check: unknown email and wrong password
// both yield ErrInvalidCredentials, a deactivated account yields
// ErrAccountInactive even with correct credentials.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Burn the bcrypt cost anyway so the unknown-email path takes
			// as long as a failed password check.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		return nil, apperrors.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID, user.Username)
}

// Logout invalidates the server-held refresh token for the session's user.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return err
	}

	return s.redis.Del(ctx, refreshKey(claims.UserID)).Err()
}

// RefreshToken rotates the token pair. The presented refresh token must
// match the server-held copy; the user is re-loaded so deactivation or
// deletion between requests invalidates the session.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	stored, err := s.redis.Get(ctx, refreshKey(claims.UserID)).Result()
	if err != nil || stored != refreshToken {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, apperrors.ErrAccountInactive
	}

	return s.issueTokens(ctx, user.ID, user.Username)
}

// ValidateToken parses and verifies an access token.
func (s *authService) ValidateToken(token string) (*Claims, error) {
	return s.jwtService.ValidateToken(token)
}

func (s *authService) issueTokens(ctx context.Context, userID, username string) (*LoginResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(userID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(userID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.redis.Set(ctx, refreshKey(userID), refreshToken, s.jwtService.GetRefreshExpiry()).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &LoginResponse{
		UserID:       userID,
		Username:     username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.GetAccessExpiry() / time.Second),
	}, nil
}

func refreshKey(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}

// dummyHash is a fixed bcrypt hash compared against on the unknown-email
// login path, keeping its timing in line with a real password check.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
