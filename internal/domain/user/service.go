// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/auth"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
	ErrUsernameTaken      = apperror.Conflict("USERNAME_TAKEN", "username is already taken")
	ErrEmailTaken         = apperror.Conflict("EMAIL_TAKEN", "email is already registered")
)

// TokenRevoker remembers logged-out token ids until they expire
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Service handles user business logic
type Service struct {
	repo       Repository
	passwords  *auth.PasswordManager
	tokens     *auth.JWTManager
	revoker    TokenRevoker
	activities *activity.Recorder
	log        *logrus.Logger
}

// NewService creates a new user service. revoker may be nil.
func NewService(repo Repository, passwords *auth.PasswordManager, tokens *auth.JWTManager, revoker TokenRevoker, activities *activity.Recorder, log *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		passwords:  passwords,
		tokens:     tokens,
		revoker:    revoker,
		activities: activities,
		log:        log,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=100"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
}

// LoginRequest accepts a username or an email in Login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register creates a customer account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest, sessionID string) (*AuthResponse, error) {
	u := &User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     RoleCustomer,
	}
	u.Normalize()

	if _, err := s.repo.GetUserByUsername(ctx, u.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.repo.GetUserByEmail(ctx, u.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	u.Password = hashed

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	s.activities.Record(ctx, activity.Entry{UserID: &u.ID, SessionID: sessionID, Type: activity.TypeRegister})

	return s.issue(u)
}

// Login authenticates by username or email
func (s *Service) Login(ctx context.Context, req *LoginRequest, sessionID string) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Login)

	var (
		u   *User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.repo.GetUserByEmail(ctx, strings.ToLower(login))
	} else {
		u, err = s.repo.GetUserByUsername(ctx, login)
	}
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.passwords.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.activities.Record(ctx, activity.Entry{UserID: &u.ID, SessionID: sessionID, Type: activity.TypeLogin})
	return s.issue(u)
}

// Logout revokes the token until its natural expiry
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, ttl)
}

// IsRevoked reports whether a token id was logged out
func (s *Service) IsRevoked(ctx context.Context, tokenID string) bool {
	if s.revoker == nil || tokenID == "" {
		return false
	}
	revoked, err := s.revoker.IsRevoked(ctx, tokenID)
	if err != nil {
		s.log.WithError(err).Warn("token revocation check failed")
		return false
	}
	return revoked
}

// GetProfile returns the user by id
func (s *Service) GetProfile(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns every account, for the admin panel
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateRoleRequest is the body of PUT /admin/users/:id/role
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// UpdateRole changes a user's role
func (s *Service) UpdateRole(ctx context.Context, id uint, role Role) (*User, error) {
	if !role.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown role %q", role))
	}
	u, err := s.repo.UpdateUserRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user role changed")
	return u, nil
}

func (s *Service) issue(u *User) (*AuthResponse, error) {
	token, claims, err := s.tokens.GenerateToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: u, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}
