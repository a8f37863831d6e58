package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/infrastructure/database/memory"
	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/auth"
	"github.com/optommarket/backend/internal/pkg/logger"
)

type mapRevoker map[string]time.Duration

func (m mapRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m[id] = ttl
	return nil
}

func (m mapRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := m[id]
	return ok, nil
}

func newService(t *testing.T) (*user.Service, *memory.Storage, mapRevoker) {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Name: "OptomMarket"},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", TokenExpiry: time.Hour},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	store := memory.New()
	log := logger.Discard()
	revoker := mapRevoker{}
	svc := user.NewService(store, auth.NewPasswordManager(cfg), auth.NewJWTManager(cfg), revoker, activity.NewRecorder(store, log), log)
	return svc, store, revoker
}

func register(t *testing.T, svc *user.Service, username, email string) *user.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &user.RegisterRequest{Username: username, Email: email, Password: "secret123"}, "s1")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return resp
}

func TestRegisterCreatesCustomer(t *testing.T) {
	svc, store, _ := newService(t)

	resp := register(t, svc, " aziz ", "Aziz@Example.UZ")
	if resp.Token == "" || resp.ExpiresAt.IsZero() {
		t.Fatalf("expected a token")
	}
	if resp.User.Username != "aziz" || resp.User.Email != "aziz@example.uz" || resp.User.Role != user.RoleCustomer {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if resp.User.Password == "secret123" {
		t.Fatalf("password must be hashed")
	}

	acts, _ := store.ListActivities(context.Background(), time.Time{}, activity.TypeRegister)
	if len(acts) != 1 {
		t.Fatalf("expected a register activity, got %d", len(acts))
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "aziz", "aziz@example.uz")

	_, err := svc.Register(ctx, &user.RegisterRequest{Username: "aziz", Email: "other@example.uz", Password: "secret123"}, "")
	if !errors.Is(err, user.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	_, err = svc.Register(ctx, &user.RegisterRequest{Username: "other", Email: "AZIZ@example.uz", Password: "secret123"}, "")
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	_, err = svc.Register(ctx, &user.RegisterRequest{Username: "weak", Email: "weak@example.uz", Password: "short"}, "")
	if apperror.HTTPStatus(err) != 400 {
		t.Fatalf("weak password must be a validation error, got %v", err)
	}
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "aziz", "aziz@example.uz")

	for _, login := range []string{"aziz", "AZIZ@example.uz"} {
		resp, err := svc.Login(ctx, &user.LoginRequest{Login: login, Password: "secret123"}, "")
		if err != nil || resp.Token == "" {
			t.Fatalf("login %q: %v", login, err)
		}
	}

	if _, err := svc.Login(ctx, &user.LoginRequest{Login: "aziz", Password: "wrong123"}, ""); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, &user.LoginRequest{Login: "nobody", Password: "secret123"}, ""); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Fatalf("unknown users must look like bad passwords, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, revoker := newService(t)
	ctx := context.Background()
	resp := register(t, svc, "aziz", "aziz@example.uz")

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"}}
	claims, err := auth.NewJWTManager(cfg).ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if svc.IsRevoked(ctx, claims.ID) {
		t.Fatalf("fresh token must not be revoked")
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !svc.IsRevoked(ctx, claims.ID) {
		t.Fatalf("token must be revoked after logout")
	}
	if ttl := revoker[claims.ID]; ttl <= 0 || ttl > time.Hour {
		t.Fatalf("revocation must last until expiry, got %s", ttl)
	}
}

func TestUpdateRole(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	resp := register(t, svc, "aziz", "aziz@example.uz")

	u, err := svc.UpdateRole(ctx, resp.User.ID, user.RoleAdmin)
	if err != nil || !u.IsAdmin() {
		t.Fatalf("expected admin, got %+v, %v", u, err)
	}
	if _, err := svc.UpdateRole(ctx, resp.User.ID, "root"); apperror.HTTPStatus(err) != 400 {
		t.Fatalf("unknown role must be rejected, got %v", err)
	}
	if _, err := svc.UpdateRole(ctx, 999, user.RoleSeller); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
