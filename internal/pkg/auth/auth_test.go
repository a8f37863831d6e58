package auth

import (
	"testing"
	"time"

	"github.com/optommarket/backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "OptomMarket"},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", TokenExpiry: time.Hour},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	token, issued, err := m.GenerateToken(42, "ali", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "admin" || claims.ID != issued.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, _, err := NewJWTManager(testConfig()).GenerateToken(1, "u", "customer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.TokenExpiry = -time.Minute
	m := NewJWTManager(cfg)
	token, _, err := m.GenerateToken(1, "u", "customer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	if got := ExtractTokenFromHeader("Bearer abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractTokenFromHeader("Basic abc"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestPasswordHashing(t *testing.T) {
	p := NewPasswordManager(testConfig())
	if _, err := p.HashPassword("short"); err == nil {
		t.Fatalf("expected weak password to be rejected")
	}
	hash, err := p.HashPassword("optom2024")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := p.VerifyPassword("optom2024", hash); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := p.VerifyPassword("wrong2024", hash); err == nil {
		t.Fatalf("expected mismatch")
	}
}
