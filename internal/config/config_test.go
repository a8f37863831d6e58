package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Driver: StorageDriverMemory},
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Business: BusinessConfig{MinimumOrderAmount: decimal.NewFromInt(500000)},
	}
}

func TestValidateAcceptsMemoryDriver(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.Secret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for short JWT secret")
	}
}

func TestValidateRequiresDatabaseForPostgres(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = StorageDriverPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing DB_HOST")
	}
	cfg.Database.Host, cfg.Database.Name, cfg.Database.User = "localhost", "db", "user"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestValidateRejectsNegativeMinimum(t *testing.T) {
	cfg := validConfig()
	cfg.Business.MinimumOrderAmount = decimal.NewFromInt(-1)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative minimum order amount")
	}
}

func TestBusinessTimezone(t *testing.T) {
	cfg := validConfig()
	if cfg.Location() != time.UTC {
		t.Fatalf("an unset timezone falls back to UTC, got %s", cfg.Location())
	}

	cfg.Business.Timezone = "Asia/Tashkent"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, offset := time.Date(2025, 3, 1, 0, 0, 0, 0, cfg.Location()).Zone(); offset != 5*3600 {
		t.Fatalf("expected UTC+5, got offset %d", offset)
	}

	cfg.Business.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestGetEnvAsDecimal(t *testing.T) {
	t.Setenv("TEST_MIN_ORDER", " 250000.50 ")
	got := getEnvAsDecimal("TEST_MIN_ORDER", decimal.Zero)
	if !got.Equal(decimal.RequireFromString("250000.50")) {
		t.Fatalf("got %s", got)
	}
	t.Setenv("TEST_MIN_ORDER", "not-a-number")
	if got := getEnvAsDecimal("TEST_MIN_ORDER", decimal.NewFromInt(7)); !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected fallback, got %s", got)
	}
}
