package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ErlanBelekov/invoice-console/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_HOST", "http://localhost:8000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.APITimeout() != 10*time.Second {
		t.Errorf("APITimeout = %v, want 10s", cfg.APITimeout())
	}
	if cfg.SessionStore != "memory" {
		t.Errorf("SessionStore = %q, want memory", cfg.SessionStore)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v, want info", cfg.SlogLevel())
	}
}

func TestLoad_MissingAPIHost_Fails(t *testing.T) {
	t.Setenv("API_HOST", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when API_HOST is empty")
	}
}

func TestLoad_PostgresStoreRequiresDatabaseURL(t *testing.T) {
	t.Setenv("API_HOST", "http://localhost:8000")
	t.Setenv("SESSION_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing for postgres store")
	}
}

func TestLoad_ProductionRequiresResend(t *testing.T) {
	t.Setenv("API_HOST", "http://localhost:8000")
	t.Setenv("ENV", "production")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when RESEND_API_KEY is missing in production")
	}
}

func TestLoad_RefreshShorterThanAccess_Fails(t *testing.T) {
	t.Setenv("API_HOST", "http://localhost:8000")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "600")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "60")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when refresh expiry is shorter than access expiry")
	}
}

func TestLoadMockAPI_ShortSecret_Fails(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	if _, err := config.LoadMockAPI(); err == nil {
		t.Fatal("expected error for JWT_SECRET under 32 chars")
	}
}

func TestLoadMockAPI_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "mockapi-test-secret-at-least-32-chars")

	cfg, err := config.LoadMockAPI()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.RotateRefreshTokens {
		t.Error("RotateRefreshTokens should default to true")
	}
	if cfg.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", cfg.RefreshTTL())
	}
}
