package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "PORT", "DATABASE_URL", "JWT_SECRET", "JWT_TTL", "BCRYPT_COST", "FRONTEND_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "development" {
		t.Fatalf("Env = %q", cfg.Env)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.IsProduction() {
		t.Fatal("development config reports production")
	}
}

func TestLoadParsesTokenTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_TTL", "12h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
}

func TestLoadRejectsBadTokenTTL(t *testing.T) {
	clearEnv(t)

	for _, raw := range []string{"sete-dias", "-1h", "0s"} {
		t.Setenv("JWT_TTL", raw)
		if _, err := Load(); err == nil {
			t.Errorf("JWT_TTL=%q accepted", raw)
		}
	}
}

func TestLoadRejectsBadBcryptCost(t *testing.T) {
	clearEnv(t)
	t.Setenv("BCRYPT_COST", "alto")

	if _, err := Load(); err == nil {
		t.Fatal("BCRYPT_COST=alto accepted")
	}
}

func TestIsProductionCaseInsensitive(t *testing.T) {
	for _, env := range []string{"production", "PRODUCTION", "Production"} {
		if !(Config{Env: env}).IsProduction() {
			t.Errorf("Env=%q not recognized as production", env)
		}
	}
	for _, env := range []string{"", "development", "staging"} {
		if (Config{Env: env}).IsProduction() {
			t.Errorf("Env=%q recognized as production", env)
		}
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins("https://app.recylink.org/, http://localhost:5173 ,,https://staging.recylink.org")
	want := []string{"https://app.recylink.org", "http://localhost:5173", "https://staging.recylink.org"}
	if len(got) != len(want) {
		t.Fatalf("origins = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("origins[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
