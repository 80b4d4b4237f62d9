package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvProduction marks deployments where config shortcuts are not allowed.
	EnvProduction = "production"

	defaultPort     = "3000"
	defaultTokenTTL = 7 * 24 * time.Hour
)

// Config holds all runtime configuration. It is read once at process start
// and passed into constructors; packages never look up the environment
// themselves.
type Config struct {
	Env             string        // APP_ENV: development (default) or production
	Port            string        // HTTP listen port
	DatabaseURL     string        // Postgres DSN; empty defers failure to first use
	JWTSecret       string        // token signing secret; required in production
	TokenTTL        time.Duration // token lifetime, default 7 days
	FrontendOrigins []string      // allowed CORS origins
	BcryptCost      int           // 0 means bcrypt default
}

// Load reads the environment (after an optional .env file) into a Config.
// It returns an error only for values that are present but unparseable;
// absence is handled by defaults so startup policy stays in one place.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         strings.TrimSpace(os.Getenv("APP_ENV")),
		Port:        strings.TrimSpace(os.Getenv("PORT")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:    defaultTokenTTL,
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if raw := strings.TrimSpace(os.Getenv("JWT_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid JWT_TTL %q: %w", raw, err)
		}
		if ttl <= 0 {
			return Config{}, fmt.Errorf("config: JWT_TTL must be positive, got %q", raw)
		}
		cfg.TokenTTL = ttl
	}

	if raw := strings.TrimSpace(os.Getenv("BCRYPT_COST")); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid BCRYPT_COST %q: %w", raw, err)
		}
		cfg.BcryptCost = cost
	}

	cfg.FrontendOrigins = splitOrigins(os.Getenv("FRONTEND_URL"))

	return cfg, nil
}

// IsProduction reports whether the process runs with production policy.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "/"))
		if part == "" {
			continue
		}
		origins = append(origins, part)
	}
	return origins
}
