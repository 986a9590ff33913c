package mockapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultCORSOrigins are the origins the browser client is served from in
// development
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5500"}

// Config holds all configuration for the mock server
type Config struct {
	// HTTP listen address
	Addr string `env:"FOODMOCK_ADDR, default=:8080"`

	// Database Configuration
	DatabaseURL string `env:"FOODMOCK_DATABASE_URL, default=./foodmock.sqlite"`

	// Authentication
	JWTSecret string        `env:"FOODMOCK_JWT_SECRET"`
	TokenTTL  time.Duration `env:"FOODMOCK_TOKEN_TTL, default=1h"`

	// Browser origins allowed by CORS
	CORSOrigins []string `env:"FOODMOCK_CORS_ORIGINS, default=http://localhost:5173,http://127.0.0.1:5500"`

	// Cron schedule of the revoked-token sweep
	SweepSchedule string `env:"FOODMOCK_SWEEP_SCHEDULE, default=@every 1m"`

	// Logging Configuration
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=json"`
}

// LoadConfig loads configuration from .env files and the environment
func LoadConfig(ctx context.Context) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return LoadConfigFrom(ctx, envconfig.OsLookuper())
}

// LoadConfigFrom loads configuration using lookuper
func LoadConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("FOODMOCK_TOKEN_TTL must be positive")
	}

	return &cfg, nil
}

// generateSecret returns 64 hex characters (32 bytes of randomness)
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
