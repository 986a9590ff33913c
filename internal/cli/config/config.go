// Package config loads the CLI settings from the environment and decides
// which API origin to talk to.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/cli/userconfig"
)

// Config holds the environment-provided CLI settings
type Config struct {
	BaseURL   string `env:"FOODCTL_BASE_URL"`
	LogLevel  string `env:"FOODCTL_LOG_LEVEL, default=warn"`
	LogFormat string `env:"FOODCTL_LOG_FORMAT, default=console"`
	Email     string `env:"FOODCTL_EMAIL"`
	Password  string `env:"FOODCTL_PASSWORD"`
	NoKeyring bool   `env:"FOODCTL_NO_KEYRING"`

	// Token seeds the in-memory session when the keychain is not used
	Token string `env:"FOODCTL_TOKEN"`
}

// Load reads .env files (if present) and then the process environment
func Load(ctx context.Context) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads the settings using lookuper
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// ResolveBaseURL determines which API origin to use based on the following priority:
// 1. The --base-url flag
// 2. FOODCTL_BASE_URL
// 3. The override saved in the user config
// 4. The public service
func ResolveBaseURL(flag string, cfg *Config, user *userconfig.UserConfig) (string, error) {
	candidates := []string{flag}
	if cfg != nil {
		candidates = append(candidates, cfg.BaseURL)
	}
	if user != nil {
		candidates = append(candidates, user.BaseURL)
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		return ValidateBaseURL(candidate)
	}

	return client.DefaultBaseURL, nil
}

// ValidateBaseURL checks that raw is an absolute http(s) origin and strips any
// trailing slash.
func ValidateBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
