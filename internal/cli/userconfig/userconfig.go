package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "foodctl"
	configFileName = "config.json"
)

// MenuFilters are the last filters used by `foodctl menu`
type MenuFilters struct {
	Categories []string `json:"categories,omitempty"`
	Vegetarian bool     `json:"vegetarian"`
	Sorting    string   `json:"sorting,omitempty"`
}

// UserConfig represents the user's local configuration stored in ~/.config/foodctl/config.json
type UserConfig struct {
	BaseURL string      `json:"base_url,omitempty"`
	Menu    MenuFilters `json:"menu"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetBaseURL updates the API base URL override and saves the config.
// An empty value removes the override.
func SetBaseURL(baseURL string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.BaseURL = baseURL
	return Save(cfg)
}

// SetMenuFilters remembers the menu filters and saves the config
func SetMenuFilters(filters MenuFilters) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.Menu = filters
	return Save(cfg)
}
