package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.BaseURL)
	assert.Empty(t, cfg.Menu.Categories)
}

func TestSetters_RoundTripThroughFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, SetBaseURL("http://localhost:8080"))
	require.NoError(t, SetMenuFilters(MenuFilters{
		Categories: []string{"Soup", "Wok"},
		Vegetarian: true,
		Sorting:    "PriceAsc",
	}))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL, "setting filters keeps the base URL")
	assert.Equal(t, []string{"Soup", "Wok"}, cfg.Menu.Categories)
	assert.True(t, cfg.Menu.Vegetarian)
	assert.Equal(t, "PriceAsc", cfg.Menu.Sorting)

	_, err = os.Stat(filepath.Join(home, ".config", "foodctl", "config.json"))
	assert.NoError(t, err)
}

func TestLoad_Corrupt(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "foodctl")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse user config file")
}
