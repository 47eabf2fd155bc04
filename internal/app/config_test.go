package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cristalhq/aconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := loadConfig(aconfig.Config{
		EnvPrefix: envPrefix,
		SkipFlags: true,
		SkipFiles: true,
	})
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadTestConfig(t)

	assert.Empty(t, cfg.SeedFile)
	assert.False(t, cfg.NoColor)

	seed, err := cfg.Seed()
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", seed.Shopper.FullName())
	assert.Len(t, seed.Steps, 3)
}

func TestLoadConfig_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"shopper": {"first_name": "Ada", "last_name": "Lovelace"},
		"products": [{"id": "lamp", "kind": "physical", "price": 10, "stock": 1}]
	}`), 0o600))

	t.Setenv("STOREFRONT_SEED_FILE", path)
	t.Setenv("STOREFRONT_NO_COLOR", "true")
	t.Setenv("STOREFRONT_SHOPPER_LAST_NAME", "Byron")

	cfg := loadTestConfig(t)
	assert.Equal(t, path, cfg.SeedFile)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "Byron", cfg.Shopper.LastName)

	seed, err := cfg.Seed()
	require.NoError(t, err)
	assert.Equal(t, "Ada Byron", seed.Shopper.FullName())
	require.Len(t, seed.Products, 1)
	assert.Empty(t, seed.Steps)
}

func TestConfig_SeedMissingFile(t *testing.T) {
	cfg := &Config{SeedFile: filepath.Join(t.TempDir(), "missing.json")}
	_, err := cfg.Seed()
	require.ErrorIs(t, err, os.ErrNotExist)
}
