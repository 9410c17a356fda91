package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string        `yaml:"name"`
	Port    int           `yaml:"port"`
	Debug   bool          `yaml:"debug"`
	Timeout time.Duration `yaml:"timeout" env:"TEST_TIMEOUT"`
	Nested  struct {
		Value string `yaml:"value"`
	} `yaml:"nested"`
}

func TestLoadConfigFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: chargenet\nport: 9090\nnested:\n  value: deep\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	var cfg testConfig
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, "chargenet", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "deep", cfg.Nested.Value)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("DEBUG", "true")
	t.Setenv("NESTED_VALUE", "from-env")

	var cfg testConfig
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, 7070, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "from-env", cfg.Nested.Value)
}

func TestDurationParsing(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TEST_TIMEOUT", "90s")

	var cfg testConfig
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	assert.Error(t, LoadConfig(nil))
	assert.Error(t, LoadConfig(testConfig{}))
}

func TestInvalidEnvValue(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "not-a-number")

	var cfg testConfig
	assert.Error(t, LoadConfig(&cfg))
}
