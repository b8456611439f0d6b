package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Host string
		Port int
	}
	Storage struct {
		Password string
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  host: 0.0.0.0
storage:
  password: $env:TEST_CALENDAR_DB_PASSWORD
`)
	t.Setenv("TEST_CALENDAR_DB_PASSWORD", "secret")

	v := viper.New()
	v.SetDefault("server.port", 3002)
	var cfg testConfig
	require.NoError(t, Load(v, path, &cfg))

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 3002, cfg.Server.Port)
	require.Equal(t, "secret", cfg.Storage.Password)
}

func TestLoadWithoutFile(t *testing.T) {
	v := viper.New()
	v.SetDefault("server.host", "127.0.0.1")
	var cfg testConfig
	require.NoError(t, Load(v, "", &cfg))
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg testConfig
	require.Error(t, Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"), &cfg))
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "TEST_CALENDAR_FROM_DOTENV=yes\nTEST_CALENDAR_PRESET=file\n")
	t.Setenv("TEST_CALENDAR_PRESET", "env")
	t.Setenv("TEST_CALENDAR_FROM_DOTENV", "")
	os.Unsetenv("TEST_CALENDAR_FROM_DOTENV")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	require.Equal(t, "yes", os.Getenv("TEST_CALENDAR_FROM_DOTENV"))
	require.Equal(t, "env", os.Getenv("TEST_CALENDAR_PRESET"))
}
