package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.ScrapeWorkers)
	assert.Equal(t, "0 * * * *", cfg.RecomputeSchedule)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("PORT", "9090")
	t.Setenv("SCRAPE_WORKERS", "8")
	t.Setenv("VERBOSE", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 8, cfg.ScrapeWorkers)
	assert.True(t, cfg.Verbose)
}

func TestFromEnv_InvalidInt(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate_RequiresDatabaseURL(t *testing.T) {
	cfg := Defaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestValidate_JWTNeedsExpiration(t *testing.T) {
	cfg := Defaults()
	cfg.DatabaseURL = "postgres://localhost/jobs"
	cfg.JWTSecret = "secret"
	cfg.JWTExpirationHours = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_expiration_hours")
}

func TestLoadFile_FillsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"database_url":"postgres://file/jobs","port":9999,"verbose":true}`), 0o644))

	cfg := Defaults()
	cfg.Port = 8080
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "postgres://file/jobs", cfg.DatabaseURL)
	assert.Equal(t, 9999, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadFile_EnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"database_url":"postgres://file/jobs"}`), 0o644))

	cfg := Defaults()
	cfg.DatabaseURL = "postgres://env/jobs"
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "postgres://env/jobs", cfg.DatabaseURL)
}

func TestLoadFile_MissingFile(t *testing.T) {
	cfg := Defaults()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "absent.json")))
	assert.Error(t, cfg.LoadFile(""))
}

func TestLoadFile_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))

	cfg := Defaults()
	assert.Error(t, cfg.LoadFile(path))
}
