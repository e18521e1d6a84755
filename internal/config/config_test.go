package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadForTest(t *testing.T) *Config {
	t.Helper()
	oldArgs := os.Args
	os.Args = []string{oldArgs[0]}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadForTest(t)

	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 3306, cfg.Database.Port)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 15, cfg.Pagination.DefaultCount)
	require.Equal(t, 100, cfg.Pagination.MaxCount)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.True(t, cfg.Observability.MetricsEnabled)

	require.False(t, cfg.Validate().HasErrors())
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("GQLPAGER_DATABASE_PORT", "4000")
	t.Setenv("GQLPAGER_PAGINATION_DEFAULT_COUNT", "25")
	t.Setenv("GQLPAGER_LOGGING_LEVEL", "debug")

	cfg := loadForTest(t)

	require.Equal(t, 4000, cfg.Database.Port)
	require.Equal(t, 25, cfg.Pagination.DefaultCount)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestReadPasswordFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(path, []byte("s3cret\n"), 0o600))

	t.Setenv("GQLPAGER_DATABASE_PASSWORD_FILE", path)
	cfg := loadForTest(t)
	require.Equal(t, "s3cret", cfg.Database.Password)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := loadForTest(t)

	cfg.Database.Port = 0
	cfg.Database.TLSMode = "maybe"
	cfg.Pagination.DefaultCount = 0
	cfg.Logging.Level = "loud"

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	require.Len(t, result.Errors, 4)
	require.Contains(t, result.Error(), "database.tls_mode")
}

func TestValidateMaxCountBelowDefault(t *testing.T) {
	cfg := loadForTest(t)
	cfg.Pagination.DefaultCount = 50
	cfg.Pagination.MaxCount = 10

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	require.Contains(t, result.Error(), "pagination.max_count")
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     3306,
		User:     "svc",
		Password: "pw",
		Database: "app",
	}
	require.Equal(t, "svc:pw@tcp(db.internal:3306)/app?parseTime=true", d.DSN())

	d.TLSMode = "skip-verify"
	require.Equal(t, "svc:pw@tcp(db.internal:3306)/app?parseTime=true&tls=skip-verify", d.DSN())
}
