package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, doc map[string]any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"server": map[string]any{
			"port": 9090,
		},
		"database": map[string]any{
			"host":     "db.internal",
			"user":     "backing",
			"password": "secret",
		},
		"canton": map[string]any{
			"api_url":        "http://canton:7575",
			"operator_party": "operator::backing",
		},
		"backing": map[string]any{
			"unlock_period_days": 14,
		},
		"sweep": map[string]any{
			"interval": "30s",
		},
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "http://canton:7575", cfg.Canton.APIURL)
	require.Equal(t, 14, cfg.Backing.UnlockPeriodDays)
	require.Equal(t, 14*24*time.Hour, cfg.Backing.UnlockPeriod())
	require.Equal(t, 30*time.Second, cfg.Sweep.Interval)

	// Defaults fill everything the file omits.
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.True(t, cfg.Sweep.Enabled)
	require.Equal(t, 5*time.Minute, cfg.Reconciliation.Interval)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingDatabaseHost(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"database": map[string]any{
			"host": "",
		},
		"canton": map[string]any{
			"api_url": "http://canton:7575",
		},
	})

	_, err := Load(path)
	require.ErrorContains(t, err, "database.host is required")
}

func TestLoad_MissingCantonURL(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"database": map[string]any{
			"host": "db.internal",
		},
	})

	_, err := Load(path)
	require.ErrorContains(t, err, "canton.api_url is required")
}

func TestLoad_InvalidUnlockPeriod(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"database": map[string]any{
			"host": "db.internal",
		},
		"canton": map[string]any{
			"api_url": "http://canton:7575",
		},
		"backing": map[string]any{
			"unlock_period_days": 0,
		},
	})

	_, err := Load(path)
	require.ErrorContains(t, err, "unlock_period_days must be positive")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
