package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Balancea", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "http://localhost:11434", cfg.Assistant.URL)
	assert.Equal(t, 30*time.Second, cfg.Assistant.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Assistant.HealthTimeout)
	assert.Equal(t, 10, cfg.Backup.MaxFiles)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/balancea")
	t.Setenv("ASSISTANT_MODEL", "llama3.2:latest")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "llama3.2:latest", cfg.Assistant.Model)
	assert.Equal(t, "/tmp/balancea/transactions.csv", cfg.LedgerPath())
	assert.Equal(t, "/tmp/balancea/backups", cfg.BackupDir())
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sheets")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")
}

func TestConfig_Validate(t *testing.T) {
	type testCase struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}

	tests := []testCase{
		{
			name:   "Valid",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "PortOutOfRange",
			mutate:  func(c *config.Config) { c.App.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name:    "BadAssistantScheme",
			mutate:  func(c *config.Config) { c.Assistant.URL = "ftp://localhost" },
			wantErr: "scheme",
		},
		{
			name: "MultipleProblems",
			mutate: func(c *config.Config) {
				c.Assistant.Timeout = 0
				c.Backup.MaxFiles = 0
			},
			wantErr: "assistant timeout must be positive; backup max files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load()
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ConnectionString(t *testing.T) {
	var cfg config.Config
	cfg.DB.User = "u"
	cfg.DB.Password = "p"
	cfg.DB.Host = "db"
	cfg.DB.Port = 5432
	cfg.DB.Name = "balancea"

	assert.Equal(t, "postgres://u:p@db:5432/balancea?sslmode=disable", cfg.ConnectionString())
}
