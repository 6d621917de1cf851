package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Balancea"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Storage struct {
		Backend string `envconfig:"STORAGE_BACKEND" default:"file"`
		DataDir string `envconfig:"DATA_DIR" default:"data"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"balancea"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Assistant struct {
		URL           string        `envconfig:"ASSISTANT_URL" default:"http://localhost:11434"`
		Model         string        `envconfig:"ASSISTANT_MODEL" default:"llama3.2:3b-instruct-fp16"`
		Timeout       time.Duration `envconfig:"ASSISTANT_TIMEOUT" default:"30s"`
		HealthTimeout time.Duration `envconfig:"ASSISTANT_HEALTH_TIMEOUT" default:"2s"`
		Temperature   float64       `envconfig:"ASSISTANT_TEMPERATURE" default:"0.7"`
		MaxTokens     int           `envconfig:"ASSISTANT_MAX_TOKENS" default:"300"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Pretty bool   `envconfig:"LOG_PRETTY" default:"true"`
	}

	Backup struct {
		MaxFiles int `envconfig:"BACKUP_MAX_FILES" default:"10"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// LedgerPath is the flat transaction file used by the file backend.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Storage.DataDir, "transactions.csv")
}

func (c *Config) BudgetsPath() string {
	return filepath.Join(c.Storage.DataDir, "budgets.json")
}

func (c *Config) GoalsPath() string {
	return filepath.Join(c.Storage.DataDir, "goals.json")
}

func (c *Config) CategoriesPath() string {
	return filepath.Join(c.Storage.DataDir, "categories.json")
}

func (c *Config) MappingsPath() string {
	return filepath.Join(c.Storage.DataDir, "mappings.json")
}

func (c *Config) BackupDir() string {
	return filepath.Join(c.Storage.DataDir, "backups")
}

// Validate reports every problem found instead of stopping at the first one.
func (c *Config) Validate() error {
	var problems []string

	if c.App.Port < 1 || c.App.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.App.Port))
	}

	switch c.Storage.Backend {
	case BackendFile:
		if strings.TrimSpace(c.Storage.DataDir) == "" {
			problems = append(problems, "data directory cannot be empty when using the file backend")
		}
	case BackendPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			problems = append(problems, "database host and name are required when using the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of [%s %s]",
			c.Storage.Backend, BackendFile, BackendPostgres))
	}

	if c.Assistant.URL != "" {
		u, err := url.Parse(c.Assistant.URL)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid assistant URL %q: %v", c.Assistant.URL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			problems = append(problems, fmt.Sprintf("invalid assistant URL scheme %q: must be http or https", u.Scheme))
		}
	}

	if c.Assistant.Timeout <= 0 {
		problems = append(problems, "assistant timeout must be positive")
	}

	if c.Assistant.MaxTokens <= 0 {
		problems = append(problems, "assistant max tokens must be positive")
	}

	if c.Backup.MaxFiles < 1 {
		problems = append(problems, "backup max files must be at least 1")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(problems, "; "))
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
