package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	DefaultModelsDir    = "app/Models"
	DefaultNamespace    = `App\Models`
	DefaultPattern      = "**/*.php"
	DefaultMarkerPrefix = "database column "
)

var DefaultEnumDirs = []string{"app/Enums"}

// Config holds everything a generate run needs. Database settings use the
// same keys as the Laravel application's .env file.
type Config struct {
	ProjectDir string
	ModelsDir  string // relative to ProjectDir
	EnumDirs   []string
	Namespace  string
	Pattern    string

	MarkerPrefix string
	DryRun       bool

	DB Database
}

type Database struct {
	Connection string // pgsql, mysql or sqlite
	Host       string
	Port       string
	Database   string
	Username   string
	Password   string
	Schema     string // pgsql only
}

// Load reads <projectDir>/.env (when present) without overriding variables
// already set in the environment, then builds the configuration.
func Load(projectDir string) (*Config, error) {
	envFile := filepath.Join(projectDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		ProjectDir:   projectDir,
		ModelsDir:    getEnv("MODELDOC_MODELS_DIR", DefaultModelsDir),
		EnumDirs:     DefaultEnumDirs,
		Namespace:    getEnv("MODELDOC_NAMESPACE", DefaultNamespace),
		Pattern:      DefaultPattern,
		MarkerPrefix: getEnv("MODELDOC_MARKER_PREFIX", DefaultMarkerPrefix),
		DB: Database{
			Connection: getEnv("DB_CONNECTION", "pgsql"),
			Host:       getEnv("DB_HOST", "127.0.0.1"),
			Port:       os.Getenv("DB_PORT"),
			Database:   os.Getenv("DB_DATABASE"),
			Username:   os.Getenv("DB_USERNAME"),
			Password:   os.Getenv("DB_PASSWORD"),
			Schema:     getEnv("DB_SCHEMA", "public"),
		},
	}
	return cfg, nil
}

// Validate checks the settings the selected connection cannot do without.
func (c *Config) Validate() error {
	if c.MarkerPrefix == "" {
		return fmt.Errorf("MODELDOC_MARKER_PREFIX must not be empty")
	}
	switch c.DB.Connection {
	case "pgsql", "mysql":
		if c.DB.Database == "" {
			return fmt.Errorf("DB_DATABASE environment variable is required")
		}
		if c.DB.Username == "" {
			return fmt.Errorf("DB_USERNAME environment variable is required")
		}
	case "sqlite":
		if c.DB.Database == "" {
			return fmt.Errorf("DB_DATABASE environment variable is required")
		}
	default:
		return fmt.Errorf("unsupported DB_CONNECTION %q", c.DB.Connection)
	}
	return nil
}

// ModelsPath returns the absolute-or-relative path of the models directory.
func (c *Config) ModelsPath() string {
	return filepath.Join(c.ProjectDir, c.ModelsDir)
}

// SQLitePath resolves DB_DATABASE against the project directory the way
// Laravel resolves relative sqlite paths.
func (c *Config) SQLitePath() string {
	if c.DB.Database == ":memory:" || filepath.IsAbs(c.DB.Database) {
		return c.DB.Database
	}
	return filepath.Join(c.ProjectDir, c.DB.Database)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
