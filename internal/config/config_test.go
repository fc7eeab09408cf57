package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"MODELDOC_MODELS_DIR", "MODELDOC_NAMESPACE", "MODELDOC_MARKER_PREFIX",
	"DB_CONNECTION", "DB_HOST", "DB_PORT", "DB_DATABASE", "DB_USERNAME", "DB_PASSWORD", "DB_SCHEMA",
}

// clearEnv unsets the keys Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	t.Run("Should use defaults without a .env file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.ProjectDir)
		assert.Equal(t, DefaultModelsDir, cfg.ModelsDir)
		assert.Equal(t, DefaultNamespace, cfg.Namespace)
		assert.Equal(t, DefaultPattern, cfg.Pattern)
		assert.Equal(t, DefaultMarkerPrefix, cfg.MarkerPrefix)
		assert.Equal(t, DefaultEnumDirs, cfg.EnumDirs)
		assert.Equal(t, "pgsql", cfg.DB.Connection)
		assert.Equal(t, "127.0.0.1", cfg.DB.Host)
		assert.Equal(t, "public", cfg.DB.Schema)
		assert.Equal(t, filepath.Join(dir, "app/Models"), cfg.ModelsPath())
	})

	t.Run("Should read the project .env file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		env := "DB_CONNECTION=mysql\nDB_HOST=db\nDB_PORT=3307\nDB_DATABASE=shop\nDB_USERNAME=shop\nDB_PASSWORD=\"p@ss word\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, Database{
			Connection: "mysql",
			Host:       "db",
			Port:       "3307",
			Database:   "shop",
			Username:   "shop",
			Password:   "p@ss word",
			Schema:     "public",
		}, cfg.DB)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Should let the environment win over .env", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_DATABASE=from_file\n"), 0o600))
		t.Setenv("DB_DATABASE", "from_env")

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.DB.Database)
	})

	t.Run("Should fail on a malformed .env file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_DATABASE=\"unterminated\n"), 0o600))

		_, err := Load(dir)
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MarkerPrefix: DefaultMarkerPrefix,
			DB:           Database{Connection: "pgsql", Database: "app", Username: "app"},
		}
	}

	t.Run("Should accept a complete configuration", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Should require a database name", func(t *testing.T) {
		cfg := valid()
		cfg.DB.Database = ""
		assert.EqualError(t, cfg.Validate(), "DB_DATABASE environment variable is required")
	})

	t.Run("Should require a user for server databases", func(t *testing.T) {
		cfg := valid()
		cfg.DB.Username = ""
		assert.EqualError(t, cfg.Validate(), "DB_USERNAME environment variable is required")

		cfg.DB.Connection = "sqlite"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Should reject unknown connections", func(t *testing.T) {
		cfg := valid()
		cfg.DB.Connection = "sqlsrv"
		assert.EqualError(t, cfg.Validate(), `unsupported DB_CONNECTION "sqlsrv"`)
	})

	t.Run("Should reject an empty marker prefix", func(t *testing.T) {
		cfg := valid()
		cfg.MarkerPrefix = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_SQLitePath(t *testing.T) {
	cfg := &Config{ProjectDir: "/srv/app"}

	cfg.DB.Database = "database/database.sqlite"
	assert.Equal(t, filepath.Join("/srv/app", "database/database.sqlite"), cfg.SQLitePath())

	cfg.DB.Database = "/var/lib/app.sqlite"
	assert.Equal(t, "/var/lib/app.sqlite", cfg.SQLitePath())

	cfg.DB.Database = ":memory:"
	assert.Equal(t, ":memory:", cfg.SQLitePath())
}
