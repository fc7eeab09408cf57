package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"modeldoc/internal/config"
	"modeldoc/internal/database"
	"modeldoc/internal/models"
)

func TestPostgresSchemaRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("app"),
		postgres.WithUsername("app"),
		postgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	conn, err := database.Connect(ctx, config.Database{
		Connection: "pgsql",
		Host:       host,
		Port:       port.Port(),
		Database:   "app",
		Username:   "app",
		Password:   "secret",
		Schema:     "public",
	}, "")
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	_, err = conn.Pool.Exec(ctx, `
		CREATE TABLE users (
			id bigserial PRIMARY KEY,
			email varchar(255) NOT NULL,
			settings jsonb,
			deleted_at timestamp(0)
		);
		COMMENT ON COLUMN users.email IS 'Login email';
		ALTER TABLE users DROP COLUMN settings;
		ALTER TABLE users ADD COLUMN settings jsonb;
	`)
	require.NoError(t, err)

	repo, err := NewSchemaRepository(conn)
	require.NoError(t, err)

	t.Run("Should read columns with types and comments", func(t *testing.T) {
		columns, err := repo.ListColumns(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, []models.Column{
			{Name: "id", DataType: "int8"},
			{Name: "email", DataType: "varchar", Comment: strPtr("Login email")},
			{Name: "deleted_at", DataType: "timestamp", Nullable: true},
			{Name: "settings", DataType: "jsonb", Nullable: true},
		}, columns)
	})

	t.Run("Should report a missing table", func(t *testing.T) {
		_, err := repo.ListColumns(ctx, "ghosts")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}
