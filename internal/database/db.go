package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"

	"modeldoc/internal/config"
	"modeldoc/internal/logger"
)

// Connection is an open connection to the application's database. Exactly
// one of Pool and DB is set, depending on Driver.
type Connection struct {
	Driver string
	Schema string
	Pool   *pgxpool.Pool
	DB     *sql.DB
}

// Connect opens the connection described by cfg and pings it.
func Connect(ctx context.Context, cfg config.Database, sqlitePath string) (*Connection, error) {
	switch cfg.Connection {
	case "pgsql":
		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Connection{Driver: cfg.Connection, Schema: cfg.Schema, Pool: pool}, nil
	case "mysql":
		db, err := openSQL(ctx, "mysql", mysqlDSN(cfg))
		if err != nil {
			return nil, err
		}
		logger.GetDefault().Debug("Connected to database", "driver", "mysql", "host", cfg.Host, "database", cfg.Database)
		return &Connection{Driver: cfg.Connection, DB: db}, nil
	case "sqlite":
		db, err := openSQL(ctx, "sqlite3", "file:"+sqlitePath+"?mode=ro")
		if err != nil {
			return nil, err
		}
		logger.GetDefault().Debug("Connected to database", "driver", "sqlite", "path", sqlitePath)
		return &Connection{Driver: cfg.Connection, DB: db}, nil
	default:
		return nil, fmt.Errorf("unsupported database connection %q", cfg.Connection)
	}
}

// PostgresDSN builds a postgres:// URL, escaping credentials and the
// database name.
func PostgresDSN(cfg config.Database) string {
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	userInfo := url.UserPassword(cfg.Username, cfg.Password)
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=disable",
		userInfo.String(),
		cfg.Host,
		port,
		url.PathEscape(cfg.Database),
	)
}

func connectPostgres(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	logger.GetDefault().Debug("Connecting to database", "dsn", fmt.Sprintf("postgres://%s:***@%s:%s/%s", cfg.Username, cfg.Host, cfg.Port, cfg.Database))

	poolConfig, err := pgxpool.ParseConfig(PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}
	// One model at a time, one query at a time.
	poolConfig.MaxConns = 1
	poolConfig.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func mysqlDSN(cfg config.Database) string {
	port := cfg.Port
	if port == "" {
		port = "3306"
	}
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + port
	mc.DBName = cfg.Database
	return mc.FormatDSN()
}

func openSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open connection: %w", driver, err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", driver, err)
	}
	return db, nil
}

func (c *Connection) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.GetDefault().Debug("Database connection closed")
}
