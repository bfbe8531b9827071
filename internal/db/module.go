package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/j0lvera/chimein/internal/config"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	Client *Client
}

// Client is the connection pool shared by every handler invocation.
// *sql.DB is safe for concurrent use.
type Client struct {
	DB     *sql.DB
	Driver string

	pool *pgxpool.Pool
}

// Open connects to the store named by url. postgres:// and postgresql://
// URLs and libpq key=value DSNs ("host=db dbname=chimein") go through pgx;
// anything else is treated as a SQLite file path, optionally prefixed with
// "sqlite:".
func Open(ctx context.Context, url string) (*Client, error) {
	if isPostgres(url) {
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("unable to create connection pool: %w", err)
		}
		return &Client{
			DB:     stdlib.OpenDBFromPool(pool),
			Driver: DriverPostgres,
			pool:   pool,
		}, nil
	}

	db, err := sql.Open(DriverSQLite, sqliteDSN(url))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &Client{DB: db, Driver: DriverSQLite}, nil
}

// Ping verifies the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping db: %w", err)
	}
	return nil
}

// Close releases the pool.
func (c *Client) Close() error {
	err := c.DB.Close()
	if c.pool != nil {
		c.pool.Close()
	}
	return err
}

// libpq connection keys accepted in key=value DSNs.
var postgresKeys = map[string]bool{
	"host":             true,
	"hostaddr":         true,
	"port":             true,
	"dbname":           true,
	"user":             true,
	"password":         true,
	"sslmode":          true,
	"connect_timeout":  true,
	"application_name": true,
	"search_path":      true,
}

func isPostgres(url string) bool {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return true
	}

	// a key=value DSN is all pairs, at least one of them a libpq key
	fields := strings.Fields(url)
	if len(fields) == 0 {
		return false
	}
	known := false
	for _, f := range fields {
		key, _, ok := strings.Cut(f, "=")
		if !ok {
			return false
		}
		if postgresKeys[key] {
			known = true
		}
	}
	return known
}

func sqliteDSN(url string) string {
	dsn := strings.TrimPrefix(url, "sqlite://")
	dsn = strings.TrimPrefix(dsn, "sqlite:")

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000"
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	client, err := Open(context.Background(), p.Config.DatabaseURL)
	if err != nil {
		return Result{}, err
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx); err != nil {
					return err
				}
				p.Logger.Info().Str("driver", client.Driver).Msg("database connection established")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				p.Logger.Info().Msg("closing database connection")
				return client.Close()
			},
		},
	)

	return Result{Client: client}, nil
}

func Module() fx.Option {
	return fx.Module(
		"db",
		fx.Provide(New),
	)
}
