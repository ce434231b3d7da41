package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/lumina/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the connection pool behind the Postgres kv store
type DB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

// SchemaState describes the kv_entries table once bootstrap has run
type SchemaState struct {
	Version int64
	Entries int64
}

// Open connects to Postgres, applies the kv store migrations and reports how
// many persisted entries survived from a previous run.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, SchemaState, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, SchemaState{}, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, SchemaState{}, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, SchemaState{}, fmt.Errorf("unable to ping database: %w", err)
	}

	db := NewFromPool(pool, logger)
	state, err := db.Bootstrap(ctx)
	if err != nil {
		db.Close()
		return nil, SchemaState{}, err
	}
	return db, state, nil
}

// PoolConfig maps the configured pool limits onto a pgxpool config
func PoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	return poolConfig, nil
}

// NewFromPool wraps an existing pool, e.g. one opened against a test container
func NewFromPool(pool *pgxpool.Pool, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DB{Pool: pool, logger: logger}
}

// Bootstrap migrates the schema and counts the entries already stored
func (db *DB) Bootstrap(ctx context.Context) (SchemaState, error) {
	version, err := db.Migrate(ctx)
	if err != nil {
		return SchemaState{}, err
	}

	var entries int64
	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM kv_entries`).Scan(&entries); err != nil {
		return SchemaState{}, fmt.Errorf("failed to inspect kv_entries: %w", err)
	}

	state := SchemaState{Version: version, Entries: entries}
	db.logger.Info("kv store ready",
		slog.Int64("schema_version", state.Version),
		slog.Int64("entries", state.Entries),
	)
	return state, nil
}

func (db *DB) Close() {
	db.logger.Info("closing kv store connection pool")
	db.Pool.Close()
}

// HealthCheck pings the pool with a short deadline
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("kv store health check failed: %w", err)
	}
	return nil
}
