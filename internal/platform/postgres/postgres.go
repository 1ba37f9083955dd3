// Package postgres opens the engine's database handles and applies the
// embedded schema. The request and audit stores use database/sql over
// lib/pq; the attribute store uses a pgx pool.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"parley/internal/platform/config"
)

// DB bundles both handles on the same database.
type DB struct {
	SQL  *sql.DB
	Pool *pgxpool.Pool
}

// Open connects both handles and pings them. Returns nil if the URL is empty.
func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	sqlDB, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping pgx pool: %w", err)
	}
	return &DB{SQL: sqlDB, Pool: pool}, nil
}

func (d *DB) Close() error {
	d.Pool.Close()
	return d.SQL.Close()
}

func (d *DB) Health(ctx context.Context) error {
	return d.SQL.PingContext(ctx)
}
