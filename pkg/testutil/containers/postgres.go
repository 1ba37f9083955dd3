//go:build integration

package containers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"parley/internal/platform/config"
	"parley/internal/platform/postgres"
)

// PostgresContainer is a migrated database with both handles open.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *postgres.DB
}

func startPostgres() (*PostgresContainer, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("parley"),
		tcpostgres.WithUsername("parley"),
		tcpostgres.WithPassword("parley"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}
	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}
	db, err := postgres.Open(ctx, config.Database{URL: url, MaxConns: 10})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if _, err := postgres.Migrate(ctx, db.SQL); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresContainer{Container: container, URL: url, DB: db}, nil
}

// Truncate empties every table the stores write. Call it from SetupTest.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.DB.SQL.ExecContext(ctx, `TRUNCATE attributes, requests, audit_events`)
	return err
}
