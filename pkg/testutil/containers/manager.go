//go:build integration

// Package containers starts the backing services integration tests run
// against. Each container starts once per test binary and is shared by every
// suite; Ryuk removes them when the binary exits.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers, starting each on first use.
type Manager struct {
	postgresOnce sync.Once
	postgres     *PostgresContainer
	postgresErr  error

	redisOnce sync.Once
	redis     *RedisContainer
	redisErr  error

	redpandaOnce sync.Once
	redpanda     *RedpandaContainer
	redpandaErr  error
}

var (
	managerOnce sync.Once
	manager     *Manager
)

func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetPostgres returns the shared, migrated Postgres container.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.postgresOnce.Do(func() {
		m.postgres, m.postgresErr = startPostgres()
	})
	if m.postgresErr != nil {
		t.Fatalf("postgres container: %v", m.postgresErr)
	}
	return m.postgres
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.redisOnce.Do(func() {
		m.redis, m.redisErr = startRedis()
	})
	if m.redisErr != nil {
		t.Fatalf("redis container: %v", m.redisErr)
	}
	return m.redis
}

func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.redpandaOnce.Do(func() {
		m.redpanda, m.redpandaErr = startRedpanda()
	})
	if m.redpandaErr != nil {
		t.Fatalf("redpanda container: %v", m.redpandaErr)
	}
	return m.redpanda
}
