package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PARLEY_IDENTITY__ADDRESS", "did:e:alice")
	t.Setenv("PARLEY_IDENTITY__PEERS", "did:e:bob, did:e:carol")
	t.Setenv("PARLEY_REDIS__LOCK_TTL", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 3*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "did:e:alice", cfg.Identity.Address)
	assert.Equal(t, []string{"did:e:bob", "did:e:carol"}, cfg.Identity.Peers)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
identity:
  address: did:e:alice
kafka:
  brokers: [localhost:9092]
log:
  level: debug
`), 0o600))
	t.Setenv("PARLEY_LOG__LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "parley.envelopes", cfg.Kafka.Topic)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("identity address is required", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := Load("")
		assert.ErrorContains(t, err, "identity.address")
	})
}
