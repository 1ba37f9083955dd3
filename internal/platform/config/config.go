// Package config loads engine configuration from an optional YAML file and
// PARLEY_ environment variables. Nested keys use a double underscore:
// PARLEY_DATABASE__URL sets database.url.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	id "parley/pkg/domain"
)

const (
	DefaultFile = "parley.yaml"
	envPrefix   = "PARLEY_"
)

type Config struct {
	Server    Server    `koanf:"server"`
	Identity  Identity  `koanf:"identity"`
	Database  Database  `koanf:"database"`
	Redis     Redis     `koanf:"redis"`
	Kafka     Kafka     `koanf:"kafka"`
	Auth      Auth      `koanf:"auth"`
	Telemetry Telemetry `koanf:"telemetry"`
	Log       Log       `koanf:"log"`
}

type Server struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AdminToken      string        `koanf:"admin_token"`
}

// Identity names the account this engine acts for and the peers it has a
// relationship with.
type Identity struct {
	Address string   `koanf:"address"`
	Peers   []string `koanf:"peers"`
}

// Database is optional; an empty URL selects the in-memory stores.
type Database struct {
	URL            string `koanf:"url"`
	MaxConns       int32  `koanf:"max_conns"`
	MigrateOnStart bool   `koanf:"migrate_on_start"`
}

// Redis is optional; an empty URL selects the in-process request lock.
type Redis struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	LockTTL      time.Duration `koanf:"lock_ttl"`
}

// Kafka is optional; no brokers disables the message transport.
type Kafka struct {
	Brokers       []string `koanf:"brokers"`
	Topic         string   `koanf:"topic"`
	ConsumerGroup string   `koanf:"consumer_group"`
	Partitions    int32    `koanf:"partitions"`
}

type Auth struct {
	JWTSecret string        `koanf:"jwt_secret"`
	Issuer    string        `koanf:"issuer"`
	Audience  string        `koanf:"audience"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type Telemetry struct {
	TracingEnabled bool   `koanf:"tracing_enabled"`
	ServiceName    string `koanf:"service_name"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.read_timeout":     10 * time.Second,
	"server.write_timeout":    10 * time.Second,
	"server.idle_timeout":     60 * time.Second,
	"server.shutdown_timeout": 15 * time.Second,
	"database.max_conns":      int32(10),
	"redis.pool_size":         10,
	"redis.min_idle_conns":    2,
	"redis.dial_timeout":      5 * time.Second,
	"redis.read_timeout":      3 * time.Second,
	"redis.write_timeout":     3 * time.Second,
	"redis.lock_ttl":          10 * time.Second,
	"kafka.topic":             "parley.envelopes",
	"kafka.consumer_group":    "parley",
	"kafka.partitions":        int32(3),
	"auth.token_ttl":          time.Hour,
	"telemetry.service_name":  "parley",
	"log.level":               "info",
	"log.format":              "json",
}

// Load reads path (DefaultFile when empty, where a missing file is not an
// error), then overlays environment variables and fills defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	optional := path == ""
	if optional {
		path = DefaultFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !optional || !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, v := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("set default %s: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Identity.Peers = splitList(cfg.Identity.Peers)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if _, err := id.ParseAddress(c.Identity.Address); err != nil {
		return fmt.Errorf("identity.address: %w", err)
	}
	for _, p := range c.Identity.Peers {
		if _, err := id.ParseAddress(p); err != nil {
			return fmt.Errorf("identity.peers: %w", err)
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	return nil
}

func (c *Config) Address() id.Address { return id.Address(c.Identity.Address) }

func (c *Config) PeerAddresses() []id.Address {
	out := make([]id.Address, 0, len(c.Identity.Peers))
	for _, p := range c.Identity.Peers {
		out = append(out, id.Address(p))
	}
	return out
}

// splitList flattens comma separated entries, as produced by env values.
func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
