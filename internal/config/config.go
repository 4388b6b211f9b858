package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	RowStorePostgres = "postgres"
	RowStoreMemory   = "memory"

	SnapshotStoreRedis     = "redis"
	SnapshotStoreFreecache = "freecache"
	SnapshotStoreSQLite    = "sqlite"
	SnapshotStoreMemory    = "memory"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// row store
	RowStore       string `toml:"row_store"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	RunMigrations  bool   `toml:"run_migrations"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// workout session snapshots
	SnapshotStore       string `toml:"snapshot_store"`
	SnapshotCacheSizeMB int    `toml:"snapshot_cache_size_mb"`
	SnapshotSQLitePath  string `toml:"snapshot_sqlite_path"`

	// http
	AllowedOrigins          []string `toml:"allowed_origins"`
	WriteRateLimitPerMinute int      `toml:"write_rate_limit_per_minute"`
	MaxRequestBodyBytes     int64    `toml:"max_request_body_bytes"`
	// StaticTokens maps session token to user id. Used instead of redis
	// sessions when no redis is configured.
	StaticTokens map[string]string `toml:"static_tokens"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied and validated.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config for env %s: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.RowStore == "" {
		c.RowStore = RowStorePostgres
	}
	if c.SnapshotStore == "" {
		c.SnapshotStore = SnapshotStoreRedis
	}
	if c.SnapshotCacheSizeMB == 0 {
		c.SnapshotCacheSizeMB = 16
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.MaxRequestBodyBytes == 0 {
		c.MaxRequestBodyBytes = 1 << 20
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}

	switch c.RowStore {
	case RowStorePostgres:
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
			return errors.New("postgres row store needs postgres_host, postgres_port and postgres_db_name")
		}
	case RowStoreMemory:
	default:
		return fmt.Errorf("unknown row_store: %s", c.RowStore)
	}

	switch c.SnapshotStore {
	case SnapshotStoreRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			return errors.New("redis snapshot store needs redis_host and redis_port")
		}
	case SnapshotStoreSQLite:
		if c.SnapshotSQLitePath == "" {
			return errors.New("sqlite snapshot store needs snapshot_sqlite_path")
		}
	case SnapshotStoreFreecache, SnapshotStoreMemory:
	default:
		return fmt.Errorf("unknown snapshot_store: %s", c.SnapshotStore)
	}

	if c.WriteRateLimitPerMinute < 0 {
		return fmt.Errorf("negative write_rate_limit_per_minute: %d", c.WriteRateLimitPerMinute)
	}

	return nil
}

// RedisEnabled tells whether a redis instance is configured at all.
// Without one, auth falls back to StaticTokens and rate limiting is off.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != "" && c.RedisPort != ""
}
