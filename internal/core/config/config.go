package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides: GEOPRESENCE_REDIS__URL overrides redis.url.
const EnvPrefix = "GEOPRESENCE_"

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Redis     RedisConfig     `koanf:"redis"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Sweep     SweepConfig     `koanf:"sweep"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeKB int    `koanf:"max_body_size_kb"`
	Mode          string `koanf:"mode"` // debug | release
}

type RedisConfig struct {
	URL            string `koanf:"url"`
	PoolSize       int    `koanf:"pool_size"`
	DialTimeout    string `koanf:"dial_timeout"`
	OpTimeout      string `koanf:"op_timeout"` // bound on every presence / limiter call
	KeyPrefix      string `koanf:"key_prefix"`
	ConnectRetries int    `koanf:"connect_retries"`
}

type TelemetryConfig struct {
	PingTTL             string  `koanf:"ping_ttl"`
	PingIntervalMin     int     `koanf:"ping_interval_min"` // seconds
	PingIntervalMax     int     `koanf:"ping_interval_max"` // seconds
	MaxQueryRadiusMeter float64 `koanf:"max_query_radius_m"`
}

type RateLimitConfig struct {
	MaxRequests int    `koanf:"max_requests"`
	Window      string `koanf:"window"`
	KeyPrefix   string `koanf:"key_prefix"`
}

type SweepConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Interval string `koanf:"interval"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text | json
}

func (c RedisConfig) DialTimeoutDuration() time.Duration { return mustDuration(c.DialTimeout) }
func (c RedisConfig) OpTimeoutDuration() time.Duration { return mustDuration(c.OpTimeout) }
func (c TelemetryConfig) PingTTLDuration() time.Duration { return mustDuration(c.PingTTL) }
func (c RateLimitConfig) WindowDuration() time.Duration { return mustDuration(c.Window) }
func (c SweepConfig) IntervalDuration() time.Duration { return mustDuration(c.Interval) }

// mustDuration is only called on values that passed Validate.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func positiveDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be > 0", field)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeKB <= 0 {
		return fmt.Errorf("server.max_body_size_kb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Redis.URL) == "" {
		return fmt.Errorf("redis.url is required")
	}
	if c.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis.pool_size must be > 0")
	}
	if err := positiveDuration("redis.dial_timeout", c.Redis.DialTimeout); err != nil {
		return err
	}
	if err := positiveDuration("redis.op_timeout", c.Redis.OpTimeout); err != nil {
		return err
	}
	if strings.TrimSpace(c.Redis.KeyPrefix) == "" {
		return fmt.Errorf("redis.key_prefix is required")
	}
	if c.Redis.ConnectRetries < 0 {
		return fmt.Errorf("redis.connect_retries must be >= 0")
	}

	if err := positiveDuration("telemetry.ping_ttl", c.Telemetry.PingTTL); err != nil {
		return err
	}
	if c.Telemetry.PingIntervalMin <= 0 {
		return fmt.Errorf("telemetry.ping_interval_min must be > 0")
	}
	if c.Telemetry.PingIntervalMax < c.Telemetry.PingIntervalMin {
		return fmt.Errorf("telemetry.ping_interval_max (%d) must be >= ping_interval_min (%d)",
			c.Telemetry.PingIntervalMax, c.Telemetry.PingIntervalMin)
	}
	if c.Telemetry.MaxQueryRadiusMeter <= 0 {
		return fmt.Errorf("telemetry.max_query_radius_m must be > 0")
	}

	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be > 0")
	}
	if err := positiveDuration("rate_limit.window", c.RateLimit.Window); err != nil {
		return err
	}
	if c.RateLimit.WindowDuration() < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s")
	}
	if strings.TrimSpace(c.RateLimit.KeyPrefix) == "" {
		return fmt.Errorf("rate_limit.key_prefix is required")
	}

	if err := positiveDuration("sweep.interval", c.Sweep.Interval); err != nil {
		return err
	}

	return nil
}

// Load parses config from defaults, then file, then env, and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  8000,
		"server.host":                  "0.0.0.0",
		"server.max_body_size_kb":      16,
		"server.mode":                  "release",
		"redis.url":                    "redis://localhost:6379/0",
		"redis.pool_size":              50,
		"redis.dial_timeout":           "5s",
		"redis.op_timeout":             "2s",
		"redis.key_prefix":             "location_pings",
		"redis.connect_retries":        5,
		"telemetry.ping_ttl":           "60s",
		"telemetry.ping_interval_min":  30,
		"telemetry.ping_interval_max":  60,
		"telemetry.max_query_radius_m": 50000.0,
		"rate_limit.max_requests":      100,
		"rate_limit.window":            "60s",
		"rate_limit.key_prefix":        "rate_limit",
		"sweep.enabled":                true,
		"sweep.interval":               "30s",
		"log.level":                    "info",
		"log.format":                   "text",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
