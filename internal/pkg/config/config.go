package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
	Client    ClientConfig    `mapstructure:"client"`
	Map       MapConfig       `mapstructure:"map"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// CacheConfig controls the server-side read-through cache.
type CacheConfig struct {
	PinsTTL int `mapstructure:"pins_ttl"` // seconds
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // terminal client only
}

// ClientConfig configures how the map client reaches the pin store.
type ClientConfig struct {
	StoreURL       string `mapstructure:"store_url"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds
	ProbeInterval  int    `mapstructure:"probe_interval"`  // seconds between readiness probes
}

func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// MapConfig holds the world canvas and gesture tuning for the map surface.
type MapConfig struct {
	WorldWidth     float64 `mapstructure:"world_width"`
	WorldHeight    float64 `mapstructure:"world_height"`
	MinScale       float64 `mapstructure:"min_scale"`
	MaxScale       float64 `mapstructure:"max_scale"`
	ZoomStep       float64 `mapstructure:"zoom_step"`
	DragCooldownMs int     `mapstructure:"drag_cooldown_ms"`
	MarkerRadius   float64 `mapstructure:"marker_radius"` // screen units
}

func (m MapConfig) DragCooldown() time.Duration {
	return time.Duration(m.DragCooldownMs) * time.Millisecond
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pinmap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "pinmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", "pinmap")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("cache.pins_ttl", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "pinmap.log")
	v.SetDefault("client.store_url", "http://localhost:8080")
	v.SetDefault("client.request_timeout", 10)
	v.SetDefault("client.probe_interval", 2)
	v.SetDefault("map.world_width", 1000)
	v.SetDefault("map.world_height", 500)
	v.SetDefault("map.min_scale", 1)
	v.SetDefault("map.max_scale", 4)
	v.SetDefault("map.zoom_step", 1.1)
	v.SetDefault("map.drag_cooldown_ms", 150)
	v.SetDefault("map.marker_radius", 1)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: PINMAP_DATABASE_HOST → database.host
	v.SetEnvPrefix("PINMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Cache.PinsTTL <= 0 {
		errs = append(errs, "cache.pins_ttl must be positive")
	}
	if c.Client.StoreURL == "" {
		errs = append(errs, "client.store_url is required")
	}
	if c.Client.RequestTimeout <= 0 {
		errs = append(errs, "client.request_timeout must be positive")
	}
	if c.Client.ProbeInterval <= 0 {
		errs = append(errs, "client.probe_interval must be positive")
	}
	if c.Map.WorldWidth <= 0 || c.Map.WorldHeight <= 0 {
		errs = append(errs, "map.world_width and map.world_height must be positive")
	}
	if c.Map.MinScale <= 0 {
		errs = append(errs, "map.min_scale must be positive")
	}
	if c.Map.MaxScale < c.Map.MinScale {
		errs = append(errs, fmt.Sprintf("map.max_scale (%g) must not be below map.min_scale (%g)", c.Map.MaxScale, c.Map.MinScale))
	}
	if c.Map.ZoomStep <= 1 {
		errs = append(errs, "map.zoom_step must be greater than 1")
	}
	if c.Map.DragCooldownMs < 0 {
		errs = append(errs, "map.drag_cooldown_ms must not be negative")
	}
	if c.Map.MarkerRadius < 0 {
		errs = append(errs, "map.marker_radius must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
