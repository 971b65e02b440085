// Package config loads orderbot settings from a YAML file with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lock backends.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config is the full runtime configuration.
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Lock     LockConfig     `yaml:"lock"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

// DiscordConfig holds bot credentials. GuildID scopes command registration
// to one server; empty registers globally.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	AppID   string `yaml:"app_id"`
	GuildID string `yaml:"guild_id,omitempty"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig points at the product-name dictionary. Empty disables it.
type CatalogConfig struct {
	Path string `yaml:"path,omitempty"`
}

type LockConfig struct {
	Backend string `yaml:"backend"` // "memory" or "redis"
}

type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	DB      int           `yaml:"db"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// HTTPConfig configures the read-only ops API. Empty Addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
	File   string `yaml:"file,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Lock:     LockConfig{Backend: LockBackendMemory},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			LockTTL: 10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: LogFormatConsole},
	}
}

// DefaultDatabasePath returns ~/.orderbot/orderbot.db, or a relative path
// when the home directory is unknown.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "orderbot.db"
	}
	return filepath.Join(home, ".orderbot", "orderbot.db")
}

// DefaultConfigPath returns ~/.orderbot/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".orderbot", "config.yaml")
}

// LoadConfig reads the YAML file at path over the defaults, applies
// environment overrides and validates the result. An empty path skips the
// file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold the bot token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must be set")
	}
	switch c.Lock.Backend {
	case LockBackendMemory:
	case LockBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr must be set when lock.backend is redis")
		}
		if c.Redis.LockTTL <= 0 {
			return fmt.Errorf("redis.lock_ttl must be > 0")
		}
	default:
		return fmt.Errorf("unknown lock.backend %q", c.Lock.Backend)
	}
	switch c.Log.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

// RequireDiscord checks the settings needed to connect the bot.
func (c *Config) RequireDiscord() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token must be set (or ORDERBOT_DISCORD_TOKEN)")
	}
	if c.Discord.AppID == "" {
		return fmt.Errorf("discord.app_id must be set (or ORDERBOT_DISCORD_APP_ID)")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Discord.Token = getEnv("ORDERBOT_DISCORD_TOKEN", cfg.Discord.Token)
	cfg.Discord.AppID = getEnv("ORDERBOT_DISCORD_APP_ID", cfg.Discord.AppID)
	cfg.Discord.GuildID = getEnv("ORDERBOT_DISCORD_GUILD_ID", cfg.Discord.GuildID)
	cfg.Database.Path = getEnv("ORDERBOT_DB_PATH", cfg.Database.Path)
	cfg.Catalog.Path = getEnv("ORDERBOT_CATALOG_PATH", cfg.Catalog.Path)
	cfg.Lock.Backend = strings.ToLower(getEnv("ORDERBOT_LOCK_BACKEND", cfg.Lock.Backend))
	cfg.Redis.Addr = getEnv("ORDERBOT_REDIS_ADDR", cfg.Redis.Addr)
	cfg.HTTP.Addr = getEnv("ORDERBOT_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Log.Level = getEnv("ORDERBOT_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(getEnv("ORDERBOT_LOG_FORMAT", cfg.Log.Format))
	cfg.Log.File = getEnv("ORDERBOT_LOG_FILE", cfg.Log.File)

	redisDB, err := getEnvInt("ORDERBOT_REDIS_DB", cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("invalid ORDERBOT_REDIS_DB: %w", err)
	}
	cfg.Redis.DB = redisDB

	if v := os.Getenv("ORDERBOT_REDIS_LOCK_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ORDERBOT_REDIS_LOCK_TTL: %w", err)
		}
		cfg.Redis.LockTTL = ttl
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
