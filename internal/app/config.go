package app

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type HeaderConfig struct {
	Name  string `toml:"name" validate:"required"`
	Value string `toml:"value"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port" validate:"required"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url" validate:"required_if=Enabled true"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
		Enabled          bool   `toml:"-"`
	} `toml:"auth"`

	API struct {
		UserIDHeader    string         `toml:"user_id_header"`
		RequiredHeaders []HeaderConfig `toml:"required_headers" validate:"dive"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn" validate:"required"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Cache struct {
		Enabled    bool   `toml:"enabled"`
		RedisURL   string `toml:"redis_url" validate:"required_if=Enabled true"`
		KeyPrefix  string `toml:"key_prefix"`
		TTLSeconds int    `toml:"ttl_seconds" validate:"gte=0"`
	} `toml:"cache"`

	Display struct {
		TimestampFormat string `toml:"timestamp_format"`
	} `toml:"display"`
}

const (
	defaultTokenHeader      = "Authorization"
	defaultTokenKeyTemplate = "auth:{role}:{user}"
	defaultUserIDHeader     = "X-User-ID"
	defaultCacheKeyPrefix   = "report"
	defaultTimestampFormat  = "2006-01-02 15:04"
)

var validate = validator.New()

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	config.applyDefaults()

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logger.Debug.Printf("Loaded config: port=%s auth=%t cache=%t", config.Server.Port, config.Server.EnableAuth, config.Cache.Enabled)

	return &config, nil
}

func (c *Config) applyDefaults() {
	c.Auth.Enabled = c.Server.EnableAuth
	if c.Auth.TokenHeader == "" {
		c.Auth.TokenHeader = defaultTokenHeader
	}
	if c.Auth.TokenKeyTemplate == "" {
		c.Auth.TokenKeyTemplate = defaultTokenKeyTemplate
	}
	if c.API.UserIDHeader == "" {
		c.API.UserIDHeader = defaultUserIDHeader
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = defaultCacheKeyPrefix
	}
	if c.Display.TimestampFormat == "" {
		c.Display.TimestampFormat = defaultTimestampFormat
	}
}
