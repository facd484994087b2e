package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Listen            string        `yaml:"listen"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ConvertTimeout    time.Duration `yaml:"convert_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	CacheMaxAge       int           `yaml:"cache_max_age"` // seconds
}

type FetchConfig struct {
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBytes     int64         `yaml:"max_bytes"`
	MaxRedirects int           `yaml:"max_redirects"`
	Proxy        string        `yaml:"proxy"` // http://, https:// or socks5://
}

type DatabaseConfig struct {
	Path       string `yaml:"path"` // empty disables history
	MaxRecords int    `yaml:"max_records"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Listen = "127.0.0.1:8787"
	cfg.Server.ReadHeaderTimeout = 10 * time.Second
	cfg.Server.ConvertTimeout = 60 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Server.CacheMaxAge = 300
	cfg.Fetch.UserAgent = "ClashConverter/1.0"
	cfg.Fetch.Timeout = 15 * time.Second
	cfg.Fetch.MaxBytes = 5 * 1024 * 1024
	cfg.Fetch.MaxRedirects = 5
	cfg.Database.MaxRecords = 1000
	return &cfg
}

// Load reads the yaml file at path over the defaults. A missing file is only
// an error when the caller asked for a specific path.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Server.ConvertTimeout <= 0 {
		return fmt.Errorf("server.convert_timeout must be positive")
	}
	if c.Server.CacheMaxAge < 0 {
		return fmt.Errorf("server.cache_max_age must not be negative")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be positive")
	}
	if c.Fetch.MaxRedirects < 0 {
		return fmt.Errorf("fetch.max_redirects must not be negative")
	}
	if c.Database.MaxRecords < 0 {
		return fmt.Errorf("database.max_records must not be negative")
	}
	return nil
}
