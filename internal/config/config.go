// Package config loads cherry settings from a YAML file, CHERRY_* environment
// variables and defaults, and persists the few values the CLI edits.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultLocalAPIURL = "http://localhost:8080"
	DefaultServerAddr  = "127.0.0.1:8070"
	DefaultMockAddr    = "127.0.0.1:8080"
	DefaultAPITimeout  = 30 * time.Second

	EnvPrefix = "CHERRY"
)

type Config struct {
	Workspace string         `mapstructure:"workspace"`
	API       APIConfig      `mapstructure:"api"`
	Server    ServerConfig   `mapstructure:"server"`
	Database  DatabaseConfig `mapstructure:"database"`
	Log       LogConfig      `mapstructure:"log"`

	// Path is the config file that was read, empty when none existed.
	Path string `mapstructure:"-"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr     string        `mapstructure:"addr"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" (default) or "mysql"
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

func Defaults() Config {
	return Config{
		Workspace: "default",
		API: APIConfig{
			BaseURL: DefaultLocalAPIURL,
			Timeout: DefaultAPITimeout,
		},
		Server: ServerConfig{
			Addr:     DefaultServerAddr,
			CacheTTL: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   defaultDatabasePath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("cannot determine user config dir")
	}
	return filepath.Join(dir, "cherry", "config.yaml"), nil
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return filepath.Join(".cherry", "cherry.db")
	}
	return filepath.Join(dir, "cherry", "cherry.db")
}

// Load reads path (or the default location when path is empty). A missing
// file is not an error; defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path = strings.TrimSpace(path)
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	used := ""
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
				if explicit {
					return nil, fmt.Errorf("config file not found: %s", path)
				}
			default:
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else {
			used = v.ConfigFileUsed()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Path = used
	cfg.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("workspace", d.Workspace)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cache_ttl", d.Server.CacheTTL)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.dsn", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func (c *Config) normalize() {
	c.Workspace = strings.TrimSpace(c.Workspace)
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.API.Token = strings.TrimSpace(c.API.Token)
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.API.Timeout <= 0 {
		c.API.Timeout = DefaultAPITimeout
	}
}
