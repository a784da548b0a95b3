package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when neither --config nor CONFIG_PATH is given.
const DefaultConfigPath = "config.yaml"

// WildcardOrigin allows any origin.
const WildcardOrigin = "*"

type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            string        `yaml:"port"`
		Prefork         bool          `yaml:"prefork"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Content struct {
		IndexFile    string `yaml:"index_file"`
		StaticDir    string `yaml:"static_dir"`
		StaticPrefix string `yaml:"static_prefix"`
	} `yaml:"content"`

	CORS struct {
		AllowOrigins     []string `yaml:"allow_origins"`
		AllowCredentials bool     `yaml:"allow_credentials"`
	} `yaml:"cors"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Ops struct {
		MetricsPath string `yaml:"metrics_path"`
		MonitorPath string `yaml:"monitor_path"`
	} `yaml:"ops"`
}

// AppConfig holds the configuration loaded by LoadConfig.
var AppConfig Config

// DefaultConfig serves index.html and static/ from the working directory on
// :8000 with a wildcard cross-origin policy.
func DefaultConfig() Config {
	var cfg Config
	cfg.Server.Port = ":8000"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Content.IndexFile = "index.html"
	cfg.Content.StaticDir = "static"
	cfg.Content.StaticPrefix = "/static"
	cfg.CORS.AllowOrigins = []string{WildcardOrigin}
	cfg.CORS.AllowCredentials = true
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 28
	cfg.Ops.MetricsPath = "/metrics"
	return cfg
}

// LoadConfig resolves the config path from explicit, then CONFIG_PATH, then
// DefaultConfigPath. Only a missing default file is tolerated; it yields
// DefaultConfig. The result is stored in AppConfig.
func LoadConfig(explicit string) (Config, error) {
	path := explicit
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	optional := path == ""
	if optional {
		path = DefaultConfigPath
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			cfg = DefaultConfig()
		} else {
			return Config{}, err
		}
	}
	AppConfig = cfg
	return cfg, nil
}

// LoadConfigFrom reads a YAML file over DefaultConfig and validates the result.
func LoadConfigFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// GetConfig returns the configuration loaded by LoadConfig.
func GetConfig() Config {
	return AppConfig
}

func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if strings.TrimSpace(c.Content.IndexFile) == "" {
		return errors.New("content.index_file is empty")
	}
	if strings.TrimSpace(c.Content.StaticDir) == "" {
		return errors.New("content.static_dir is empty")
	}
	p := c.Content.StaticPrefix
	if !strings.HasPrefix(p, "/") || p == "/" || strings.HasSuffix(p, "/") {
		return fmt.Errorf("content.static_prefix %q must start with / and name a sub-path", p)
	}
	if len(c.CORS.AllowOrigins) == 0 {
		return errors.New("cors.allow_origins is empty")
	}
	if c.WildcardCORS() && len(c.CORS.AllowOrigins) > 1 {
		return errors.New("cors.allow_origins cannot mix * with explicit origins")
	}
	for _, path := range []string{c.Ops.MetricsPath, c.Ops.MonitorPath} {
		if path != "" && !strings.HasPrefix(path, "/") {
			return fmt.Errorf("ops path %q must start with /", path)
		}
	}
	return nil
}

// WildcardCORS reports whether any origin is allowed.
func (c Config) WildcardCORS() bool {
	for _, o := range c.CORS.AllowOrigins {
		if o == WildcardOrigin {
			return true
		}
	}
	return false
}
