package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no configuration file could be located
var ErrNotFound = errors.New("config file not found")

// Config holds the complete fx configuration
type Config struct {
	Compiler CompilerConfig `toml:"compiler" yaml:"compiler"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

// CompilerConfig holds front end settings
type CompilerConfig struct {
	MaxSourceBytes int64  `toml:"max_source_bytes" yaml:"max_source_bytes"`
	FileExtension  string `toml:"file_extension" yaml:"file_extension"`
}

// CacheConfig holds build cache settings
type CacheConfig struct {
	Enabled    bool     `toml:"enabled" yaml:"enabled"`
	Path       string   `toml:"path" yaml:"path"`
	TTL        Duration `toml:"ttl" yaml:"ttl"`
	MaxEntries int      `toml:"max_entries" yaml:"max_entries"`
}

// ServerConfig holds the frontend gRPC server settings
type ServerConfig struct {
	Host           string          `toml:"host" yaml:"host"`
	Port           int             `toml:"port" yaml:"port"`
	MaxRecvMsgSize int             `toml:"max_recv_msg_size" yaml:"max_recv_msg_size"`
	Reflection     bool            `toml:"reflection" yaml:"reflection"`
	Keepalive      KeepaliveConfig `toml:"keepalive" yaml:"keepalive"`
}

// KeepaliveConfig holds gRPC keepalive settings
type KeepaliveConfig struct {
	Time    Duration `toml:"time" yaml:"time"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file.
// The format is chosen by the file extension; anything but .yaml and .yml is TOML.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from the FX_CONFIG environment variable
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("FX_CONFIG")
	if path == "" {
		path = Find()
	}

	if path == "" {
		return nil, fmt.Errorf("%w: set FX_CONFIG or create fx.toml", ErrNotFound)
	}

	return Load(path)
}

// Find returns the first existing default config path, or ""
func Find() string {
	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPaths lists the locations searched when FX_CONFIG is unset
func DefaultPaths() []string {
	paths := []string{
		"./configs/fx.toml",
		"./fx.toml",
		"./fx.yaml",
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config/fx/config.toml"))
	}
	return paths
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if c.Compiler.MaxSourceBytes < 0 {
		return fmt.Errorf("compiler.max_source_bytes must not be negative, got %d", c.Compiler.MaxSourceBytes)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("logging.format must be json, text or console, got %q", c.Logging.Format)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Compiler
	if c.Compiler.FileExtension == "" {
		c.Compiler.FileExtension = ".fx"
	}
	if !strings.HasPrefix(c.Compiler.FileExtension, ".") {
		c.Compiler.FileExtension = "." + c.Compiler.FileExtension
	}

	// Cache
	if c.Cache.Path == "" {
		c.Cache.Path = "./data/fxcache.db"
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9470
	}
	if c.Server.MaxRecvMsgSize == 0 {
		c.Server.MaxRecvMsgSize = 4 * 1024 * 1024
	}
	if c.Server.Keepalive.Time.Duration == 0 {
		c.Server.Keepalive.Time.Duration = 30 * time.Second
	}
	if c.Server.Keepalive.Timeout.Duration == 0 {
		c.Server.Keepalive.Timeout.Duration = 10 * time.Second
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.Cache.Path = os.ExpandEnv(c.Cache.Path)
	c.Server.Host = os.ExpandEnv(c.Server.Host)
}

// Address returns the host:port the frontend server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
