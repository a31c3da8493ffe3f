package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "2h", 2 * time.Hour, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m0s"},
		{"hours", 2 * time.Hour, "2h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Duration{tt.duration}
			result, err := d.MarshalText()

			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
				return
			}

			if string(result) != tt.expected {
				t.Errorf("MarshalText() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	var out struct {
		TTL Duration `yaml:"ttl"`
	}
	if err := yaml.Unmarshal([]byte("ttl: 90s\n"), &out); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if out.TTL.Duration != 90*time.Second {
		t.Errorf("TTL = %v, want 1m30s", out.TTL.Duration)
	}

	if err := yaml.Unmarshal([]byte("ttl: [1, 2]\n"), &out); err == nil {
		t.Error("expected error for non-scalar duration")
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if string(data) != "ttl: 1m30s\n" {
		t.Errorf("yaml.Marshal() = %q", string(data))
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Compiler.FileExtension != ".fx" {
		t.Errorf("Compiler.FileExtension = %v, want .fx", cfg.Compiler.FileExtension)
	}
	if cfg.Compiler.MaxSourceBytes != 0 {
		t.Errorf("Compiler.MaxSourceBytes = %v, want 0 (unlimited)", cfg.Compiler.MaxSourceBytes)
	}
	if cfg.Cache.TTL.Duration != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m", cfg.Cache.TTL.Duration)
	}
	if cfg.Cache.MaxEntries != 256 {
		t.Errorf("Cache.MaxEntries = %v, want 256", cfg.Cache.MaxEntries)
	}
	if cfg.Server.Port != 9470 {
		t.Errorf("Server.Port = %v, want 9470", cfg.Server.Port)
	}
	if cfg.Server.MaxRecvMsgSize != 4*1024*1024 {
		t.Errorf("Server.MaxRecvMsgSize = %v", cfg.Server.MaxRecvMsgSize)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	cfg = &Config{Compiler: CompilerConfig{FileExtension: "fxs"}}
	cfg.applyDefaults()
	if cfg.Compiler.FileExtension != ".fxs" {
		t.Errorf("Compiler.FileExtension = %v, want .fxs", cfg.Compiler.FileExtension)
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := Default()
	if got := cfg.Address(); got != "0.0.0.0:9470" {
		t.Errorf("Address() = %v, want 0.0.0.0:9470", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative source limit", func(c *Config) { c.Compiler.MaxSourceBytes = -1 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative entries", func(c *Config) { c.Cache.MaxEntries = -5 }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"upper case format", func(c *Config) { c.Logging.Format = "JSON" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/fx.toml")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fx.toml")

	configContent := `
[compiler]
max_source_bytes = 4096

[cache]
enabled = true
ttl = "1m"

[server]
port = 9999
host = "127.0.0.1"

[server.keepalive]
time = "5s"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Compiler.MaxSourceBytes != 4096 {
		t.Errorf("Compiler.MaxSourceBytes = %v, want 4096", cfg.Compiler.MaxSourceBytes)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL.Duration != time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Port != 9999 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.Keepalive.Time.Duration != 5*time.Second {
		t.Errorf("Keepalive.Time = %v, want 5s", cfg.Server.Keepalive.Time.Duration)
	}

	// Check defaults were applied for missing values
	if cfg.Server.Keepalive.Timeout.Duration != 10*time.Second {
		t.Errorf("Keepalive.Timeout = %v, want 10s (default)", cfg.Server.Keepalive.Timeout.Duration)
	}
	if cfg.Compiler.FileExtension != ".fx" {
		t.Errorf("Compiler.FileExtension = %v, want .fx (default)", cfg.Compiler.FileExtension)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fx.yaml")

	configContent := `
compiler:
  file_extension: .fxs
cache:
  ttl: 30s
  max_entries: 8
logging:
  level: debug
  format: json
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Compiler.FileExtension != ".fxs" {
		t.Errorf("Compiler.FileExtension = %v", cfg.Compiler.FileExtension)
	}
	if cfg.Cache.TTL.Duration != 30*time.Second || cfg.Cache.MaxEntries != 8 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Server.Port != 9470 {
		t.Errorf("Server.Port = %v, want 9470 (default)", cfg.Server.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"broken toml", "fx.toml", "[compiler\n"},
		{"broken yaml", "fx.yml", "compiler: [\n"},
		{"bad duration", "fx.toml", "[cache]\nttl = \"soon\"\n"},
		{"fails validation", "fx.toml", "[logging]\nformat = \"xml\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+"-"+tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("FX_TEST_CACHE_DIR", "/var/cache/fx")

	cfg := &Config{Cache: CacheConfig{Path: "${FX_TEST_CACHE_DIR}/fx.db"}}
	cfg.expandEnvVars()

	if cfg.Cache.Path != "/var/cache/fx/fx.db" {
		t.Errorf("Cache.Path = %v, want /var/cache/fx/fx.db", cfg.Cache.Path)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.toml")
	if err := os.WriteFile(configPath, []byte("[server]\nport = 7001\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv("FX_CONFIG", configPath)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %v, want 7001", cfg.Server.Port)
	}
}

func TestLoadFromEnv_NoConfigFound(t *testing.T) {
	t.Setenv("FX_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	// Change to a temp directory without config files
	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	_, err := LoadFromEnv()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadFromEnv() error = %v, want ErrNotFound", err)
	}
}
