package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/pkg/core/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Name() != "test-service" {
		t.Errorf("Name() = %v, want test-service", logger.Name())
	}
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap("test", NewLogger(LoggerConfig{ServiceName: "test", Output: &buf}))
	result := logger.WithLevel(fxlog.LevelWarn)

	if result.Name() != "test" {
		t.Errorf("name should be preserved: got %v", result.Name())
	}

	result.Info("dropped")
	result.Warn("kept")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "kept" {
		t.Errorf("entries = %v, want only the warning", entries)
	}
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap("frontend", NewLogger(LoggerConfig{ServiceName: "frontend", Level: "debug", Output: &buf}))

	logger.Debug("debug message", "key", "value")
	logger.Info("message", "key1", "value1", "key2", 42, "key3", true)
	logger.Warn("message", "key1", "value1", "orphan")
	logger.Error("message without key-values")

	entries := decodeLines(t, &buf)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if entries[0]["level"] != "debug" || entries[0]["key"] != "value" {
		t.Errorf("debug entry = %v", entries[0])
	}
	if entries[1]["key2"] != float64(42) || entries[1]["key3"] != true {
		t.Errorf("info entry = %v", entries[1])
	}
	if _, ok := entries[2]["orphan"]; ok {
		t.Errorf("orphan key should be dropped: %v", entries[2])
	}
	for _, e := range entries {
		if e["component"] != "frontend" {
			t.Errorf("component = %v, want frontend", e["component"])
		}
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		input    string
		expected fxlog.Level
	}{
		{"trace", fxlog.LevelTrace},
		{"debug", fxlog.LevelDebug},
		{"info", fxlog.LevelInfo},
		{"warning", fxlog.LevelWarn},
		{"error", fxlog.LevelError},
		{"invalid", fxlog.LevelInfo}, // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := DefaultLoggerConfig("test")
			cfg.Level = tt.input
			if got := NewLogger(cfg).GetLevel(); got != tt.expected {
				t.Errorf("GetLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %v, want json", cfg.Format)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig("fxc", config.LoggingConfig{Level: "debug", Format: "text"})

	if cfg.ServiceName != "fxc" || cfg.Level != "debug" || cfg.Format != "text" {
		t.Errorf("FromConfig() = %+v", cfg)
	}

	var buf bytes.Buffer
	cfg.Output = &buf
	NewLogger(cfg).Info("hello")
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("text format should not emit JSON: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output missing message: %q", buf.String())
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName:       "test-service",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})

	logger.Info("fanned out")

	if primary.Len() == 0 || primary.String() != extra.String() {
		t.Errorf("outputs differ: primary=%q extra=%q", primary.String(), extra.String())
	}
}

func TestToFields(t *testing.T) {
	// Empty input
	fields := toFields()
	if fields != nil {
		t.Error("toFields() with no args should return nil")
	}
	if toFields("lonely") != nil {
		t.Error("toFields() with a single key should return nil")
	}

	// Valid key-value pairs
	fields = toFields("key1", "value1", "key2", 42)
	if fields == nil {
		t.Fatal("toFields() returned nil")
	}
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	// Non-string key (should be skipped)
	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := Wrap("benchmark", NewLogger(LoggerConfig{ServiceName: "benchmark", Output: &buf}))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
		buf.Reset()
	}
}
