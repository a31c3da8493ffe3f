// File: format_test.go
// Title: Log Format Tests
// Description: Tests for the JSON, text and console formatters.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial formatter tests
// - 2026-10-17 v0.2.0: Console colors via fatih/color

package log

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func sampleEntry() *Entry {
	e := NewEntry(LevelWarn, "cache entry dropped")
	e.Timestamp = time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC)
	e.Logger = "buildcache"
	e.Fields["key"] = "ab12"
	e.Fields["attempt"] = 2
	e.Error = errors.New("corrupt")
	e.Duration = 1500 * time.Microsecond
	return e
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"json": FormatJSON, "TEXT": FormatText, "console": FormatConsole, "": FormatJSON}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSONFormatter().Format(sampleEntry())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasSuffix(string(out), "\n") {
		t.Error("JSON output should end with a newline")
	}

	var m map[string]interface{}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	want := map[string]interface{}{
		"level":       "warn",
		"message":     "cache entry dropped",
		"logger":      "buildcache",
		"key":         "ab12",
		"attempt":     float64(2),
		"error":       "corrupt",
		"duration_ms": 1.5,
		"timestamp":   "2026-10-17T12:30:00Z",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %v", k, m[k], v)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	out, _ := NewTextFormatter().Format(sampleEntry())
	want := `12:30:00 [WRN] {buildcache} cache entry dropped [attempt=2 key=ab12] error="corrupt" duration=1.5ms` + "\n"
	if string(out) != want {
		t.Errorf("Format() =\n%q\nwant\n%q", out, want)
	}
}

func TestConsoleFormatter(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	f := NewConsoleFormatter()
	colored, _ := f.Format(sampleEntry())
	if !strings.Contains(string(colored), "\x1b[33m[WRN]") {
		t.Errorf("console output should color the level tag: %q", colored)
	}

	f.DisableColors = true
	plain, _ := f.Format(sampleEntry())
	if strings.Contains(string(plain), "\x1b[") {
		t.Errorf("DisableColors output should be plain: %q", plain)
	}
}
