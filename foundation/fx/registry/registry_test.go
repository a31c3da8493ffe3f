package registry

import (
	"bytes"
	"strings"
	"testing"

	"github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/ast"
)

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	r := New(Options{Logger: log.NewWithConfig(log.Config{Level: log.LevelWarn, Output: &buf})})

	if r.Len() != 0 {
		t.Fatalf("new registry should be empty, got %d", r.Len())
	}
	if _, ok := r.Lookup("age"); ok {
		t.Fatal("Lookup on empty registry should fail")
	}

	r.Register("age", ast.TypeFloat)
	r.Register("name", ast.TypeString)
	r.Register("age", ast.TypeInt)

	tests := []struct {
		name string
		want ast.ReturnType
	}{
		{"age", ast.TypeInt},
		{"name", ast.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Lookup(tt.name)
			if !ok || got != tt.want {
				t.Errorf("Lookup(%q) = %v, %v; want %v", tt.name, got, ok, tt.want)
			}
		})
	}

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if names := r.Names(); strings.Join(names, ",") != "age,name" {
		t.Errorf("Names() = %v", names)
	}
	if !strings.Contains(buf.String(), "function redefined") {
		t.Errorf("redefinition should be logged, got %q", buf.String())
	}

	snap := r.Snapshot()
	snap["age"] = ast.TypeString
	if got, _ := r.Lookup("age"); got != ast.TypeInt {
		t.Error("Snapshot() should return a copy")
	}
}
