// File: registry.go
// Title: fx Function Registry
// Description: Maps function names to their inferred return types for one
//              parse run. The parser owns one registry and adds each
//              definition once its body has been inferred; later calls
//              resolve against it.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package registry

import (
	"github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/ast"
)

// Options configures a registry
type Options struct {
	Logger *log.Logger
}

// Registry is the per-run function table. It is not safe for concurrent
// use; every parse run creates its own.
type Registry struct {
	types  map[string]ast.ReturnType
	order  []string
	logger *log.Logger
}

// New creates an empty registry
func New(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	return &Registry{
		types:  make(map[string]ast.ReturnType),
		logger: opts.Logger.WithField("component", "fx-registry"),
	}
}

// Register records name with its return type. Redefining a name replaces
// the earlier type; calls parsed before the redefinition keep theirs.
func (r *Registry) Register(name string, rt ast.ReturnType) {
	if prev, ok := r.types[name]; ok {
		r.logger.Warn("function redefined", log.Fields{
			"name":     name,
			"previous": prev.String(),
			"type":     rt.String(),
		})
	} else {
		r.order = append(r.order, name)
	}
	r.types[name] = rt

	r.logger.Debug("function registered", log.Fields{"name": name, "type": rt.String()})
}

// Lookup returns the return type of name
func (r *Registry) Lookup(name string) (ast.ReturnType, bool) {
	rt, ok := r.types[name]
	return rt, ok
}

// Len returns the number of registered functions
func (r *Registry) Len() int {
	return len(r.types)
}

// Names returns function names in first-definition order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Snapshot returns a copy of the table
func (r *Registry) Snapshot() map[string]ast.ReturnType {
	out := make(map[string]ast.ReturnType, len(r.types))
	for k, v := range r.types {
		out[k] = v
	}
	return out
}
