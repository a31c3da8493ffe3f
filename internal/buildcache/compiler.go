package buildcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	fxerror "github.com/msto63/fx/foundation/core/error"
	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx"
	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/pkg/core/cache"
)

// Output is a compiled unit as served from the cache or a fresh run
type Output struct {
	RunID     string
	File      string
	Key       string
	Functions []Function
	// Tree is the JSON array of ast.View maps
	Tree     json.RawMessage
	Cached   bool
	Duration time.Duration
}

// Options configures a caching Compiler
type Options struct {
	Compiler *fx.Compiler
	// Store persists entries and runs; nil keeps everything in memory
	Store Store
	// Memory fronts the store; nil uses DefaultSourcesConfig
	Memory *cache.SourceCache[*Entry]
	Logger *fxlog.Logger
}

// Compiler compiles source units and reuses results for identical input.
// Cache failures are logged and never fail a compilation.
type Compiler struct {
	compiler *fx.Compiler
	store    Store
	memory   *cache.SourceCache[*Entry]
	logger   *fxlog.Logger
}

// NewCompiler creates a caching compiler
func NewCompiler(opts Options) *Compiler {
	if opts.Logger == nil {
		opts.Logger = fxlog.GetDefault()
	}
	if opts.Compiler == nil {
		opts.Compiler = fx.New(fx.Options{Logger: opts.Logger})
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Memory == nil {
		opts.Memory = cache.NewSourceCache[*Entry](cache.DefaultSourcesConfig())
	}
	return &Compiler{
		compiler: opts.Compiler,
		store:    opts.Store,
		memory:   opts.Memory,
		logger:   opts.Logger.WithField("component", "buildcache"),
	}
}

// Store returns the backing store
func (c *Compiler) Store() Store {
	return c.store
}

// Compile returns the cached unit for (file, src) or compiles it
func (c *Compiler) Compile(ctx context.Context, file string, src []byte) (*Output, error) {
	start := time.Now()
	key := cache.SourceKey(file, src)
	logger := c.logger.WithFields(fxlog.Fields{"file": file, "key": key[:12]})

	if entry, ok := c.lookup(ctx, key, logger); ok {
		out := &Output{
			RunID:     uuid.NewString(),
			File:      file,
			Key:       key,
			Functions: entry.Functions,
			Tree:      entry.Tree,
			Cached:    true,
			Duration:  time.Since(start),
		}
		c.record(ctx, logger, &Run{ID: out.RunID, File: file, Key: key, Success: true, Cached: true, Duration: out.Duration})
		logger.Debug("cache hit")
		return out, nil
	}

	result, err := c.compiler.CompileSource(ctx, file, src)
	if err != nil {
		run := &Run{File: file, Key: key, Error: err.Error(), Duration: time.Since(start)}
		var failure *fx.Failure
		if errors.As(err, &failure) {
			run.ID = failure.RunID
		} else {
			run.ID = uuid.NewString()
		}
		c.record(ctx, logger, run)
		return nil, err
	}

	tree, err := json.Marshal(ast.ViewAll(result.Forest))
	if err != nil {
		return nil, fxerror.Wrap(err, "failed to encode tree").
			WithCode(fxerror.CodeInternal).
			WithOperation("cache")
	}

	entry := &Entry{
		Key:       key,
		File:      file,
		Tree:      tree,
		Functions: functionsOf(result),
	}
	if err := c.store.Put(ctx, entry); err != nil {
		logger.LogError(fxerror.Wrap(err, "failed to store cache entry").
			WithCode(fxerror.CodeCache).
			WithOperation("put"))
	}
	c.memory.Put(key, entry)

	out := &Output{
		RunID:     result.RunID,
		File:      file,
		Key:       key,
		Functions: entry.Functions,
		Tree:      tree,
		Duration:  time.Since(start),
	}
	c.record(ctx, logger, &Run{ID: out.RunID, File: file, Key: key, Success: true, Duration: out.Duration})
	return out, nil
}

// Stats merges store and memory statistics
func (c *Compiler) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := c.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store stats: %w", err)
	}
	for k, v := range c.memory.Stats() {
		stats["memory_"+k] = v
	}
	return stats, nil
}

// Close releases the memory layer and the store
func (c *Compiler) Close() error {
	c.memory.Close()
	return c.store.Close()
}

func (c *Compiler) lookup(ctx context.Context, key string, logger *fxlog.Logger) (*Entry, bool) {
	if entry, ok := c.memory.Get(key); ok {
		return entry, true
	}

	entry, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		logger.LogError(fxerror.Wrap(err, "cache lookup failed").
			WithCode(fxerror.CodeCache).
			WithOperation("get"))
		return nil, false
	}
	c.memory.Put(key, entry)
	return entry, true
}

func (c *Compiler) record(ctx context.Context, logger *fxlog.Logger, run *Run) {
	if err := c.store.RecordRun(ctx, run); err != nil {
		logger.LogError(fxerror.Wrap(err, "failed to record run").
			WithCode(fxerror.CodeCache).
			WithOperation("record"))
	}
}

func functionsOf(result *fx.Result) []Function {
	functions := make([]Function, 0, len(result.Order))
	for _, name := range result.Order {
		functions = append(functions, Function{
			Name:       name,
			ReturnType: result.Functions[name].String(),
		})
	}
	return functions
}
