package buildcache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx"
	"github.com/msto63/fx/foundation/fx/diag"
	"github.com/msto63/fx/pkg/core/cache"
)

func newTestCompiler(t *testing.T, store Store) *Compiler {
	t.Helper()
	logger := fxlog.New().WithOutput(io.Discard)
	c := NewCompiler(Options{
		Compiler: fx.New(fx.Options{Logger: logger}),
		Store:    store,
		Logger:   logger,
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCompiler_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c := newTestCompiler(t, NewMemoryStore())
	src := []byte("let age = 17.0\nlet add(a, b) a + b\n")

	first, err := c.Compile(ctx, "main.fx", src)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, cache.SourceKey("main.fx", src), first.Key)
	assert.Equal(t, []Function{{"age", "float"}, {"add", "int"}}, first.Functions)

	var tree []map[string]interface{}
	require.NoError(t, json.Unmarshal(first.Tree, &tree))
	require.Len(t, tree, 2)
	assert.Equal(t, "FunctionDefinition", tree[1]["kind"])
	assert.Equal(t, "add", tree[1]["name"])

	second, err := c.Compile(ctx, "main.fx", src)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.JSONEq(t, string(first.Tree), string(second.Tree))

	// a different name is a different unit
	third, err := c.Compile(ctx, "other.fx", src)
	require.NoError(t, err)
	assert.False(t, third.Cached)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats["total_entries"])
	assert.EqualValues(t, 3, stats["total_runs"])
	assert.EqualValues(t, 1, stats["cached_runs"])
	assert.EqualValues(t, 1, stats["memory_hits"])
}

func TestCompiler_PersistentHit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fx.db")
	src := []byte("let s = \"hello\"")

	store, err := NewSQLiteStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	first := newTestCompiler(t, store)
	out, err := first.Compile(ctx, "s.fx", src)
	require.NoError(t, err)
	require.False(t, out.Cached)
	require.NoError(t, first.Close())

	// a fresh process only has the database
	store, err = NewSQLiteStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	second := newTestCompiler(t, store)
	out, err = second.Compile(ctx, "s.fx", src)
	require.NoError(t, err)
	assert.True(t, out.Cached)
	assert.Equal(t, []Function{{"s", "string"}}, out.Functions)
}

func TestCompiler_FailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newTestCompiler(t, store)

	_, err := c.Compile(ctx, "bad.fx", []byte("let f(x) g(x)"))
	require.Error(t, err)
	_, ok := diag.AsError(err)
	assert.True(t, ok)

	var failure *fx.Failure
	require.True(t, errors.As(err, &failure))

	runs, err := store.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, failure.RunID, runs[0].ID)
	assert.False(t, runs[0].Success)
	assert.Contains(t, runs[0].Error, "expected function declaration")

	// failures are never cached
	_, err = c.Compile(ctx, "bad.fx", []byte("let f(x) g(x)"))
	assert.Error(t, err)
}

type brokenStore struct {
	*MemoryStore
}

func (brokenStore) Get(ctx context.Context, key string) (*Entry, error) {
	return nil, errors.New("database is locked")
}

func (brokenStore) Put(ctx context.Context, entry *Entry) error {
	return errors.New("database is locked")
}

func TestCompiler_StoreFailuresDoNotFailCompilation(t *testing.T) {
	c := newTestCompiler(t, brokenStore{NewMemoryStore()})

	out, err := c.Compile(context.Background(), "main.fx", []byte("let x = 1"))
	require.NoError(t, err)
	assert.Equal(t, []Function{{"x", "int"}}, out.Functions)

	// the memory layer still serves the second call
	out, err = c.Compile(context.Background(), "main.fx", []byte("let x = 1"))
	require.NoError(t, err)
	assert.True(t, out.Cached)
}
