package rpm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePackages(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		cfg := demoConfig("gzip")
		cfg.Name = name
		p := filepath.Join(dir, name+".rpm")
		require.NoError(t, os.WriteFile(p, buildBytes(t, NewBuilder(cfg)), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func TestOpenAll(t *testing.T) {
	t.Parallel()

	paths := writePackages(t, "alpha", "beta", "gamma", "delta")

	var mu sync.Mutex
	var names []string
	err := OpenAll(context.Background(), paths, func(_ context.Context, _ string, pkg *Package) error {
		name, _ := pkg.Header().String(TagName)
		mu.Lock()
		names = append(names, name)
		mu.Unlock()
		return nil
	}, WithConcurrency(2))
	require.NoError(t, err)

	slices.Sort(names)
	assert.Equal(t, []string{"alpha", "beta", "delta", "gamma"}, names)
}

func TestOpenAllEmpty(t *testing.T) {
	t.Parallel()

	called := false
	err := OpenAll(context.Background(), nil, func(context.Context, string, *Package) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestOpenAllStopsOnError(t *testing.T) {
	t.Parallel()

	paths := writePackages(t, "alpha", "beta")
	paths = append(paths, filepath.Join(t.TempDir(), "missing.rpm"))

	err := OpenAll(context.Background(), paths, func(context.Context, string, *Package) error {
		return nil
	}, WithConcurrency(1))
	require.ErrorIs(t, err, os.ErrNotExist)

	boom := errors.New("boom")
	err = OpenAll(context.Background(), paths[:2], func(context.Context, string, *Package) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), ".rpm")
}
