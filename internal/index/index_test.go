package index

import (
	"crypto/sha256"
	"io/fs"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/rpm/internal/cpio"
)

func sampleEntries() []Entry {
	sum := sha256.Sum256([]byte("hello"))
	return []Entry{
		{Path: "usr/bin/tool", Mode: cpio.ModeRegular | 0o755, Size: 5, DataOffset: 240, ModTime: 1700000000, Hash: sum[:]},
		{Path: "usr", Mode: cpio.ModeDir | 0o755},
		{Path: "usr/bin/alias", Mode: cpio.ModeSymlink | 0o777, Size: 4, DataOffset: 120, LinkTarget: "tool"},
		{Path: "etc/conf", Mode: cpio.ModeRegular | 0o644, Size: 3, DataOffset: 400, UID: 10, GID: 20},
		{Path: "usr/bin", Mode: cpio.ModeDir | 0o755},
	}
}

func mustLoad(tb testing.TB, data []byte) *Index {
	tb.Helper()
	idx, err := Load(data)
	require.NoError(tb, err, "Load failed")
	return idx
}

func paths(seq func(func(EntryView) bool)) []string {
	var out []string
	for v := range seq {
		out = append(out, v.Path())
	}
	return out
}

func TestBuildAndLoad(t *testing.T) {
	t.Parallel()

	payloadHash := sha256.Sum256([]byte("payload"))
	data := Build(Meta{
		Package:     "demo-1.0-1.noarch",
		Compressor:  "zstd",
		PayloadSize: 1024,
		PayloadHash: payloadHash[:],
	}, sampleEntries())
	idx := mustLoad(t, data)

	assert.Equal(t, uint32(Version), idx.Version())
	assert.Equal(t, "demo-1.0-1.noarch", idx.Package())
	assert.Equal(t, "zstd", idx.Compressor())
	assert.Equal(t, uint64(1024), idx.PayloadSize())
	hash, ok := idx.PayloadHash()
	require.True(t, ok)
	assert.Equal(t, payloadHash[:], hash)
	assert.Equal(t, 5, idx.Len())

	assert.Equal(t, []string{"etc/conf", "usr", "usr/bin", "usr/bin/alias", "usr/bin/tool"}, paths(idx.Entries()))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	idx := mustLoad(t, Build(Meta{}, sampleEntries()))

	v, ok := idx.Lookup("usr/bin/tool")
	require.True(t, ok)
	assert.Equal(t, "usr/bin/tool", v.Path())
	assert.Equal(t, uint64(5), v.Size())
	assert.Equal(t, uint64(240), v.DataOffset())
	assert.Equal(t, time.Unix(1700000000, 0), v.ModTime())
	assert.Equal(t, fs.FileMode(0o755), v.FileMode())
	sum := sha256.Sum256([]byte("hello"))
	assert.Equal(t, sum[:], v.Hash())

	v, ok = idx.Lookup("usr/bin/alias")
	require.True(t, ok)
	assert.Equal(t, "tool", v.LinkTarget())
	assert.Equal(t, fs.ModeSymlink|0o777, v.FileMode())
	assert.Empty(t, v.Hash())

	v, ok = idx.Lookup("etc/conf")
	require.True(t, ok)
	assert.Equal(t, uint32(10), v.UID())
	assert.Equal(t, uint32(20), v.GID())

	_, ok = idx.Lookup("usr/bin/missing")
	assert.False(t, ok)
	_, ok = idx.Lookup("")
	assert.False(t, ok)
}

func TestEntriesWithPrefix(t *testing.T) {
	t.Parallel()

	idx := mustLoad(t, Build(Meta{}, sampleEntries()))

	assert.Equal(t, []string{"usr/bin", "usr/bin/alias", "usr/bin/tool"}, paths(idx.EntriesWithPrefix("usr/bin")))
	assert.Equal(t, []string{"etc/conf"}, paths(idx.EntriesWithPrefix("etc/")))
	assert.Empty(t, paths(idx.EntriesWithPrefix("var/")))
	assert.Len(t, paths(idx.EntriesWithPrefix("")), 5)

	// Early break stops iteration.
	var first []string
	for v := range idx.EntriesWithPrefix("usr") {
		first = append(first, v.Path())
		break
	}
	assert.Equal(t, []string{"usr"}, first)
}

func TestBuildDoesNotReorderInput(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	before := slices.Clone(entries)
	Build(Meta{}, entries)
	assert.Equal(t, before, entries)
}

func TestEmptyIndex(t *testing.T) {
	t.Parallel()

	idx := mustLoad(t, Build(Meta{Package: "empty"}, nil))
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, paths(idx.Entries()))
	assert.Empty(t, paths(idx.EntriesWithPrefix("a")))
	_, ok := idx.PayloadHash()
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(nil)
	require.Error(t, err)

	// Root offset pointing past the buffer must not panic.
	_, err = Load([]byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0})
	require.Error(t, err)
}
