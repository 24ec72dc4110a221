package rpm

import (
	"bytes"
	"crypto/sha256"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	pkg := openBytes(t, buildBytes(t, demoBuilder("xz")))
	data, err := pkg.BuildIndex()
	require.NoError(t, err)

	idx, err := LoadIndex(data)
	require.NoError(t, err)
	assert.Equal(t, "demo-1:1.0-1.noarch", idx.Package())
	assert.Equal(t, "xz", idx.Compressor())
	assert.Equal(t, 4, idx.Len())

	rc, err := pkg.PayloadReader()
	require.NoError(t, err)
	archive, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, uint64(len(archive)), idx.PayloadSize())
	sum := sha256.Sum256(archive)
	hash, ok := idx.PayloadHash()
	require.True(t, ok)
	assert.Equal(t, sum[:], hash)

	e, ok := idx.Lookup("usr/share/demo/hello.txt")
	require.True(t, ok)
	assert.Equal(t, uint64(len(helloContent)), e.Size())
	content := archive[e.DataOffset() : e.DataOffset()+e.Size()]
	assert.Equal(t, helloContent, string(content))
	fileSum := sha256.Sum256([]byte(helloContent))
	assert.Equal(t, fileSum[:], e.Hash())
	assert.True(t, e.ModTime().Equal(fileTime))

	link, ok := idx.Lookup("usr/bin/demo")
	require.True(t, ok)
	assert.Equal(t, "../share/demo/hello.txt", link.LinkTarget())
	assert.Empty(t, link.Hash())

	_, ok = idx.Lookup("./usr/bin/demo")
	assert.False(t, ok)

	var under []string
	for v := range idx.EntriesWithPrefix("usr/share/") {
		under = append(under, v.Path())
	}
	assert.Equal(t, []string{"usr/share/demo", "usr/share/demo/hello.txt"}, under)
}

func TestBuildIndexIsDeterministic(t *testing.T) {
	t.Parallel()

	data := buildBytes(t, demoBuilder("gzip"))
	first, err := openBytes(t, data).BuildIndex()
	require.NoError(t, err)
	second, err := openBytes(t, data).BuildIndex()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestBuildIndexRejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	_, err := openBytes(t, unsafePackage(t)).BuildIndex()
	require.ErrorIs(t, err, ErrUnsafePath)
}
