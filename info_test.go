package rpm

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/rpm/internal/header"
	"github.com/meigma/rpm/internal/tag"
)

func TestInfo(t *testing.T) {
	t.Parallel()

	info := openBytes(t, buildBytes(t, demoBuilder("gzip"))).Info()

	assert.Equal(t, "demo", info.Name)
	assert.True(t, info.HasEpoch)
	assert.Equal(t, uint32(1), info.Epoch)
	assert.Equal(t, "1.0", info.Version)
	assert.Equal(t, "1", info.Release)
	assert.Equal(t, "noarch", info.Arch)
	assert.Equal(t, "linux", info.OS)
	assert.Equal(t, "MIT", info.License)
	assert.Equal(t, "A demo package", info.Summary)
	assert.Equal(t, "Demo package used in tests.", info.Description)
	assert.Equal(t, "builder.example.com", info.BuildHost)
	assert.Equal(t, buildTime, info.BuildTime)
	assert.Equal(t, uint64(len(helloContent)+len(confContent)), info.Size)
	assert.Equal(t, "cpio", info.Payload.Format)
	assert.Equal(t, "gzip", info.Payload.Compressor)
	assert.NotZero(t, info.Payload.Size)
	assert.Equal(t, "demo-1:1.0-1.noarch", info.NEVRA())

	assert.Equal(t, []Dependency{{Name: "demo", Flags: DepEqual, Version: "1:1.0-1"}}, info.Provides)
	assert.Equal(t, []Dependency{{Name: "bash", Flags: DepGreater | DepEqual, Version: "5.0"}}, info.Requires)
}

func TestInfoFiles(t *testing.T) {
	t.Parallel()

	files := openBytes(t, buildBytes(t, demoBuilder("none"))).Info().Files
	require.Len(t, files, 4)

	conf := files[0]
	assert.Equal(t, "/etc/demo.conf", conf.Path)
	assert.Equal(t, uint64(len(confContent)), conf.Size)
	assert.Equal(t, fs.FileMode(0o600), conf.Mode)
	assert.Equal(t, FileConfig, conf.Flags)
	assert.Equal(t, "root", conf.Owner)
	assert.Equal(t, fileTime, conf.MTime)
	sum := sha256.Sum256([]byte(confContent))
	assert.Equal(t, hex.EncodeToString(sum[:]), conf.Digest)
	assert.Equal(t, uint32(1), conf.Inode)

	link := files[1]
	assert.Equal(t, "/usr/bin/demo", link.Path)
	assert.Equal(t, fs.ModeSymlink|0o777, link.Mode)
	assert.Equal(t, "../share/demo/hello.txt", link.LinkTarget)
	assert.Empty(t, link.Digest)

	dir := files[2]
	assert.Equal(t, "/usr/share/demo", dir.Path)
	assert.Equal(t, fs.ModeDir|0o755, dir.Mode)

	hello := files[3]
	assert.Equal(t, "/usr/share/demo/hello.txt", hello.Path)
	assert.Equal(t, FileDoc, hello.Flags)
	assert.Equal(t, uint32(4), hello.Inode)
}

func TestInfoMissingTags(t *testing.T) {
	t.Parallel()

	pkg := openBytes(t, minimalPackage(t))
	info := pkg.Info()
	assert.Equal(t, "demo", info.Name)
	assert.False(t, info.HasEpoch)
	assert.True(t, info.BuildTime.IsZero())
	assert.Empty(t, info.Files)
	assert.Empty(t, info.Provides)
	assert.Equal(t, "demo--", info.NEVRA())
}

func TestInfoFileListToleratesShortArrays(t *testing.T) {
	t.Parallel()

	hdr := header.New()
	hdr.Set(tag.BaseNames, StringArray{"a", "b"})
	hdr.Set(tag.DirNames, StringArray{"/x/"})
	hdr.Set(tag.DirIndexes, Int32{0, 5})
	hdr.Set(tag.FileSizes, Int32{7})

	files := NewInfo(nil, hdr).Files
	require.Len(t, files, 2)
	assert.Equal(t, "/x/a", files[0].Path)
	assert.Equal(t, uint64(7), files[0].Size)
	assert.Equal(t, "b", files[1].Path)
	assert.Zero(t, files[1].Size)
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	s := openBytes(t, buildBytes(t, demoBuilder("gzip"))).Info().String()
	assert.Contains(t, s, "Name        : demo\n")
	assert.Contains(t, s, "Epoch       : 1\n")
	assert.Contains(t, s, "Group       : (none)\n")
	assert.Contains(t, s, "Build Date  : Tue Jan  2 03:04:05 2024\n")
	assert.Contains(t, s, "Payload     : cpio gzip\n")
	assert.Contains(t, s, "Description :\nDemo package used in tests.\n")
}

func TestParseDependency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Dependency
	}{
		{"bash", Dependency{Name: "bash"}},
		{"bash >= 5.0", Dependency{Name: "bash", Flags: DepGreater | DepEqual, Version: "5.0"}},
		{"glibc <= 2.38-1", Dependency{Name: "glibc", Flags: DepLess | DepEqual, Version: "2.38-1"}},
		{"a < 1", Dependency{Name: "a", Flags: DepLess, Version: "1"}},
		{"a > 1", Dependency{Name: "a", Flags: DepGreater, Version: "1"}},
		{"a = 1:2-3", Dependency{Name: "a", Flags: DepEqual, Version: "1:2-3"}},
	}
	for _, tt := range tests {
		got, err := ParseDependency(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String())
	}

	for _, bad := range []string{"", "a >=", "a ~ 1", "a = 1 extra"} {
		_, err := ParseDependency(bad)
		require.ErrorIs(t, err, ErrInvalidConfig, bad)
	}
}
