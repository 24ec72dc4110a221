package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
name = "demo"
version = "1.0"
release = "1"
summary = "Demo package"
license = "MIT"
compressor = "zstd"
requires = ["bash >= 5.0"]

[[files]]
path = "/usr/share/demo"
dir = true

[[files]]
path = "/usr/share/demo/README"
content = "read me\n"

[[files]]
path = "/usr/bin/demo"
source = "demo.sh"
mode = "0755"

[[files]]
path = "/usr/bin/demo-link"
link_target = "demo"
`

type workspace struct {
	dir string
	cfg string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level = \"error\"\nconcurrency = 2\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.toml"), []byte(manifest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.sh"), []byte("#!/bin/sh\necho demo\n"), 0o600))
	return &workspace{dir: dir, cfg: cfg}
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", w.cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (w *workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := w.run(t, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func (w *workspace) build(t *testing.T) string {
	t.Helper()
	pkg := w.path("demo.rpm")
	w.mustRun(t, "build", "-m", w.path("demo.toml"), "-o", pkg)
	return pkg
}

func TestBuildAndInfo(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	pkg := w.build(t)

	out := w.mustRun(t, "info", pkg, pkg)
	assert.Equal(t, 2, strings.Count(out, "Name        : demo\n"))
	assert.Contains(t, out, "Payload     : cpio zstd\n")

	out = w.mustRun(t, "info", "--json", pkg)
	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "demo", infos[0]["Name"])
}

func TestLs(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	pkg := w.build(t)

	out := w.mustRun(t, "ls", pkg)
	assert.Equal(t, "/usr/bin/demo\n/usr/bin/demo-link\n/usr/share/demo\n/usr/share/demo/README\n", out)

	out = w.mustRun(t, "ls", "-l", pkg)
	assert.Contains(t, out, "-rwxr-xr-x root     root")
	assert.Contains(t, out, "/usr/bin/demo-link -> demo\n")
}

func TestExtract(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	pkg := w.build(t)
	dest := w.path("root")

	out := w.mustRun(t, "extract", pkg, "-C", dest)
	assert.Contains(t, out, "extracted 4 entries")

	b, err := os.ReadFile(filepath.Join(dest, "usr/share/demo/README"))
	require.NoError(t, err)
	assert.Equal(t, "read me\n", string(b))
	fi, err := os.Stat(filepath.Join(dest, "usr/bin/demo"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())
	target, err := os.Readlink(filepath.Join(dest, "usr/bin/demo-link"))
	require.NoError(t, err)
	assert.Equal(t, "demo", target)
}

func TestRPM2CPIOAndCPIOList(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	pkg := w.build(t)
	archive := w.path("payload.cpio")

	w.mustRun(t, "rpm2cpio", pkg, "-o", archive)
	out := w.mustRun(t, "cpio", "list", archive)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], " ./usr/bin/demo"))
	assert.True(t, strings.HasPrefix(lines[0], "-rwxr-xr-x"))

	stdout := w.mustRun(t, "rpm2cpio", pkg)
	raw, err := os.ReadFile(archive)
	require.NoError(t, err)
	assert.Equal(t, string(raw), stdout)
}

func TestCPIOCreateAndExtract(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	src := w.path("tree")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub/file.txt"), []byte("content"), 0o640))
	require.NoError(t, os.Link(filepath.Join(src, "sub/file.txt"), filepath.Join(src, "hard.txt")))
	require.NoError(t, os.Symlink("sub/file.txt", filepath.Join(src, "link")))

	archive := w.path("tree.cpio.gz")
	w.mustRun(t, "cpio", "create", src, "-o", archive, "--compress", "gzip")

	out := w.mustRun(t, "cpio", "list", archive)
	assert.Contains(t, out, " ./sub/file.txt\n")
	assert.Contains(t, out, " ./hard.txt\n")

	dest := w.path("copy")
	w.mustRun(t, "cpio", "extract", archive, "-C", dest)

	b, err := os.ReadFile(filepath.Join(dest, "sub/file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))
	b, err = os.ReadFile(filepath.Join(dest, "hard.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))

	a, err := os.Stat(filepath.Join(dest, "sub/file.txt"))
	require.NoError(t, err)
	h, err := os.Stat(filepath.Join(dest, "hard.txt"))
	require.NoError(t, err)
	assert.True(t, os.SameFile(a, h))
	assert.Equal(t, os.FileMode(0o640), a.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dest, "link"))
	require.NoError(t, err)
	assert.Equal(t, "sub/file.txt", target)
}

func TestCPIORejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	junk := w.path("junk")
	require.NoError(t, os.WriteFile(junk, []byte("not an archive"), 0o600))
	_, err := w.run(t, "cpio", "list", junk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized archive format")
}

func TestIndex(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	pkg := w.build(t)
	idx := w.path("demo.idx")

	w.mustRun(t, "index", pkg, "-o", idx)
	out := w.mustRun(t, "index", "show", idx, "usr/share/")
	assert.Contains(t, out, "package demo-1.0-1.noarch, zstd payload")
	assert.Contains(t, out, "4 entries")
	assert.Contains(t, out, " usr/share/demo/README\n")
	assert.NotContains(t, out, "usr/bin/demo")
}

func TestMissingConfigFile(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	w.cfg = w.path("missing.toml")
	_, err := w.run(t, "ls", w.path("nothing.rpm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
