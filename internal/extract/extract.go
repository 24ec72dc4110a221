// Package extract writes decoded archive entries into a directory.
//
// All filesystem access goes through an os.Root, so no operation can follow
// a symlink out of the destination. Entry names and symlink targets are
// validated before anything is created, and files are written to a temp file
// and renamed into place so a pre-existing symlink at the destination is
// replaced rather than written through.
package extract

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/sizing"
)

// Policy decides what happens to an entry that fails path validation.
type Policy uint8

const (
	// PolicyAbort stops extraction at the first unsafe entry.
	PolicyAbort Policy = iota
	// PolicySkip logs the unsafe entry, records it, and continues.
	PolicySkip
)

func (p Policy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// maxLinkTarget bounds symlink target reads.
const maxLinkTarget = 4096

// maxLinkHops bounds symlink resolution while locating an entry's parent.
const maxLinkHops = 40

// Skipped records an entry that was not extracted.
type Skipped struct {
	Name string
	Err  error
}

// Extractor writes entries beneath a root directory.
type Extractor struct {
	root          *os.Root
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
	changeOwner   bool
	policy        Policy
	logger        *slog.Logger
	progress      rpmtype.ProgressFunc

	skipped   []Skipped
	dirs      []dirMeta
	links     map[linkKey]*linkGroup
	filesDone int
	bytesDone uint64
}

type dirMeta struct {
	name string
	hdr  cpio.Header
}

// linkKey identifies the members of a hard link set within one archive.
type linkKey struct {
	devMajor, devMinor, inode uint32
}

type linkGroup struct {
	pending []string
	target  string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOverwrite allows replacing existing files.
// By default, existing files are skipped.
func WithOverwrite(overwrite bool) Option {
	return func(x *Extractor) {
		x.overwrite = overwrite
	}
}

// WithPreserveMode applies permission bits from the archive.
// By default, files keep the modes they are created with.
func WithPreserveMode(preserve bool) Option {
	return func(x *Extractor) {
		x.preserveMode = preserve
	}
}

// WithPreserveTimes applies modification times from the archive.
func WithPreserveTimes(preserve bool) Option {
	return func(x *Extractor) {
		x.preserveTimes = preserve
	}
}

// WithChangeOwner applies numeric ownership from the archive. This usually
// requires privileges.
func WithChangeOwner(change bool) Option {
	return func(x *Extractor) {
		x.changeOwner = change
	}
}

// WithPolicy sets the unsafe-entry policy. The default is PolicyAbort.
func WithPolicy(p Policy) Option {
	return func(x *Extractor) {
		x.policy = p
	}
}

// WithLogger sets the logger for extraction events.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// WithProgress sets a callback receiving one event per extracted entry.
func WithProgress(fn rpmtype.ProgressFunc) Option {
	return func(x *Extractor) {
		x.progress = fn
	}
}

// New creates an Extractor writing beneath root. The caller keeps
// ownership of root.
func New(root *os.Root, opts ...Option) *Extractor {
	x := &Extractor{root: root, links: make(map[linkKey]*linkGroup)}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Extractor) log() *slog.Logger {
	if x.logger != nil {
		return x.logger
	}
	return slog.New(slog.DiscardHandler)
}

// Skipped returns the entries skipped under PolicySkip.
func (x *Extractor) Skipped() []Skipped {
	return slices.Clone(x.skipped)
}

// Extract writes one entry. content supplies the entry data and must yield
// hdr.FileSize bytes.
func (x *Extractor) Extract(hdr *cpio.Header, content io.Reader) error {
	name, err := CleanName(hdr.Name)
	if err != nil {
		return x.reject(hdr.Name, err)
	}
	parent, err := x.resolveDir(path.Dir(name))
	if err != nil {
		return x.reject(hdr.Name, err)
	}

	switch {
	case hdr.IsDir():
		err = x.extractDir(name, hdr)
	case hdr.IsSymlink():
		err = x.extractSymlink(name, path.Join(parent, path.Base(name)), hdr, content)
	case hdr.IsRegular():
		err = x.extractRegular(name, hdr, content)
	default:
		x.log().Debug("skipping special file", "path", name, "mode", fmt.Sprintf("%o", hdr.Mode))
		return nil
	}
	if errors.Is(err, rpmtype.ErrUnsafePath) {
		return x.reject(hdr.Name, err)
	}
	if err != nil {
		return err
	}

	x.filesDone++
	x.bytesDone += uint64(hdr.FileSize)
	if x.progress != nil {
		x.progress(rpmtype.ProgressEvent{
			Stage:     rpmtype.StageExtracting,
			Path:      name,
			BytesDone: x.bytesDone,
			FilesDone: x.filesDone,
		})
	}
	return nil
}

// Finish completes deferred work: hard links whose content never arrived
// become empty files, and directory modes and times are applied deepest first.
func (x *Extractor) Finish() error {
	for _, g := range x.links {
		if g.target != "" {
			continue
		}
		for _, name := range g.pending {
			if skip, err := x.existing(name); err != nil {
				return err
			} else if skip {
				continue
			}
			if err := x.writeFile(name, &cpio.Header{Mode: cpio.ModeRegular | 0o644}, strings.NewReader("")); err != nil {
				return err
			}
		}
	}
	clear(x.links)

	slices.SortFunc(x.dirs, func(a, b dirMeta) int { return len(b.name) - len(a.name) })
	for _, d := range x.dirs {
		if err := x.applyMeta(d.name, &d.hdr, true); err != nil {
			return err
		}
	}
	x.dirs = nil
	return nil
}

func (x *Extractor) reject(name string, err error) error {
	if x.policy == PolicySkip {
		x.log().Warn("skipping unsafe entry", "path", name, "error", err)
		x.skipped = append(x.skipped, Skipped{Name: name, Err: err})
		return nil
	}
	return err
}

func (x *Extractor) extractDir(name string, hdr *cpio.Header) error {
	if name == "." {
		return nil
	}
	if err := x.root.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", name, err)
	}
	x.dirs = append(x.dirs, dirMeta{name: name, hdr: *hdr})
	return nil
}

// extractSymlink creates a symlink at name. The target is checked against
// resolved, the location name refers to once existing links are followed.
func (x *Extractor) extractSymlink(name, resolved string, hdr *cpio.Header, content io.Reader) error {
	if name == "." {
		return unsafePath(hdr.Name, "symlink at root")
	}
	raw, err := sizing.ReadAllWithLimit(io.LimitReader(content, int64(hdr.FileSize)), maxLinkTarget,
		rpmtype.Errorf(rpmtype.SectionExtract, rpmtype.ErrOversizedField, "%s: link target", name))
	if err != nil {
		return err
	}
	if uint64(len(raw)) != uint64(hdr.FileSize) {
		return fmt.Errorf("read link target %s: %w", name, io.ErrUnexpectedEOF)
	}
	target := string(raw)
	if err := CheckLinkTarget(resolved, target); err != nil {
		return err
	}

	if err := x.mkParent(name); err != nil {
		return err
	}
	if skip, err := x.existing(name); err != nil || skip {
		return err
	}

	tmp, err := tempName(name)
	if err != nil {
		return err
	}
	if err := x.root.Symlink(target, tmp); err != nil {
		return fmt.Errorf("create symlink %s: %w", name, err)
	}
	if x.changeOwner {
		if err := x.root.Lchown(tmp, int(hdr.UID), int(hdr.GID)); err != nil {
			_ = x.root.Remove(tmp) //nolint:errcheck // best-effort cleanup
			return fmt.Errorf("lchown %s: %w", name, err)
		}
	}
	if err := x.root.Rename(tmp, name); err != nil {
		_ = x.root.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", name, err)
	}
	x.log().Debug("extracted symlink", "path", name, "target", target)
	return nil
}

func (x *Extractor) extractRegular(name string, hdr *cpio.Header, content io.Reader) error {
	if name == "." {
		return unsafePath(hdr.Name, "file at root")
	}
	if hdr.NLink > 1 {
		return x.extractHardlink(name, hdr, content)
	}
	if err := x.mkParent(name); err != nil {
		return err
	}
	if skip, err := x.existing(name); err != nil || skip {
		return err
	}
	return x.writeFile(name, hdr, content)
}

// extractHardlink handles newc hard link sets: every member but one carries
// no data, and the data-carrying member may come last.
func (x *Extractor) extractHardlink(name string, hdr *cpio.Header, content io.Reader) error {
	key := linkKey{devMajor: hdr.DevMajor, devMinor: hdr.DevMinor, inode: hdr.Inode}
	g := x.links[key]
	if g == nil {
		g = &linkGroup{}
		x.links[key] = g
	}
	if err := x.mkParent(name); err != nil {
		return err
	}

	if g.target != "" {
		return x.link(g.target, name)
	}
	if hdr.FileSize == 0 {
		g.pending = append(g.pending, name)
		return nil
	}

	if skip, err := x.existing(name); err != nil || skip {
		return err
	}
	if err := x.writeFile(name, hdr, content); err != nil {
		return err
	}
	g.target = name
	for _, p := range g.pending {
		if err := x.link(name, p); err != nil {
			return err
		}
	}
	g.pending = nil
	return nil
}

func (x *Extractor) link(target, name string) error {
	if skip, err := x.existing(name); err != nil || skip {
		return err
	}
	if err := x.root.Link(target, name); err != nil {
		return fmt.Errorf("link %s to %s: %w", name, target, err)
	}
	return nil
}

func (x *Extractor) writeFile(name string, hdr *cpio.Header, content io.Reader) error {
	tmp, err := tempName(name)
	if err != nil {
		return err
	}
	f, err := x.root.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	n, err := io.Copy(f, io.LimitReader(content, int64(hdr.FileSize)))
	if err == nil && uint64(n) != uint64(hdr.FileSize) { //nolint:gosec // n is non-negative
		err = fmt.Errorf("%s: %w", name, io.ErrUnexpectedEOF)
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close temp file: %w", closeErr)
	}
	if err == nil {
		err = x.applyMeta(tmp, hdr, false)
	}
	if err == nil {
		if renameErr := x.root.Rename(tmp, name); renameErr != nil {
			err = fmt.Errorf("rename to %s: %w", name, renameErr)
		}
	}
	if err != nil {
		_ = x.root.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return err
	}
	x.log().Debug("extracted file", "path", name, "size", hdr.FileSize)
	return nil
}

func (x *Extractor) applyMeta(name string, hdr *cpio.Header, isDir bool) error {
	if x.changeOwner {
		if err := x.root.Chown(name, int(hdr.UID), int(hdr.GID)); err != nil {
			return fmt.Errorf("chown %s: %w", name, err)
		}
	}
	if x.preserveMode {
		if err := x.root.Chmod(name, hdr.FileMode()&(os.ModePerm|os.ModeSetuid|os.ModeSetgid|os.ModeSticky)); err != nil {
			return fmt.Errorf("chmod %s: %w", name, err)
		}
	}
	if x.preserveTimes && (hdr.MTime != 0 || !isDir) {
		mt := hdr.ModTime()
		if err := x.root.Chtimes(name, mt, mt); err != nil {
			return fmt.Errorf("chtimes %s: %w", name, err)
		}
	}
	return nil
}

// resolveDir follows symlinks already present under the root and returns
// the physical location of dir relative to the root. Components that do not
// exist yet are taken literally. A link that leads outside the root fails
// with ErrUnsafePath.
func (x *Extractor) resolveDir(dir string) (string, error) {
	if dir == "." {
		return ".", nil
	}
	pending := strings.Split(dir, "/")
	resolved := "."
	hops := 0
	for len(pending) > 0 {
		part := pending[0]
		pending = pending[1:]
		switch part {
		case "", ".":
			continue
		case "..":
			if resolved == "." {
				return "", unsafePath(dir, "resolves outside root")
			}
			resolved = path.Dir(resolved)
			continue
		}

		next := path.Join(resolved, part)
		info, err := x.root.Lstat(next)
		if errors.Is(err, os.ErrNotExist) {
			resolved = next
			continue
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", next, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxLinkHops {
			return "", unsafePath(dir, "too many levels of symbolic links")
		}
		target, err := x.root.Readlink(next)
		if err != nil {
			return "", fmt.Errorf("readlink %s: %w", next, err)
		}
		if target == "" || path.IsAbs(target) || filepath.IsAbs(target) {
			return "", unsafePath(dir, "symlink "+next+" leaves root")
		}
		pending = append(strings.Split(filepath.ToSlash(target), "/"), pending...)
	}
	return resolved, nil
}

func (x *Extractor) mkParent(name string) error {
	dir := path.Dir(name)
	if dir == "." {
		return nil
	}
	if err := x.root.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// existing reports whether name should be left alone because it exists and
// overwriting is disabled. Existing directories are never replaced.
func (x *Extractor) existing(name string) (skip bool, err error) {
	info, err := x.root.Lstat(name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s: %w", name, os.ErrExist)
	}
	if !x.overwrite {
		x.log().Debug("skipping existing file", "path", name)
		return true, nil
	}
	return false, nil
}

func tempName(name string) (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return path.Join(path.Dir(name), ".rpm-"+hex.EncodeToString(b[:])), nil
}

// All extracts every entry of an archive and then calls Finish.
func (x *Extractor) All(r *cpio.Reader) error {
	for {
		hdr, err := r.Next()
		if errors.Is(err, io.EOF) {
			return x.Finish()
		}
		if err != nil {
			return err
		}
		if err := x.Extract(hdr, r); err != nil {
			return err
		}
	}
}
