package rpm

import (
	"bytes"
	"cmp"
	"crypto/md5"  //nolint:gosec // SIGTAG_MD5 is defined as MD5
	"crypto/sha1" //nolint:gosec // SIGTAG_SHA1 is defined as SHA-1
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"slices"
	"strconv"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/rpm/internal/compress"
	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/header"
	"github.com/meigma/rpm/internal/lead"
	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/tag"
)

// PackageType is the lead package type.
type PackageType = lead.Type

// Config describes the package a Builder writes. Only Name, Version, and
// Release are required. Zero values of the other fields are either omitted
// from the header or replaced by the documented default; none are derived
// from the build machine, so output is reproducible.
type Config struct {
	Name    string  `mapstructure:"name"`
	Version string  `mapstructure:"version"`
	Release string  `mapstructure:"release"`
	Epoch   *uint32 `mapstructure:"epoch"`

	Summary     string `mapstructure:"summary"`
	Description string `mapstructure:"description"`
	Group       string `mapstructure:"group"`
	License     string `mapstructure:"license"`
	URL         string `mapstructure:"url"`
	Vendor      string `mapstructure:"vendor"`
	Packager    string `mapstructure:"packager"`
	BuildHost   string `mapstructure:"build_host"`
	// BuildTime is omitted when zero.
	BuildTime time.Time `mapstructure:"build_time"`
	SourceRPM string    `mapstructure:"source_rpm"`

	// OS defaults to "linux" and Arch to "noarch".
	OS   string      `mapstructure:"os"`
	Arch string      `mapstructure:"arch"`
	Type PackageType `mapstructure:"type"`

	// Compressor defaults to gzip. A CompressionLevel of zero selects the
	// codec default.
	Compressor       string `mapstructure:"compressor"`
	CompressionLevel int    `mapstructure:"compression_level"`

	Provides []Dependency `mapstructure:"provides"`
	Requires []Dependency `mapstructure:"requires"`

	// Tags are extra metadata entries. They replace generated entries with
	// the same tag.
	Tags []HeaderEntry `mapstructure:"-"`
}

// FileSpec describes one payload file.
//
// Exactly one source applies, checked in this order: Dir, LinkTarget,
// Content, Source. A spec with none of them is an empty regular file.
type FileSpec struct {
	// Path is the absolute install path, such as "/usr/bin/demo".
	Path string `mapstructure:"path"`

	Dir        bool   `mapstructure:"dir"`
	LinkTarget string `mapstructure:"link_target"`
	Content    []byte `mapstructure:"-"`
	// Source is a local file whose content, type, mode, and mtime are used
	// unless overridden.
	Source string `mapstructure:"source"`

	// Mode holds permission bits. Zero means the source's bits, or 0644 for
	// files, 0755 for directories, and 0777 for symlinks.
	Mode  fs.FileMode `mapstructure:"mode"`
	Owner string      `mapstructure:"owner"`
	Group string      `mapstructure:"group"`
	UID   uint32      `mapstructure:"uid"`
	GID   uint32      `mapstructure:"gid"`
	// MTime zero means the source's mtime, or the epoch.
	MTime time.Time `mapstructure:"mtime"`
	// Inode zero means assigned by position in path order.
	Inode uint32 `mapstructure:"inode"`
	// Flags is the FileFlags value, such as FileConfig.
	Flags uint32 `mapstructure:"flags"`
}

// File flags stored in FileFlags.
const (
	FileConfig    uint32 = 1 << 0
	FileDoc       uint32 = 1 << 1
	FileMissingOK uint32 = 1 << 3
	FileNoReplace uint32 = 1 << 4
	FileGhost     uint32 = 1 << 6
	FileLicense   uint32 = 1 << 7
)

// Builder assembles a package.
type Builder struct {
	cfg      Config
	files    []FileSpec
	logger   *slog.Logger
	progress ProgressFunc
}

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// BuildWithLogger sets a logger for build events.
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// BuildWithProgress sets a callback receiving collection and archiving events.
func BuildWithProgress(fn ProgressFunc) BuildOption {
	return func(b *Builder) {
		b.progress = fn
	}
}

// NewBuilder returns a Builder for cfg. Config is validated by Write.
func NewBuilder(cfg Config, opts ...BuildOption) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.New(slog.DiscardHandler)
}

// AddFile adds a file to the payload.
func (b *Builder) AddFile(f FileSpec) *Builder {
	b.files = append(b.files, f)
	return b
}

// buildFile is a resolved FileSpec.
type buildFile struct {
	path    string
	hdr     cpio.Header
	content []byte
	link    string
	owner   string
	group   string
	flags   uint32
}

func invalid(format string, args ...any) error {
	return rpmtype.Errorf(rpmtype.SectionBuild, rpmtype.ErrInvalidConfig, format, args...)
}

// Write validates the configuration, builds the payload and both headers,
// and writes the package to w: lead, signature header padded to 8 bytes,
// metadata header, compressed payload.
func (b *Builder) Write(w io.Writer) error {
	reg := compress.Default()
	compressor := compress.Normalize(b.cfg.Compressor)
	if err := b.validate(reg, compressor); err != nil {
		return err
	}

	files, err := b.collect()
	if err != nil {
		return err
	}

	payload, archive, err := b.archive(reg, compressor, files)
	if err != nil {
		return err
	}

	meta, err := b.metadata(files, compressor, payload, archive).AppendBinary(nil,
		header.EncodeSorted(), header.WithRegion(tag.HeaderImmutable))
	if err != nil {
		return err
	}
	sig, err := signature(meta, payload.Bytes(), archive.size).AppendBinary(nil,
		header.EncodeSorted(), header.WithRegion(tag.HeaderSignatures), header.WithTrailingPad(8))
	if err != nil {
		return err
	}

	l, err := lead.New(truncate(b.nevr(), lead.NameSize-1), b.cfg.Type, archNumber(b.cfg.arch()))
	if err != nil {
		return err
	}
	out, err := l.AppendBinary(make([]byte, 0, lead.Size+len(sig)+len(meta)))
	if err != nil {
		return err
	}
	out = append(out, sig...)
	out = append(out, meta...)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write package headers: %w", err)
	}
	if _, err := payload.WriteTo(w); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	b.log().Info("wrote package",
		"package", b.nevr()+"."+b.cfg.arch(),
		"files", len(files),
		"compressor", compressor,
		"archive_size", archive.size,
	)
	return nil
}

func (b *Builder) validate(reg *compress.Registry, compressor string) error {
	switch {
	case b.cfg.Name == "":
		return invalid("name is required")
	case b.cfg.Version == "":
		return invalid("version is required")
	case b.cfg.Release == "":
		return invalid("release is required")
	}
	for _, s := range []string{b.cfg.Name, b.cfg.Version, b.cfg.Release, b.cfg.Arch} {
		if slices.ContainsFunc([]byte(s), func(c byte) bool { return c <= ' ' || c == 0x7f }) {
			return invalid("%q contains whitespace or control characters", s)
		}
	}
	if _, ok := reg.Lookup(compressor); !ok {
		return rpmtype.Errorf(rpmtype.SectionBuild, rpmtype.ErrUnsupportedCompression, "%s", compressor)
	}
	if bt := b.cfg.BuildTime; !bt.IsZero() && (bt.Unix() < 0 || bt.Unix() > math.MaxUint32) {
		return invalid("build time %s out of range", bt)
	}
	if b.cfg.Type != lead.Binary && b.cfg.Type != lead.Source {
		return invalid("package type %d", uint16(b.cfg.Type))
	}

	seen := make(map[string]bool, len(b.files))
	for _, f := range b.files {
		if f.Path == "" || f.Path[0] != '/' || path.Clean(f.Path) != f.Path || f.Path == "/" {
			return invalid("file path %q must be absolute and clean", f.Path)
		}
		if seen[f.Path] {
			return invalid("duplicate file %s", f.Path)
		}
		seen[f.Path] = true
		if f.Dir && (f.LinkTarget != "" || f.Content != nil) {
			return invalid("%s: directory with content", f.Path)
		}
	}
	return nil
}

func (c Config) arch() string {
	if c.Arch == "" {
		return "noarch"
	}
	return c.Arch
}

func (b *Builder) nevr() string {
	return b.cfg.Name + "-" + b.cfg.Version + "-" + b.cfg.Release
}

// evr renders [epoch:]version-release.
func (b *Builder) evr() string {
	evr := b.cfg.Version + "-" + b.cfg.Release
	if b.cfg.Epoch != nil {
		evr = strconv.FormatUint(uint64(*b.cfg.Epoch), 10) + ":" + evr
	}
	return evr
}

// collect resolves every FileSpec and returns them in path order with
// inodes assigned.
func (b *Builder) collect() ([]buildFile, error) {
	files := make([]buildFile, 0, len(b.files))
	for i, spec := range b.files {
		f, err := resolveFile(spec)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		b.log().Debug("collected file", "path", f.path, "size", f.hdr.FileSize)
		if b.progress != nil {
			b.progress(ProgressEvent{Stage: StageCollecting, Path: f.path, FilesDone: i + 1, FilesTotal: len(b.files)})
		}
	}
	slices.SortFunc(files, func(a, b buildFile) int { return cmp.Compare(a.path, b.path) })
	for i := range files {
		if files[i].hdr.Inode == 0 {
			files[i].hdr.Inode = uint32(i + 1) //nolint:gosec // file count is bounded by memory
		}
	}
	return files, nil
}

func resolveFile(spec FileSpec) (buildFile, error) {
	f := buildFile{
		path:  spec.Path,
		owner: cmp.Or(spec.Owner, "root"),
		group: cmp.Or(spec.Group, "root"),
		flags: spec.Flags,
	}
	var perm fs.FileMode
	var mtime time.Time

	switch {
	case spec.Dir:
		f.hdr.Mode = cpio.ModeDir
		perm = 0o755
	case spec.LinkTarget != "":
		f.hdr.Mode = cpio.ModeSymlink
		f.link = spec.LinkTarget
		f.content = []byte(spec.LinkTarget)
		perm = 0o777
	case spec.Content != nil:
		f.hdr.Mode = cpio.ModeRegular
		f.content = spec.Content
		perm = 0o644
	case spec.Source != "":
		info, err := os.Lstat(spec.Source)
		if err != nil {
			return buildFile{}, fmt.Errorf("%s: %w", spec.Path, err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			if f.link, err = os.Readlink(spec.Source); err != nil {
				return buildFile{}, fmt.Errorf("%s: %w", spec.Path, err)
			}
			f.content = []byte(f.link)
		}
		hdr, err := cpio.HeaderFromFileInfo("", info, f.link)
		if err != nil {
			return buildFile{}, fmt.Errorf("%s: %w", spec.Path, err)
		}
		if hdr.IsRegular() {
			if f.content, err = os.ReadFile(spec.Source); err != nil {
				return buildFile{}, fmt.Errorf("%s: %w", spec.Path, err)
			}
		}
		// Keep only what describes the file itself; inode, device, link
		// count, and ownership come from the spec.
		f.hdr.Mode = hdr.Mode &^ (cpio.ModePerm | cpio.ModeSetuid | cpio.ModeSetgid | cpio.ModeSticky)
		f.hdr.RDevMajor, f.hdr.RDevMinor = hdr.RDevMajor, hdr.RDevMinor
		perm = info.Mode() & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
		mtime = info.ModTime()
	default:
		f.hdr.Mode = cpio.ModeRegular
		perm = 0o644
	}

	if spec.Mode != 0 {
		perm = spec.Mode
	}
	f.hdr.Mode |= cpio.UnixMode(perm&(fs.ModePerm|fs.ModeSetuid|fs.ModeSetgid|fs.ModeSticky)) &^ cpio.ModeTypeMask
	if !spec.MTime.IsZero() {
		mtime = spec.MTime
	}
	if mt := mtime.Unix(); !mtime.IsZero() && mt > 0 && mt <= math.MaxUint32 {
		f.hdr.MTime = uint32(mt) //nolint:gosec // checked above
	}
	if uint64(len(f.content)) > math.MaxUint32 {
		return buildFile{}, rpmtype.Errorf(rpmtype.SectionBuild, rpmtype.ErrOversizedField, "%s", spec.Path)
	}

	f.hdr.Name = "." + spec.Path
	f.hdr.FileSize = uint32(len(f.content)) //nolint:gosec // checked above
	f.hdr.UID = spec.UID
	f.hdr.GID = spec.GID
	f.hdr.Inode = spec.Inode
	f.hdr.NLink = 1
	if f.hdr.IsDir() {
		f.hdr.NLink = 2
	}
	return f, nil
}

// archiveInfo describes the uncompressed cpio archive.
type archiveInfo struct {
	size       uint64
	digest     digest.Digest
	fileDigest map[string]string
}

// archive writes the cpio payload through the compressor. It returns the
// compressed bytes and facts about the uncompressed archive.
func (b *Builder) archive(reg *compress.Registry, compressor string, files []buildFile) (*bytes.Buffer, archiveInfo, error) {
	var payload bytes.Buffer
	enc, err := reg.Encode(compressor, &payload, b.cfg.CompressionLevel)
	if err != nil {
		return nil, archiveInfo{}, err
	}
	digester := digest.SHA256.Digester()
	aw := cpio.NewWriter(io.MultiWriter(enc, digester.Hash()))

	info := archiveInfo{fileDigest: make(map[string]string, len(files))}
	var done uint64
	for i, f := range files {
		if err := aw.WriteEntry(&f.hdr, f.content); err != nil {
			return nil, archiveInfo{}, fmt.Errorf("archive %s: %w", f.path, err)
		}
		if f.hdr.IsRegular() {
			info.fileDigest[f.path] = digest.FromBytes(f.content).Encoded()
		}
		done += uint64(len(f.content))
		if b.progress != nil {
			b.progress(ProgressEvent{Stage: StageArchiving, Path: f.path, BytesDone: done, FilesDone: i + 1, FilesTotal: len(files)})
		}
	}
	if err := aw.Close(); err != nil {
		return nil, archiveInfo{}, err
	}
	if err := enc.Close(); err != nil {
		return nil, archiveInfo{}, rpmtype.Wrap(rpmtype.SectionBuild, rpmtype.ErrCompression, err, compressor)
	}
	info.size = aw.Written()
	info.digest = digester.Digest()
	return &payload, info, nil
}

// metadata builds the metadata header.
func (b *Builder) metadata(files []buildFile, compressor string, payload *bytes.Buffer, archive archiveInfo) *Header {
	c := b.cfg
	h := header.New()
	h.Set(tag.HeaderI18NTable, header.StringArray{"C"})
	h.Set(tag.Name, header.String(c.Name))
	h.Set(tag.Version, header.String(c.Version))
	h.Set(tag.Release, header.String(c.Release))
	if c.Epoch != nil {
		h.Set(tag.Epoch, header.Int32{*c.Epoch})
	}
	h.Set(tag.Summary, header.I18NString{c.Summary})
	h.Set(tag.Description, header.I18NString{c.Description})
	if !c.BuildTime.IsZero() {
		h.Set(tag.BuildTime, header.Int32{uint32(c.BuildTime.Unix())}) //nolint:gosec // validated
	}
	setString(h, tag.BuildHost, c.BuildHost)
	setString(h, tag.Vendor, c.Vendor)
	setString(h, tag.License, c.License)
	setString(h, tag.Packager, c.Packager)
	if c.Group != "" {
		h.Set(tag.Group, header.I18NString{c.Group})
	}
	setString(h, tag.URL, c.URL)
	h.Set(tag.OS, header.String(cmp.Or(c.OS, "linux")))
	h.Set(tag.Arch, header.String(c.arch()))
	setString(h, tag.SourceRPM, c.SourceRPM)
	h.Set(tag.Encoding, header.String("utf-8"))

	var total uint64
	for _, f := range files {
		if f.hdr.IsRegular() {
			total += uint64(f.hdr.FileSize)
		}
	}
	if total > math.MaxUint32 {
		h.Set(tag.LongSize, header.Int64{total})
	} else {
		h.Set(tag.Size, header.Int32{uint32(total)})
	}

	if len(files) > 0 {
		setFileList(h, files, archive.fileDigest)
	}

	provides := slices.Clone(c.Provides)
	if !slices.ContainsFunc(provides, func(d Dependency) bool { return d.Name == c.Name }) {
		provides = append(provides, Dependency{Name: c.Name, Flags: DepEqual, Version: b.evr()})
	}
	setDependencies(h, tag.ProvideName, tag.ProvideFlags, tag.ProvideVersion, provides)
	setDependencies(h, tag.RequireName, tag.RequireFlags, tag.RequireVersion, c.Requires)

	h.Set(tag.PayloadFormat, header.String("cpio"))
	h.Set(tag.PayloadCompressor, header.String(compressor))
	if c.CompressionLevel > 0 {
		h.Set(tag.PayloadFlags, header.String(strconv.Itoa(c.CompressionLevel)))
	}
	h.Set(tag.PayloadDigest, header.StringArray{digest.FromBytes(payload.Bytes()).Encoded()})
	h.Set(tag.PayloadDigestAlgo, header.Int32{tag.DigestSHA256})
	h.Set(tag.PayloadDigestAlt, header.StringArray{archive.digest.Encoded()})

	for _, e := range c.Tags {
		h.Set(e.Tag, e.Value)
	}
	return h
}

func setString(h *Header, t uint32, s string) {
	if s != "" {
		h.Set(t, header.String(s))
	}
}

func setFileList(h *Header, files []buildFile, digests map[string]string) {
	n := len(files)
	var (
		sizes    = make(header.Int32, n)
		modes    = make(header.Int16, n)
		rdevs    = make(header.Int16, n)
		mtimes   = make(header.Int32, n)
		sums     = make(header.StringArray, n)
		links    = make(header.StringArray, n)
		flags    = make(header.Int32, n)
		users    = make(header.StringArray, n)
		groups   = make(header.StringArray, n)
		verify   = make(header.Int32, n)
		devices  = make(header.Int32, n)
		inodes   = make(header.Int32, n)
		langs    = make(header.StringArray, n)
		dirIndex = make(header.Int32, n)
		bases    = make(header.StringArray, n)
		dirs     header.StringArray
	)
	dirPos := make(map[string]uint32)
	for i, f := range files {
		sizes[i] = f.hdr.FileSize
		modes[i] = uint16(f.hdr.Mode)                                //nolint:gosec // mode fits 16 bits
		rdevs[i] = uint16(f.hdr.RDevMajor<<8 | f.hdr.RDevMinor&0xff) //nolint:gosec // legacy 16-bit rdev
		mtimes[i] = f.hdr.MTime
		sums[i] = digests[f.path]
		links[i] = f.link
		flags[i] = f.flags
		users[i] = f.owner
		groups[i] = f.group
		verify[i] = math.MaxUint32
		devices[i] = 1
		inodes[i] = f.hdr.Inode

		dir, base := path.Split(f.path)
		pos, ok := dirPos[dir]
		if !ok {
			pos = uint32(len(dirs)) //nolint:gosec // bounded by file count
			dirPos[dir] = pos
			dirs = append(dirs, dir)
		}
		dirIndex[i] = pos
		bases[i] = base
	}

	h.Set(tag.FileSizes, sizes)
	h.Set(tag.FileModes, modes)
	h.Set(tag.FileRdevs, rdevs)
	h.Set(tag.FileMTimes, mtimes)
	h.Set(tag.FileDigests, sums)
	h.Set(tag.FileLinkTos, links)
	h.Set(tag.FileFlags, flags)
	h.Set(tag.FileUserName, users)
	h.Set(tag.FileGroupName, groups)
	h.Set(tag.FileVerifyFlags, verify)
	h.Set(tag.FileDevices, devices)
	h.Set(tag.FileInodes, inodes)
	h.Set(tag.FileLangs, langs)
	h.Set(tag.DirIndexes, dirIndex)
	h.Set(tag.BaseNames, bases)
	h.Set(tag.DirNames, dirs)
	h.Set(tag.FileDigestAlgo, header.Int32{tag.DigestSHA256})
}

func setDependencies(h *Header, nameTag, flagsTag, versionTag uint32, deps []Dependency) {
	if len(deps) == 0 {
		return
	}
	names := make(header.StringArray, len(deps))
	flags := make(header.Int32, len(deps))
	versions := make(header.StringArray, len(deps))
	for i, d := range deps {
		names[i], flags[i], versions[i] = d.Name, d.Flags, d.Version
	}
	h.Set(nameTag, names)
	h.Set(flagsTag, flags)
	h.Set(versionTag, versions)
}

// signature builds the signature header over the encoded metadata header
// and compressed payload.
func signature(meta, payload []byte, archiveSize uint64) *Header {
	h := header.New()

	sha1sum := sha1.Sum(meta) //nolint:gosec // format-defined digest
	h.Set(tag.SigSHA1, header.String(hex.EncodeToString(sha1sum[:])))
	h.Set(tag.SigSHA256, header.String(digest.FromBytes(meta).Encoded()))

	size := uint64(len(meta)) + uint64(len(payload))
	if size > math.MaxUint32 {
		h.Set(tag.SigLongSize, header.Int64{size})
	} else {
		h.Set(tag.SigSize, header.Int32{uint32(size)})
	}

	md := md5.New() //nolint:gosec // format-defined digest
	md.Write(meta)
	md.Write(payload)
	h.Set(tag.SigMD5, header.Binary(md.Sum(nil)))

	if archiveSize > math.MaxUint32 {
		h.Set(tag.SigLongArchiveSize, header.Int64{archiveSize})
	} else {
		h.Set(tag.SigPayloadSize, header.Int32{uint32(archiveSize)})
	}
	return h
}

// truncate cuts s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// archNumber maps an architecture to its lead number, following rpmrc's
// arch_canon table. Unknown architectures use 0.
func archNumber(arch string) uint16 {
	switch arch {
	case "noarch", "i386", "i486", "i586", "i686", "athlon", "x86_64", "amd64":
		return 1
	case "alpha":
		return 2
	case "sparc", "sparcv9", "sparc64":
		return 3
	case "mips", "mipsel":
		return 4
	case "ppc", "ppc64", "ppc64le":
		return 5
	case "m68k":
		return 6
	case "ia64":
		return 9
	case "armv7hl", "armv7l", "armv6l", "arm":
		return 12
	case "s390":
		return 14
	case "s390x":
		return 15
	case "aarch64":
		return 19
	default:
		return 0
	}
}
