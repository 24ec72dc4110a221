package rpm

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/tag"
)

// Info is a summary of a package's headers.
type Info struct {
	Name        string
	Epoch       uint32
	HasEpoch    bool
	Version     string
	Release     string
	Arch        string
	OS          string
	Group       string
	Size        uint64
	License     string
	SourceRPM   string
	BuildTime   time.Time
	BuildHost   string
	URL         string
	Vendor      string
	Packager    string
	Summary     string
	Description string

	Payload  PayloadInfo
	Provides []Dependency
	Requires []Dependency
	Files    []FileInfo
}

// PayloadInfo describes the payload as recorded in the headers.
type PayloadInfo struct {
	// Size is the uncompressed archive size from the signature header.
	Size       uint64
	Format     string
	Compressor string
	Flags      string
}

// FileInfo is one entry of the header file list.
type FileInfo struct {
	Path       string
	Size       uint64
	Mode       fs.FileMode
	Owner      string
	Group      string
	Flags      uint32
	MTime      time.Time
	Digest     string
	LinkTarget string
	Device     uint32
	Inode      uint32
}

// Info summarizes the package headers.
func (p *Package) Info() *Info {
	return NewInfo(p.sig, p.hdr)
}

// NewInfo summarizes a signature and metadata header. Missing tags leave
// their fields zero; file list arrays of unequal length are read as far as
// each goes.
func NewInfo(sig, hdr *Header) *Info {
	str := func(t uint32) string {
		s, _ := hdr.String(t)
		return s
	}
	info := &Info{
		Name:        str(tag.Name),
		Version:     str(tag.Version),
		Release:     str(tag.Release),
		Arch:        str(tag.Arch),
		OS:          str(tag.OS),
		Group:       str(tag.Group),
		License:     str(tag.License),
		SourceRPM:   str(tag.SourceRPM),
		BuildHost:   str(tag.BuildHost),
		URL:         str(tag.URL),
		Vendor:      str(tag.Vendor),
		Packager:    str(tag.Packager),
		Summary:     str(tag.Summary),
		Description: str(tag.Description),
		Payload: PayloadInfo{
			Format:     str(tag.PayloadFormat),
			Compressor: str(tag.PayloadCompressor),
			Flags:      str(tag.PayloadFlags),
		},
	}
	if epoch, ok := hdr.Uint64(tag.Epoch); ok {
		info.Epoch, info.HasEpoch = uint32(epoch), true //nolint:gosec // epoch tags are 32 bits
	}
	if size, ok := hdr.Uint64(tag.LongSize); ok {
		info.Size = size
	} else if size, ok := hdr.Uint64(tag.Size); ok {
		info.Size = size
	}
	if bt, ok := hdr.Uint64(tag.BuildTime); ok {
		info.BuildTime = time.Unix(int64(bt), 0).UTC() //nolint:gosec // build times are 32 bits
	}
	if sig != nil {
		if size, ok := sig.Uint64(tag.SigLongArchiveSize); ok {
			info.Payload.Size = size
		} else if size, ok := sig.Uint64(tag.SigPayloadSize); ok {
			info.Payload.Size = size
		}
	}
	info.Provides = dependencies(hdr, tag.ProvideName, tag.ProvideFlags, tag.ProvideVersion)
	info.Requires = dependencies(hdr, tag.RequireName, tag.RequireFlags, tag.RequireVersion)
	info.Files = fileList(hdr)
	return info
}

func dependencies(hdr *Header, nameTag, flagsTag, versionTag uint32) []Dependency {
	names, _ := hdr.Strings(nameTag)
	flags, _ := hdr.Uint64s(flagsTag)
	versions, _ := hdr.Strings(versionTag)
	deps := make([]Dependency, 0, len(names))
	for i, name := range names {
		d := Dependency{Name: name}
		if i < len(flags) {
			d.Flags = uint32(flags[i]) //nolint:gosec // flag tags are 32 bits
		}
		if i < len(versions) {
			d.Version = versions[i]
		}
		deps = append(deps, d)
	}
	return deps
}

func fileList(hdr *Header) []FileInfo {
	bases, _ := hdr.Strings(tag.BaseNames)
	dirs, _ := hdr.Strings(tag.DirNames)
	dirIndexes, _ := hdr.Uint64s(tag.DirIndexes)
	sizes, ok := hdr.Uint64s(tag.LongFileSizes)
	if !ok {
		sizes, _ = hdr.Uint64s(tag.FileSizes)
	}
	modes, _ := hdr.Uint64s(tag.FileModes)
	users, _ := hdr.Strings(tag.FileUserName)
	groups, _ := hdr.Strings(tag.FileGroupName)
	flags, _ := hdr.Uint64s(tag.FileFlags)
	mtimes, _ := hdr.Uint64s(tag.FileMTimes)
	digests, _ := hdr.Strings(tag.FileDigests)
	links, _ := hdr.Strings(tag.FileLinkTos)
	devices, _ := hdr.Uint64s(tag.FileDevices)
	inodes, _ := hdr.Uint64s(tag.FileInodes)

	at := func(s []uint64, i int) uint64 {
		if i < len(s) {
			return s[i]
		}
		return 0
	}
	atStr := func(s []string, i int) string {
		if i < len(s) {
			return s[i]
		}
		return ""
	}

	files := make([]FileInfo, 0, len(bases))
	for i, base := range bases {
		dir := ""
		if i < len(dirIndexes) && dirIndexes[i] < uint64(len(dirs)) {
			dir = dirs[dirIndexes[i]]
		}
		mode := cpio.Header{Mode: uint32(at(modes, i))} //nolint:gosec // modes are 16 bits
		files = append(files, FileInfo{
			Path:       dir + base,
			Size:       at(sizes, i),
			Mode:       mode.FileMode(),
			Owner:      atStr(users, i),
			Group:      atStr(groups, i),
			Flags:      uint32(at(flags, i)),                     //nolint:gosec // flag tags are 32 bits
			MTime:      time.Unix(int64(at(mtimes, i)), 0).UTC(), //nolint:gosec // mtimes are 32 bits
			Digest:     atStr(digests, i),
			LinkTarget: atStr(links, i),
			Device:     uint32(at(devices, i)), //nolint:gosec // device tags are 32 bits
			Inode:      uint32(at(inodes, i)),  //nolint:gosec // inode tags are 32 bits
		})
	}
	return files
}

// NEVRA returns name-[epoch:]version-release.arch.
func (i *Info) NEVRA() string {
	var b strings.Builder
	b.WriteString(i.Name)
	b.WriteByte('-')
	if i.HasEpoch {
		fmt.Fprintf(&b, "%d:", i.Epoch)
	}
	b.WriteString(i.Version)
	b.WriteByte('-')
	b.WriteString(i.Release)
	if i.Arch != "" {
		b.WriteByte('.')
		b.WriteString(i.Arch)
	}
	return b.String()
}

// String renders the summary in the layout of rpm -qi.
func (i *Info) String() string {
	var b strings.Builder
	field := func(name, value string) {
		fmt.Fprintf(&b, "%-12s: %s\n", name, value)
	}
	field("Name", i.Name)
	if i.HasEpoch {
		field("Epoch", fmt.Sprint(i.Epoch))
	}
	field("Version", i.Version)
	field("Release", i.Release)
	field("Architecture", i.Arch)
	field("Group", orNone(i.Group))
	field("Size", fmt.Sprint(i.Size))
	field("License", orNone(i.License))
	field("Source RPM", orNone(i.SourceRPM))
	if i.BuildTime.IsZero() {
		field("Build Date", "(none)")
	} else {
		field("Build Date", i.BuildTime.Format("Mon Jan _2 15:04:05 2006"))
	}
	field("Build Host", orNone(i.BuildHost))
	if i.URL != "" {
		field("URL", i.URL)
	}
	if i.Vendor != "" {
		field("Vendor", i.Vendor)
	}
	if i.Packager != "" {
		field("Packager", i.Packager)
	}
	field("Payload", strings.TrimSpace(i.Payload.Format+" "+i.Payload.Compressor+" "+i.Payload.Flags))
	field("Summary", i.Summary)
	b.WriteString("Description :\n")
	b.WriteString(i.Description)
	b.WriteByte('\n')
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
