// Package cpio reads and writes archives in the cpio "new ASCII" (newc)
// format used for RPM payloads.
//
// The API mirrors archive/tar: a Reader yields one Header per entry and
// streams its content through Read, and a Writer takes WriteHeader, Write and
// Close. Every declared size is checked against a limit before anything
// proportional to it is allocated.
package cpio

import (
	"io/fs"
	"math"
	"time"

	"github.com/meigma/rpm/internal/platform"
	"github.com/meigma/rpm/internal/textutil"
)

// HeaderSize is the size of the fixed part of an entry header.
const HeaderSize = 6 + 13*textutil.HexWidth

// Magic identifies a newc entry header.
const Magic = "070701"

// Trailer is the name of the entry that terminates an archive.
const Trailer = "TRAILER!!!"

// Default limits applied by Reader.
const (
	DefaultMaxNameSize  = 4096
	DefaultMaxEntrySize = 1 << 30
)

// Mode bits stored in the header mode field.
const (
	ModeTypeMask = 0o170000
	ModeSocket   = 0o140000
	ModeSymlink  = 0o120000
	ModeRegular  = 0o100000
	ModeBlock    = 0o060000
	ModeDir      = 0o040000
	ModeChar     = 0o020000
	ModeFIFO     = 0o010000
	ModeSetuid   = 0o004000
	ModeSetgid   = 0o002000
	ModeSticky   = 0o001000
	ModePerm     = 0o000777
)

// Header is the metadata of one archive entry. Symlink targets are stored
// as entry content, so FileSize of a symlink is the target length.
type Header struct {
	Name      string
	Inode     uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	NLink     uint32
	MTime     uint32
	FileSize  uint32
	DevMajor  uint32
	DevMinor  uint32
	RDevMajor uint32
	RDevMinor uint32
	Checksum  uint32
}

// IsDir reports whether the entry is a directory.
func (h *Header) IsDir() bool { return h.Mode&ModeTypeMask == ModeDir }

// IsRegular reports whether the entry is a regular file.
func (h *Header) IsRegular() bool { return h.Mode&ModeTypeMask == ModeRegular }

// IsSymlink reports whether the entry is a symbolic link.
func (h *Header) IsSymlink() bool { return h.Mode&ModeTypeMask == ModeSymlink }

// ModTime returns MTime as a time.
func (h *Header) ModTime() time.Time {
	return time.Unix(int64(h.MTime), 0)
}

// FileMode converts the stored mode to an fs.FileMode.
func (h *Header) FileMode() fs.FileMode {
	m := fs.FileMode(h.Mode & ModePerm)
	switch h.Mode & ModeTypeMask {
	case ModeDir:
		m |= fs.ModeDir
	case ModeSymlink:
		m |= fs.ModeSymlink
	case ModeBlock:
		m |= fs.ModeDevice
	case ModeChar:
		m |= fs.ModeDevice | fs.ModeCharDevice
	case ModeFIFO:
		m |= fs.ModeNamedPipe
	case ModeSocket:
		m |= fs.ModeSocket
	}
	if h.Mode&ModeSetuid != 0 {
		m |= fs.ModeSetuid
	}
	if h.Mode&ModeSetgid != 0 {
		m |= fs.ModeSetgid
	}
	if h.Mode&ModeSticky != 0 {
		m |= fs.ModeSticky
	}
	return m
}

// UnixMode converts an fs.FileMode to header mode bits.
func UnixMode(m fs.FileMode) uint32 {
	out := uint32(m.Perm())
	switch {
	case m&fs.ModeDir != 0:
		out |= ModeDir
	case m&fs.ModeSymlink != 0:
		out |= ModeSymlink
	case m&fs.ModeCharDevice != 0:
		out |= ModeChar
	case m&fs.ModeDevice != 0:
		out |= ModeBlock
	case m&fs.ModeNamedPipe != 0:
		out |= ModeFIFO
	case m&fs.ModeSocket != 0:
		out |= ModeSocket
	default:
		out |= ModeRegular
	}
	if m&fs.ModeSetuid != 0 {
		out |= ModeSetuid
	}
	if m&fs.ModeSetgid != 0 {
		out |= ModeSetgid
	}
	if m&fs.ModeSticky != 0 {
		out |= ModeSticky
	}
	return out
}

// HeaderFromFileInfo builds a header for a file on the host filesystem.
// linkTarget is the symlink target and is ignored for other file types.
// Inode, link count, ownership and device numbers come from the platform.
func HeaderFromFileInfo(name string, fi fs.FileInfo, linkTarget string) (*Header, error) {
	meta := platform.FileMeta(fi)
	h := &Header{
		Name:      name,
		Inode:     uint32(meta.Inode), //nolint:gosec // newc inodes are 32 bits; truncation matches cpio(1)
		Mode:      UnixMode(fi.Mode()),
		UID:       meta.UID,
		GID:       meta.GID,
		NLink:     meta.NLink,
		DevMajor:  meta.DevMajor,
		DevMinor:  meta.DevMinor,
		RDevMajor: meta.RDevMajor,
		RDevMinor: meta.RDevMinor,
	}
	if mt := fi.ModTime().Unix(); mt > 0 && mt <= math.MaxUint32 {
		h.MTime = uint32(mt) //nolint:gosec // checked above
	}
	switch {
	case h.IsRegular():
		if fi.Size() < 0 || fi.Size() > math.MaxUint32 {
			return nil, errFileTooLarge
		}
		h.FileSize = uint32(fi.Size()) //nolint:gosec // checked above
	case h.IsSymlink():
		if uint64(len(linkTarget)) > math.MaxUint32 {
			return nil, errFileTooLarge
		}
		h.FileSize = uint32(len(linkTarget)) //nolint:gosec // checked above
	}
	return h, nil
}
