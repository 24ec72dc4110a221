//go:build unix

package platform

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// FileMeta extracts inode, link count, ownership and device numbers from
// file info on Unix systems.
func FileMeta(info fs.FileInfo) Meta {
	m := Meta{NLink: 1}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return m
	}
	// Field widths differ across platforms.
	dev := uint64(stat.Dev)      //nolint:unconvert,gosec
	rdev := uint64(stat.Rdev)    //nolint:unconvert,gosec
	m.Inode = uint64(stat.Ino)   //nolint:unconvert
	m.NLink = uint32(stat.Nlink) //nolint:unconvert,gosec
	m.UID = stat.Uid
	m.GID = stat.Gid
	m.DevMajor = unix.Major(dev)
	m.DevMinor = unix.Minor(dev)
	m.RDevMajor = unix.Major(rdev)
	m.RDevMinor = unix.Minor(rdev)
	return m
}
