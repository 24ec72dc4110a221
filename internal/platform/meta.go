// Package platform populates archive entry metadata from the host filesystem.
//
// Unix systems read inode, link count, ownership and device numbers from
// syscall.Stat_t; other systems fill portable defaults. Callers see a single
// FileMeta function either way.
package platform

// Meta holds the host-specific fields of an archive entry.
type Meta struct {
	Inode     uint64
	NLink     uint32
	UID       uint32
	GID       uint32
	DevMajor  uint32
	DevMinor  uint32
	RDevMajor uint32
	RDevMinor uint32
}
