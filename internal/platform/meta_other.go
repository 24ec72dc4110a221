//go:build !unix

package platform

import "io/fs"

// FileMeta returns portable defaults on non-Unix systems: no inode,
// one link, root ownership, no device numbers.
func FileMeta(_ fs.FileInfo) Meta {
	return Meta{NLink: 1}
}
