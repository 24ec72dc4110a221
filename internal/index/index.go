// Package index reads and writes the payload file index: a FlatBuffers table
// of every archive entry sorted by path, with content offsets into the
// decompressed payload and per-file SHA-256 digests.
package index

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"slices"
	"sort"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/fb"
)

// Version is the index format version written by Build.
const Version = 1

// Entry describes one archive entry for Build.
type Entry struct {
	Path       string
	Mode       uint32
	Size       uint64
	DataOffset uint64
	ModTime    int64
	UID        uint32
	GID        uint32
	LinkTarget string
	Hash       []byte
}

// Meta describes the indexed payload.
type Meta struct {
	Package     string
	Compressor  string
	PayloadSize uint64
	PayloadHash []byte
}

// Build serializes entries to FlatBuffers. Entries are sorted by path; the
// caller's slice is not modified.
func Build(meta Meta, entries []Entry) []byte {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.Path, b.Path) })

	builder := flatbuffers.NewBuilder(1024)

	// FlatBuffers builds back to front.
	offsets := make([]flatbuffers.UOffsetT, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		path := builder.CreateString(e.Path)
		var link flatbuffers.UOffsetT
		if e.LinkTarget != "" {
			link = builder.CreateString(e.LinkTarget)
		}
		var hash flatbuffers.UOffsetT
		if len(e.Hash) > 0 {
			hash = builder.CreateByteVector(e.Hash)
		}

		fb.EntryStart(builder)
		fb.EntryAddPath(builder, path)
		fb.EntryAddMode(builder, e.Mode)
		fb.EntryAddSize(builder, e.Size)
		fb.EntryAddDataOffset(builder, e.DataOffset)
		fb.EntryAddMtime(builder, e.ModTime)
		fb.EntryAddUid(builder, e.UID)
		fb.EntryAddGid(builder, e.GID)
		if link != 0 {
			fb.EntryAddLinkTarget(builder, link)
		}
		if hash != 0 {
			fb.EntryAddHash(builder, hash)
		}
		offsets[i] = fb.EntryEnd(builder)
	}

	fb.IndexStartEntriesVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	entriesOffset := builder.EndVector(len(offsets))

	pkg := builder.CreateString(meta.Package)
	compressor := builder.CreateString(meta.Compressor)
	var payloadHash flatbuffers.UOffsetT
	if len(meta.PayloadHash) > 0 {
		payloadHash = builder.CreateByteVector(meta.PayloadHash)
	}

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, Version)
	fb.IndexAddHashAlgorithm(builder, fb.HashAlgorithmSHA256)
	fb.IndexAddPackage(builder, pkg)
	fb.IndexAddCompressor(builder, compressor)
	fb.IndexAddPayloadSize(builder, meta.PayloadSize)
	if payloadHash != 0 {
		fb.IndexAddPayloadHash(builder, payloadHash)
	}
	fb.IndexAddEntries(builder, entriesOffset)
	builder.Finish(fb.IndexEnd(builder))
	return builder.FinishedBytes()
}

// Index provides O(log n) path lookups over a loaded index.
//
// Accessors return read-only EntryView values that alias index data.
type Index struct {
	data []byte
	root *fb.Index
}

// Load parses a FlatBuffers-encoded index.
//
// The provided data is retained by the index; callers must not modify it
// after calling Load.
func Load(data []byte) (idx *Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("rpm: failed to parse index: %v", r)
		}
	}()
	if len(data) < flatbuffers.SizeUOffsetT {
		return nil, errors.New("rpm: empty index data")
	}

	root := fb.GetRootAsIndex(data, 0)
	if v := root.Version(); v != Version {
		return nil, fmt.Errorf("rpm: unsupported index version %d", v)
	}
	// Touch every entry once so corrupt offsets fail here rather than
	// panicking in a later accessor.
	var e fb.Entry
	for i := range root.EntriesLength() {
		if root.Entries(&e, i) {
			_ = e.Path()
			_ = e.HashBytes()
			_ = e.LinkTarget()
		}
	}
	return &Index{data: data, root: root}, nil
}

// Version returns the format version of the index.
func (idx *Index) Version() uint32 {
	return idx.root.Version()
}

// Package returns the name-version-release.arch of the indexed package.
func (idx *Index) Package() string {
	return string(idx.root.Package())
}

// Compressor returns the payload compressor of the indexed package.
func (idx *Index) Compressor() string {
	return string(idx.root.Compressor())
}

// PayloadSize returns the size of the decompressed payload in bytes.
func (idx *Index) PayloadSize() uint64 {
	return idx.root.PayloadSize()
}

// PayloadHash returns the SHA-256 of the decompressed payload.
// The returned slice aliases the index buffer and must be treated as immutable.
func (idx *Index) PayloadHash() ([]byte, bool) {
	hash := idx.root.PayloadHashBytes()
	return hash, len(hash) > 0
}

// Lookup returns the entry for the given path.
func (idx *Index) Lookup(path string) (EntryView, bool) {
	var e fb.Entry
	if !idx.root.EntriesByKey(&e, path) {
		return EntryView{}, false
	}
	return EntryView{e: e}, true
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	return idx.root.EntriesLength()
}

// Entries returns an iterator over all entries in path order.
func (idx *Index) Entries() iter.Seq[EntryView] {
	return func(yield func(EntryView) bool) {
		var e fb.Entry
		for i := range idx.root.EntriesLength() {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !yield(EntryView{e: e}) {
				return
			}
		}
	}
}

// EntriesWithPrefix returns an iterator over entries whose path starts with
// prefix.
func (idx *Index) EntriesWithPrefix(prefix string) iter.Seq[EntryView] {
	return func(yield func(EntryView) bool) {
		n := idx.root.EntriesLength()
		if n == 0 {
			return
		}
		prefixBytes := []byte(prefix)

		start := sort.Search(n, func(i int) bool {
			var e fb.Entry
			if !idx.root.Entries(&e, i) {
				return false
			}
			return bytes.Compare(e.Path(), prefixBytes) >= 0
		})

		var e fb.Entry
		for i := start; i < n; i++ {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !bytes.HasPrefix(e.Path(), prefixBytes) {
				return
			}
			if !yield(EntryView{e: e}) {
				return
			}
		}
	}
}

// EntryView is a read-only view of one index entry. It is only valid while
// the index that produced it remains alive.
type EntryView struct {
	e fb.Entry
}

// Path returns the entry path.
func (v EntryView) Path() string { return string(v.e.Path()) }

// Mode returns the raw cpio mode.
func (v EntryView) Mode() uint32 { return v.e.Mode() }

// FileMode returns the mode as an fs.FileMode.
func (v EntryView) FileMode() fs.FileMode {
	h := cpio.Header{Mode: v.e.Mode()}
	return h.FileMode()
}

// Size returns the content size in bytes.
func (v EntryView) Size() uint64 { return v.e.Size() }

// DataOffset returns the content offset within the decompressed payload.
func (v EntryView) DataOffset() uint64 { return v.e.DataOffset() }

// ModTime returns the modification time.
func (v EntryView) ModTime() time.Time { return time.Unix(v.e.Mtime(), 0) }

// UID returns the owner user ID.
func (v EntryView) UID() uint32 { return v.e.Uid() }

// GID returns the owner group ID.
func (v EntryView) GID() uint32 { return v.e.Gid() }

// LinkTarget returns the symlink target, or "" for other entries.
func (v EntryView) LinkTarget() string { return string(v.e.LinkTarget()) }

// Hash returns the SHA-256 of the content. The slice aliases the index.
func (v EntryView) Hash() []byte { return v.e.HashBytes() }
