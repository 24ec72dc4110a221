// Package header decodes and encodes RPM header structures: the tag-indexed
// blocks used for both the signature section and the metadata section.
//
// A header is a 16-byte preamble, an index of (tag, type, offset, count)
// entries, and a data blob the entries point into. Decoded entries keep their
// stored order. Values are never looked up by "the next index entry"; each
// string bound comes from a total next-or-end lookup over the offset-sorted
// index, so the last entry is bounded by the end of the blob.
package header

import (
	"slices"
)

// Magic is the header structure magic: three marker bytes and version 1.
var Magic = [4]byte{0x8e, 0xad, 0xe8, 0x01}

// PreambleSize is the size of the fixed header preamble.
const PreambleSize = 16

// EntrySize is the size of one encoded index entry.
const EntrySize = 16

// Default limits applied by Decode.
const (
	DefaultMaxDataSize   = 32 << 20
	DefaultMaxIndexCount = 1 << 16
)

// IndexEntry is a raw index record.
type IndexEntry struct {
	Tag    uint32
	Type   Type
	Offset uint32
	Count  uint32
}

// Entry is one decoded tag and its value.
type Entry struct {
	Tag   uint32
	Value Value
}

// Reason classifies a non-fatal decode condition.
type Reason uint8

// Diagnostic reasons.
const (
	// ReasonUnknownTag marks a tag missing from the caller's tag set.
	// The value still decodes normally.
	ReasonUnknownTag Reason = iota + 1
	// ReasonUnknownType marks a type identifier outside the known set.
	// The value is replaced by Unknown.
	ReasonUnknownType
)

func (r Reason) String() string {
	switch r {
	case ReasonUnknownTag:
		return "unknown tag"
	case ReasonUnknownType:
		return "unknown type"
	default:
		return "unknown reason"
	}
}

// Diagnostic records a non-fatal condition found while decoding.
// The header engine never prints these; callers decide what to do with them.
type Diagnostic struct {
	// Index is the position of the entry in the stored index.
	Index  int
	Tag    uint32
	Type   Type
	Reason Reason
}

// Header is an ordered collection of tagged values.
type Header struct {
	Entries     []Entry
	Diagnostics []Diagnostic

	dataSize uint32
}

// New returns an empty header.
func New() *Header {
	return &Header{}
}

// DataSize returns the data blob size declared by the decoded preamble.
// It is zero for headers that were not produced by Decode.
func (h *Header) DataSize() uint32 {
	return h.dataSize
}

// Len returns the number of entries.
func (h *Header) Len() int {
	return len(h.Entries)
}

// Get returns the value of the first entry with the given tag.
func (h *Header) Get(t uint32) (Value, bool) {
	if i := h.find(t); i >= 0 {
		return h.Entries[i].Value, true
	}
	return nil, false
}

// Has reports whether the header carries t.
func (h *Header) Has(t uint32) bool {
	return h.find(t) >= 0
}

// Set replaces the value of the first entry with tag t, or appends a new entry.
func (h *Header) Set(t uint32, v Value) {
	if i := h.find(t); i >= 0 {
		h.Entries[i].Value = v
		return
	}
	h.Entries = append(h.Entries, Entry{Tag: t, Value: v})
}

// Delete removes every entry with tag t.
func (h *Header) Delete(t uint32) {
	h.Entries = slices.DeleteFunc(h.Entries, func(e Entry) bool { return e.Tag == t })
}

// Tags returns the entry tags in stored order.
func (h *Header) Tags() []uint32 {
	out := make([]uint32, len(h.Entries))
	for i, e := range h.Entries {
		out[i] = e.Tag
	}
	return out
}

// String returns the string form of tag t.
func (h *Header) String(t uint32) (string, bool) {
	v, ok := h.Get(t)
	if !ok {
		return "", false
	}
	return Str(v)
}

// Strings returns the elements of a string-like tag.
func (h *Header) Strings(t uint32) ([]string, bool) {
	v, ok := h.Get(t)
	if !ok {
		return nil, false
	}
	return Strs(v)
}

// Uint64 returns the first element of an integer tag.
func (h *Header) Uint64(t uint32) (uint64, bool) {
	v, ok := h.Get(t)
	if !ok {
		return 0, false
	}
	return Uint64(v)
}

// Uint64s returns the elements of an integer tag.
func (h *Header) Uint64s(t uint32) ([]uint64, bool) {
	v, ok := h.Get(t)
	if !ok {
		return nil, false
	}
	return Uint64s(v)
}

// Bytes returns the contents of a binary tag.
func (h *Header) Bytes(t uint32) ([]byte, bool) {
	v, ok := h.Get(t)
	if !ok {
		return nil, false
	}
	b, ok := v.(Binary)
	return []byte(b), ok
}

func (h *Header) find(t uint32) int {
	return slices.IndexFunc(h.Entries, func(e Entry) bool { return e.Tag == t })
}
