package header

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/sizing"
	"github.com/meigma/rpm/internal/tag"
	"github.com/meigma/rpm/internal/textutil"
)

type decodeConfig struct {
	maxDataSize   uint32
	maxIndexCount uint32
	tags          tag.Set
	section       rpmtype.Section
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

// WithMaxDataSize caps the declared data blob size. Larger headers fail with
// ErrOversizedField before anything is allocated.
func WithMaxDataSize(n uint32) DecodeOption {
	return func(c *decodeConfig) {
		c.maxDataSize = n
	}
}

// WithMaxIndexCount caps the declared number of index entries.
func WithMaxIndexCount(n uint32) DecodeOption {
	return func(c *decodeConfig) {
		c.maxIndexCount = n
	}
}

// WithTagSet reports entries whose tag is missing from s as ReasonUnknownTag
// diagnostics. Without a set no tag is considered unknown.
func WithTagSet(s tag.Set) DecodeOption {
	return func(c *decodeConfig) {
		c.tags = s
	}
}

// WithSection labels errors with the package section being decoded.
func WithSection(s rpmtype.Section) DecodeOption {
	return func(c *decodeConfig) {
		c.section = s
	}
}

// Decode reads one header structure from r. It reads exactly the preamble,
// the index, and the data blob; any alignment padding that follows is left
// for the caller.
func Decode(r io.Reader, opts ...DecodeOption) (*Header, error) {
	cfg := decodeConfig{
		maxDataSize:   DefaultMaxDataSize,
		maxIndexCount: DefaultMaxIndexCount,
		section:       rpmtype.SectionHeader,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var pre [PreambleSize]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, fmt.Errorf("read %s preamble: %w", cfg.section, err)
	}
	if !bytes.Equal(pre[:4], Magic[:]) {
		return nil, rpmtype.Errorf(cfg.section, rpmtype.ErrBadMagic, "% x", pre[:4])
	}
	nindex := binary.BigEndian.Uint32(pre[8:12])
	dataSize := binary.BigEndian.Uint32(pre[12:16])
	if nindex > cfg.maxIndexCount {
		return nil, rpmtype.Errorf(cfg.section, rpmtype.ErrOversizedField,
			"%d index entries exceeds limit %d", nindex, cfg.maxIndexCount)
	}
	if dataSize > cfg.maxDataSize {
		return nil, rpmtype.Errorf(cfg.section, rpmtype.ErrOversizedField,
			"data size %d exceeds limit %d", dataSize, cfg.maxDataSize)
	}

	indexBytes := make([]byte, uint64(nindex)*EntrySize)
	if _, err := io.ReadFull(r, indexBytes); err != nil {
		return nil, fmt.Errorf("read %s index: %w", cfg.section, err)
	}
	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read %s data: %w", cfg.section, err)
	}

	h, err := resolveAll(ParseIndex(indexBytes), data, &cfg)
	if err != nil {
		return nil, err
	}
	h.dataSize = dataSize
	return h, nil
}

// ParseIndex splits raw index bytes into entries. Trailing bytes that do not
// form a whole entry are ignored.
func ParseIndex(b []byte) []IndexEntry {
	out := make([]IndexEntry, 0, len(b)/EntrySize)
	for len(b) >= EntrySize {
		out = append(out, IndexEntry{
			Tag:    binary.BigEndian.Uint32(b[0:4]),
			Type:   Type(binary.BigEndian.Uint32(b[4:8])),
			Offset: binary.BigEndian.Uint32(b[8:12]),
			Count:  binary.BigEndian.Uint32(b[12:16]),
		})
		b = b[EntrySize:]
	}
	return out
}

// stringBounds returns, for every entry, the end of the region its
// string-like value may occupy: the smallest offset strictly greater than its
// own, or the end of data. The lookup is total, so the entry with the
// highest offset is bounded by len(data).
func stringBounds(idx []IndexEntry, dataLen int) []int {
	order := make([]int, len(idx))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(idx[a].Offset, idx[b].Offset)
	})

	end := make([]int, len(idx))
	next := dataLen
	for k := len(order) - 1; k >= 0; {
		off := idx[order[k]].Offset
		for k >= 0 && idx[order[k]].Offset == off {
			end[order[k]] = next
			k--
		}
		if uint64(off) < uint64(next) {
			next = int(off)
		}
	}
	return end
}

func resolveAll(idx []IndexEntry, data []byte, cfg *decodeConfig) (*Header, error) {
	h := &Header{Entries: make([]Entry, 0, len(idx))}
	end := stringBounds(idx, len(data))
	for i, e := range idx {
		v, known, err := resolve(e, data, end[i])
		if err != nil {
			return nil, rpmtype.Wrap(cfg.section, rpmtype.ErrOutOfBounds, err,
				fmt.Sprintf("entry %d (tag %d, %s, offset %d, count %d)", i, e.Tag, e.Type, e.Offset, e.Count))
		}
		if !known {
			h.Diagnostics = append(h.Diagnostics, Diagnostic{Index: i, Tag: e.Tag, Type: e.Type, Reason: ReasonUnknownType})
		}
		if cfg.tags != nil && !cfg.tags.Contains(e.Tag) {
			h.Diagnostics = append(h.Diagnostics, Diagnostic{Index: i, Tag: e.Tag, Type: e.Type, Reason: ReasonUnknownTag})
		}
		h.Entries = append(h.Entries, Entry{Tag: e.Tag, Value: v})
	}
	return h, nil
}

// errRange is the cause attached to every out-of-bounds entry.
var errRange = errors.New("value exceeds data blob")

// resolve decodes a single entry. known is false when the type identifier is
// not recognized and the Unknown sentinel was substituted. Null and unknown
// types have no width, so their offsets are not checked.
func resolve(e IndexEntry, data []byte, end int) (v Value, known bool, err error) {
	n := uint64(len(data))
	off := uint64(e.Offset)

	switch e.Type {
	case TypeNull:
		return Null{}, true, nil

	case TypeChar, TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeBinary:
		width := e.Type.width()
		if e.Type == TypeBinary {
			width = 1
		}
		size, ok := sizing.MulUint64(uint64(e.Count), width)
		if !ok {
			return nil, true, errRange
		}
		stop, ok := sizing.AddUint64(off, size)
		if !ok || stop > n {
			return nil, true, errRange
		}
		return fixed(e.Type, data[off:stop]), true, nil

	case TypeString:
		if off >= n || off > uint64(end) {
			return nil, true, errRange
		}
		return String(textutil.CString(data[off:end])), true, nil

	case TypeStringArray, TypeI18NString:
		if off > n || off > uint64(end) {
			return nil, true, errRange
		}
		region := data[off:end]
		if uint64(e.Count) > uint64(len(region))+1 {
			return nil, true, errRange
		}
		strs, ok := textutil.SplitCStrings(region, int(e.Count))
		if !ok {
			return nil, true, errRange
		}
		if e.Type == TypeI18NString {
			return I18NString(strs), true, nil
		}
		return StringArray(strs), true, nil

	default:
		return Unknown{ID: e.Type, Items: e.Count}, false, nil
	}
}

func fixed(t Type, b []byte) Value {
	switch t {
	case TypeChar:
		return Char(bytes.Clone(b))
	case TypeInt8:
		return Int8(bytes.Clone(b))
	case TypeInt16:
		out := make(Int16, len(b)/2)
		for i := range out {
			out[i] = binary.BigEndian.Uint16(b[i*2:])
		}
		return out
	case TypeInt32:
		out := make(Int32, len(b)/4)
		for i := range out {
			out[i] = binary.BigEndian.Uint32(b[i*4:])
		}
		return out
	case TypeInt64:
		out := make(Int64, len(b)/8)
		for i := range out {
			out[i] = binary.BigEndian.Uint64(b[i*8:])
		}
		return out
	default:
		return Binary(bytes.Clone(b))
	}
}
