package header

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/sizing"
	"github.com/meigma/rpm/internal/textutil"
)

type encodeConfig struct {
	sorted    bool
	region    uint32
	hasRegion bool
	pad       uint64
}

// EncodeOption configures Encode.
type EncodeOption func(*encodeConfig)

// EncodeSorted writes entries in ascending tag order instead of stored order.
// Entries sharing a tag keep their relative order.
func EncodeSorted() EncodeOption {
	return func(c *encodeConfig) {
		c.sorted = true
	}
}

// WithRegion prefixes the index with a region entry for t that spans the
// whole header, as rpmbuild writes HEADERIMMUTABLE and HEADERSIGNATURES.
// Stored entries with tag t are dropped.
func WithRegion(t uint32) EncodeOption {
	return func(c *encodeConfig) {
		c.region = t
		c.hasRegion = true
	}
}

// WithTrailingPad appends zero bytes after the header so its total length is
// a multiple of align. The padding is not counted in the declared data size.
func WithTrailingPad(align uint64) EncodeOption {
	return func(c *encodeConfig) {
		c.pad = align
	}
}

// Encode writes h to w.
func Encode(w io.Writer, h *Header, opts ...EncodeOption) error {
	buf, err := h.AppendBinary(nil, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// EncodedSize returns the length Encode would write.
func (h *Header) EncodedSize(opts ...EncodeOption) (int, error) {
	buf, err := h.AppendBinary(nil, opts...)
	return len(buf), err
}

// AppendBinary appends the encoding of h to dst.
func (h *Header) AppendBinary(dst []byte, opts ...EncodeOption) ([]byte, error) {
	var cfg encodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	entries := h.Entries
	if cfg.hasRegion {
		entries = slices.DeleteFunc(slices.Clone(entries), func(e Entry) bool { return e.Tag == cfg.region })
	}
	if cfg.sorted {
		entries = slices.Clone(entries)
		slices.SortStableFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Tag, b.Tag) })
	}

	index := make([]IndexEntry, 0, len(entries)+1)
	var data []byte
	for _, e := range entries {
		if e.Value == nil {
			return dst, rpmtype.Errorf(rpmtype.SectionHeader, rpmtype.ErrUnsupportedType, "tag %d has no value", e.Tag)
		}
		if u, ok := e.Value.(Unknown); ok {
			return dst, rpmtype.Errorf(rpmtype.SectionHeader, rpmtype.ErrUnsupportedType, "tag %d has %s", e.Tag, u.ID)
		}
		if w := e.Value.Type().width(); w > 1 {
			data = append(data, make([]byte, sizing.Pad(uint64(len(data)), w))...)
		}
		off := len(data)
		var err error
		data, err = appendValue(data, e.Value)
		if err != nil {
			return dst, rpmtype.Wrap(rpmtype.SectionHeader, rpmtype.ErrInvalidEncoding, err, fmt.Sprintf("tag %d", e.Tag))
		}
		if uint64(len(data)) > math.MaxUint32 || uint64(e.Value.Count()) > math.MaxUint32 {
			return dst, rpmtype.Errorf(rpmtype.SectionHeader, rpmtype.ErrOversizedField, "tag %d", e.Tag)
		}
		index = append(index, IndexEntry{
			Tag:    e.Tag,
			Type:   e.Value.Type(),
			Offset: uint32(off),             //nolint:gosec // checked above
			Count:  uint32(e.Value.Count()), //nolint:gosec // checked above
		})
	}

	if cfg.hasRegion {
		if uint64(len(data))+EntrySize > math.MaxUint32 || len(index)+1 > math.MaxInt32/EntrySize {
			return dst, rpmtype.Errorf(rpmtype.SectionHeader, rpmtype.ErrOversizedField, "region")
		}
		region := IndexEntry{Tag: cfg.region, Type: TypeBinary, Offset: uint32(len(data)), Count: EntrySize} //nolint:gosec // checked above
		index = slices.Insert(index, 0, region)
		// The trailer points back at the start of the index with a negative offset.
		back := -int32(len(index) * EntrySize) //nolint:gosec // checked above
		data = appendIndexEntry(data, IndexEntry{Tag: cfg.region, Type: TypeBinary, Offset: uint32(back), Count: EntrySize})
	}

	start := len(dst)
	dst = append(dst, Magic[:]...)
	dst = append(dst, 0, 0, 0, 0)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(index))) //nolint:gosec // bounded by region check or entry count
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))  //nolint:gosec // checked above
	for _, e := range index {
		dst = appendIndexEntry(dst, e)
	}
	dst = append(dst, data...)
	if cfg.pad > 1 {
		dst = append(dst, make([]byte, sizing.Pad(uint64(len(dst)-start), cfg.pad))...)
	}
	return dst, nil
}

func appendIndexEntry(dst []byte, e IndexEntry) []byte {
	dst = binary.BigEndian.AppendUint32(dst, e.Tag)
	dst = binary.BigEndian.AppendUint32(dst, uint32(e.Type))
	dst = binary.BigEndian.AppendUint32(dst, e.Offset)
	return binary.BigEndian.AppendUint32(dst, e.Count)
}

func appendValue(dst []byte, v Value) ([]byte, error) {
	switch v := v.(type) {
	case Null:
		return dst, nil
	case Char:
		return append(dst, v...), nil
	case Int8:
		return append(dst, v...), nil
	case Binary:
		return append(dst, v...), nil
	case Int16:
		for _, x := range v {
			dst = binary.BigEndian.AppendUint16(dst, x)
		}
		return dst, nil
	case Int32:
		for _, x := range v {
			dst = binary.BigEndian.AppendUint32(dst, x)
		}
		return dst, nil
	case Int64:
		for _, x := range v {
			dst = binary.BigEndian.AppendUint64(dst, x)
		}
		return dst, nil
	case String:
		return appendStrings(dst, string(v))
	case StringArray:
		return appendStrings(dst, v...)
	case I18NString:
		return appendStrings(dst, v...)
	default:
		return dst, fmt.Errorf("unsupported value %T", v)
	}
}

var errEmbeddedNUL = errors.New("string contains NUL")

func appendStrings(dst []byte, strs ...string) ([]byte, error) {
	for _, s := range strs {
		if strings.IndexByte(s, 0) >= 0 {
			return dst, errEmbeddedNUL
		}
		dst = textutil.AppendCString(dst, s)
	}
	return dst, nil
}
