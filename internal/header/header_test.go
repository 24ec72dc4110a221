package header

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/tag"
)

// rawHeader assembles a header from explicit index entries and data, so tests
// can describe layouts Encode would never produce.
func rawHeader(entries []IndexEntry, data []byte) []byte {
	buf := append([]byte(nil), Magic[:]...)
	buf = append(buf, 0, 0, 0, 0)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(entries)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	for _, e := range entries {
		buf = appendIndexEntry(buf, e)
	}
	return append(buf, data...)
}

func sampleHeader() *Header {
	h := New()
	h.Set(tag.HeaderI18NTable, StringArray{"C"})
	h.Set(tag.Name, String("demo"))
	h.Set(tag.Version, String("1.0"))
	h.Set(tag.Summary, I18NString{"a demo package"})
	h.Set(tag.Epoch, Int32{7})
	h.Set(tag.FileModes, Int16{0o100644, 0o40755})
	h.Set(tag.LongSize, Int64{1 << 40})
	h.Set(tag.FileDigestAlgo, Int8{8})
	h.Set(tag.BaseNames, StringArray{"a.txt", "b", ""})
	h.Set(1012, Binary{0xde, 0xad, 0xbe, 0xef})
	h.Set(4242, Char("xy"))
	return h
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	h := sampleHeader()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, h))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.Entries, got.Entries)
	assert.Empty(t, got.Diagnostics)
	assert.Zero(t, buf.Len(), "decode must consume the whole header")

	name, ok := got.String(tag.Name)
	require.True(t, ok)
	assert.Equal(t, "demo", name)

	modes, ok := got.Uint64s(tag.FileModes)
	require.True(t, ok)
	assert.Equal(t, []uint64{0o100644, 0o40755}, modes)
}

func TestRoundTripSortedWithRegion(t *testing.T) {
	t.Parallel()

	h := sampleHeader()
	enc, err := h.AppendBinary(nil, EncodeSorted(), WithRegion(tag.HeaderImmutable))
	require.NoError(t, err)

	idx := ParseIndex(enc[PreambleSize:])
	require.Equal(t, uint32(tag.HeaderImmutable), idx[0].Tag)
	assert.Equal(t, TypeBinary, idx[0].Type)
	assert.Equal(t, uint32(EntrySize), idx[0].Count)

	got, err := Decode(bytes.NewReader(enc))
	require.NoError(t, err)
	require.Equal(t, h.Len()+1, got.Len())

	trailer, ok := got.Bytes(tag.HeaderImmutable)
	require.True(t, ok)
	require.Len(t, trailer, EntrySize)
	back := int32(binary.BigEndian.Uint32(trailer[8:12]))
	assert.Equal(t, int32(-(h.Len()+1)*EntrySize), back)

	tags := got.Tags()[1:]
	assert.IsIncreasing(t, tags)

	got.Delete(tag.HeaderImmutable)
	for _, e := range h.Entries {
		v, ok := got.Get(e.Tag)
		require.True(t, ok, "tag %d", e.Tag)
		assert.Equal(t, e.Value, v, "tag %d", e.Tag)
	}
}

func TestEncodeAlignsIntegers(t *testing.T) {
	t.Parallel()

	h := New()
	h.Set(tag.Name, String("ab")) // 3 bytes
	h.Set(tag.Size, Int32{1})
	h.Set(tag.FileModes, Int16{1})
	h.Set(tag.LongSize, Int64{1})

	enc, err := h.AppendBinary(nil)
	require.NoError(t, err)
	idx := ParseIndex(enc[PreambleSize : PreambleSize+4*EntrySize])
	assert.Equal(t, uint32(0), idx[0].Offset)
	assert.Equal(t, uint32(4), idx[1].Offset)
	assert.Equal(t, uint32(8), idx[2].Offset)
	assert.Equal(t, uint32(16), idx[3].Offset)
}

func TestTrailingPad(t *testing.T) {
	t.Parallel()

	h := New()
	h.Set(tag.SigSize, Int32{1})
	h.Set(tag.SigSHA256, String("abc"))

	plain, err := h.EncodedSize()
	require.NoError(t, err)
	padded, err := h.EncodedSize(WithTrailingPad(8))
	require.NoError(t, err)
	assert.Zero(t, padded%8)
	assert.GreaterOrEqual(t, padded, plain)
	assert.Less(t, padded-plain, 8)
}

func TestLastStringBoundedByDataEnd(t *testing.T) {
	t.Parallel()

	// The string with the highest offset has no terminator; its bound must be
	// the end of the blob, not a non-existent next entry.
	data := []byte("first\x00last")
	raw := rawHeader([]IndexEntry{
		{Tag: tag.Version, Type: TypeString, Offset: 6, Count: 1},
		{Tag: tag.Name, Type: TypeString, Offset: 0, Count: 1},
	}, data)

	h, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	v, _ := h.String(tag.Version)
	assert.Equal(t, "last", v)
	n, _ := h.String(tag.Name)
	assert.Equal(t, "first", n)
	assert.Equal(t, []uint32{tag.Version, tag.Name}, h.Tags(), "stored order is preserved")
}

func TestStringStopsAtNextOffset(t *testing.T) {
	t.Parallel()

	data := []byte("abcd\x00\x00\x00\x07")
	raw := rawHeader([]IndexEntry{
		{Tag: tag.Name, Type: TypeString, Offset: 0, Count: 1},
		{Tag: tag.Size, Type: TypeInt32, Offset: 2, Count: 1},
	}, data)

	h, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	name, _ := h.String(tag.Name)
	assert.Equal(t, "ab", name)
}

func TestUnknownTypeDoesNotAbort(t *testing.T) {
	t.Parallel()

	data := []byte("demo\x00")
	raw := rawHeader([]IndexEntry{
		{Tag: 5555, Type: Type(42), Offset: 0, Count: 3},
		{Tag: tag.Name, Type: TypeString, Offset: 0, Count: 1},
	}, data)

	h, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	v, ok := h.Get(5555)
	require.True(t, ok)
	assert.Equal(t, Unknown{ID: 42, Items: 3}, v)

	name, ok := h.String(tag.Name)
	require.True(t, ok)
	assert.Equal(t, "demo", name)

	require.Len(t, h.Diagnostics, 1)
	assert.Equal(t, Diagnostic{Index: 0, Tag: 5555, Type: 42, Reason: ReasonUnknownType}, h.Diagnostics[0])

	err = Encode(io.Discard, h)
	assert.ErrorIs(t, err, rpmtype.ErrUnsupportedType)
}

func TestUnknownTypeFarOffset(t *testing.T) {
	t.Parallel()

	data := []byte("demo\x00")
	raw := rawHeader([]IndexEntry{
		{Tag: tag.Name, Type: TypeString, Offset: 0, Count: 1},
		{Tag: 5555, Type: Type(42), Offset: 1000, Count: 3},
		{Tag: 5556, Type: TypeNull, Offset: 2000, Count: 1},
	}, data)

	h, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	v, ok := h.Get(5555)
	require.True(t, ok)
	assert.Equal(t, Unknown{ID: 42, Items: 3}, v)

	v, ok = h.Get(5556)
	require.True(t, ok)
	assert.Equal(t, Null{}, v)

	name, ok := h.String(tag.Name)
	require.True(t, ok)
	assert.Equal(t, "demo", name)

	require.Len(t, h.Diagnostics, 1)
	assert.Equal(t, ReasonUnknownType, h.Diagnostics[0].Reason)
}

func TestUnknownTagDiagnostic(t *testing.T) {
	t.Parallel()

	h := New()
	h.Set(999999, String("future"))
	h.Set(tag.Name, String("demo"))
	enc, err := h.AppendBinary(nil)
	require.NoError(t, err)

	got, err := Decode(bytes.NewReader(enc), WithTagSet(tag.Header))
	require.NoError(t, err)

	v, ok := got.String(999999)
	require.True(t, ok, "unknown tags keep their decoded value")
	assert.Equal(t, "future", v)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, ReasonUnknownTag, got.Diagnostics[0].Reason)
	assert.Equal(t, uint32(999999), got.Diagnostics[0].Tag)
}

func TestOversizedDataRejectedBeforeAllocation(t *testing.T) {
	t.Parallel()

	// Only the preamble is present; a decoder that allocated first would
	// fail with an I/O error instead.
	raw := rawHeader(nil, nil)
	binary.BigEndian.PutUint32(raw[12:16], 0xffffffff)

	_, err := Decode(bytes.NewReader(raw))
	assert.ErrorIs(t, err, rpmtype.ErrOversizedField)

	binary.BigEndian.PutUint32(raw[12:16], 9)
	_, err = Decode(bytes.NewReader(raw), WithMaxDataSize(8))
	assert.ErrorIs(t, err, rpmtype.ErrOversizedField)
}

func TestOversizedIndexCount(t *testing.T) {
	t.Parallel()

	raw := rawHeader(nil, nil)
	binary.BigEndian.PutUint32(raw[8:12], 0xffffffff)

	_, err := Decode(bytes.NewReader(raw))
	assert.ErrorIs(t, err, rpmtype.ErrOversizedField)
}

func TestOutOfBounds(t *testing.T) {
	t.Parallel()

	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	tests := []struct {
		name  string
		entry IndexEntry
	}{
		{"offset past end", IndexEntry{Tag: 1, Type: TypeInt8, Offset: 9, Count: 1}},
		{"int32 overruns", IndexEntry{Tag: 1, Type: TypeInt32, Offset: 6, Count: 1}},
		{"count overflow", IndexEntry{Tag: 1, Type: TypeInt64, Offset: 0, Count: 0xffffffff}},
		{"binary overruns", IndexEntry{Tag: 1, Type: TypeBinary, Offset: 4, Count: 5}},
		{"string at end", IndexEntry{Tag: 1, Type: TypeString, Offset: 8, Count: 1}},
		{"string array too many", IndexEntry{Tag: 1, Type: TypeStringArray, Offset: 0, Count: 0xffffffff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(bytes.NewReader(rawHeader([]IndexEntry{tt.entry}, data)))
			assert.ErrorIs(t, err, rpmtype.ErrOutOfBounds)
		})
	}
}

func TestBadMagic(t *testing.T) {
	t.Parallel()

	raw := rawHeader(nil, nil)
	raw[3] = 2
	_, err := Decode(bytes.NewReader(raw))
	assert.ErrorIs(t, err, rpmtype.ErrBadMagic)
}

func TestTruncated(t *testing.T) {
	t.Parallel()

	raw := rawHeader([]IndexEntry{{Tag: 1, Type: TypeString, Offset: 0, Count: 1}}, []byte("abc\x00"))
	_, err := Decode(bytes.NewReader(raw[:len(raw)-2]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestEncodeRejectsEmbeddedNUL(t *testing.T) {
	t.Parallel()

	h := New()
	h.Set(tag.Name, String("de\x00mo"))
	err := Encode(io.Discard, h)
	assert.ErrorIs(t, err, rpmtype.ErrInvalidEncoding)

	h = New()
	h.Set(tag.BaseNames, StringArray{"ok", "b\x00ad"})
	err = Encode(io.Discard, h)
	assert.ErrorIs(t, err, rpmtype.ErrInvalidEncoding)
}

func TestSetReplacesInPlace(t *testing.T) {
	t.Parallel()

	h := New()
	h.Set(tag.Name, String("a"))
	h.Set(tag.Version, String("1"))
	h.Set(tag.Name, String("b"))
	assert.Equal(t, []uint32{tag.Name, tag.Version}, h.Tags())
	v, _ := h.String(tag.Name)
	assert.Equal(t, "b", v)
	assert.True(t, h.Has(tag.Version))
	h.Delete(tag.Version)
	assert.False(t, h.Has(tag.Version))
}

func FuzzDecode(f *testing.F) {
	enc, err := sampleHeader().AppendBinary(nil, WithRegion(tag.HeaderImmutable))
	if err != nil {
		f.Fatal(err)
	}
	f.Add(enc)
	f.Add(rawHeader([]IndexEntry{{Tag: 1, Type: TypeString, Offset: 0, Count: 1}}, []byte("x")))
	f.Add(rawHeader(nil, nil))

	f.Fuzz(func(t *testing.T, raw []byte) {
		h, err := Decode(bytes.NewReader(raw), WithMaxDataSize(1<<16), WithTagSet(tag.Header))
		if err != nil {
			return
		}
		// Anything that decodes without unknown types must re-encode.
		for _, d := range h.Diagnostics {
			if d.Reason == ReasonUnknownType {
				return
			}
		}
		for _, e := range h.Entries {
			if s, ok := Strs(e.Value); ok {
				for _, x := range s {
					if bytes.IndexByte([]byte(x), 0) >= 0 {
						t.Fatalf("decoded string contains NUL: %q", x)
					}
				}
			}
		}
		if _, err := h.AppendBinary(nil); err != nil {
			t.Fatalf("re-encode: %v", err)
		}
	})
}
