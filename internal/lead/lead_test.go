package lead

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/rpm/internal/rpmtype"
)

func mustLead(t *testing.T, name string) Lead {
	t.Helper()
	l, err := New(name, Binary, 1)
	require.NoError(t, err)
	return l
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	l := mustLead(t, "demo-1.0-1")
	l.Reserved[3] = 0x7f

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, l))
	require.Equal(t, Size, buf.Len())
	assert.Equal(t, Magic[:], buf.Bytes()[:4])

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, l, got)
	assert.True(t, l.Equal(got))
	assert.Equal(t, "demo-1.0-1", got.NameString())
	assert.Equal(t, uint16(SignatureHeaderType), got.SignatureType)
}

func TestDecodeReadsExactlyOneLead(t *testing.T) {
	t.Parallel()

	l := mustLead(t, "demo")
	enc, err := l.AppendBinary(nil)
	require.NoError(t, err)

	r := bytes.NewReader(append(enc, "tail"...))
	_, err = Decode(r)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
}

func TestDecodeBadMagic(t *testing.T) {
	t.Parallel()

	buf := make([]byte, Size)
	copy(buf, "\x8e\xad\xe8\x01")
	_, err := Decode(bytes.NewReader(buf))
	assert.ErrorIs(t, err, rpmtype.ErrBadMagic)
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		major, minor uint8
		ok           bool
	}{
		{3, 0, true},
		{3, 1, true},
		{4, 0, true},
		{2, 0, false},
		{3, 2, false},
		{4, 1, false},
	}
	for _, tt := range tests {
		l := mustLead(t, "demo")
		l.Major, l.Minor = tt.major, tt.minor
		enc, err := l.AppendBinary(nil)
		require.NoError(t, err)

		_, err = Parse(enc)
		if tt.ok {
			assert.NoError(t, err, "%d.%d", tt.major, tt.minor)
			continue
		}
		require.ErrorIs(t, err, rpmtype.ErrUnsupportedVersion, "%d.%d", tt.major, tt.minor)
		var verr *rpmtype.VersionError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, tt.major, verr.Major)
		assert.Equal(t, tt.minor, verr.Minor)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	t.Parallel()

	l := mustLead(t, "demo")
	enc, err := l.AppendBinary(nil)
	require.NoError(t, err)
	enc[7] = 9

	_, err = Parse(enc)
	assert.ErrorIs(t, err, rpmtype.ErrInvalidEncoding)
}

func TestDecodeShortInput(t *testing.T) {
	t.Parallel()

	_, err := Decode(bytes.NewReader(Magic[:]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSetNameTooLong(t *testing.T) {
	t.Parallel()

	var l Lead
	require.NoError(t, l.SetName(strings.Repeat("a", NameSize-1)))
	assert.ErrorIs(t, l.SetName(strings.Repeat("a", NameSize)), rpmtype.ErrNameTooLong)
}

func TestEncodeUnterminatedName(t *testing.T) {
	t.Parallel()

	l := mustLead(t, "demo")
	for i := range l.Name {
		l.Name[i] = 'x'
	}
	assert.ErrorIs(t, Encode(io.Discard, l), rpmtype.ErrNameTooLong)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	a := mustLead(t, "demo")
	b := a
	b.Major = 4
	assert.False(t, a.Equal(b), "leads differing only in major must differ")

	c := a
	c.Name[60] = 'z' // after the terminator
	assert.True(t, a.Equal(c), "padding after the name terminator is ignored")

	d := a
	assert.True(t, a.Equal(d), "identical reserved and name bytes compare equal")

	e := a
	e.Reserved[0] = 1
	assert.False(t, a.Equal(e))
}
