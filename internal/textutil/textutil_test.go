package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "demo", CString([]byte("demo\x00\x00\x00")))
	assert.Equal(t, "demo", CString([]byte("demo")))
	assert.Equal(t, "", CString([]byte{0, 'x'}))
	assert.Equal(t, "", CString(nil))
}

func TestSplitCStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
		want []string
		ok   bool
	}{
		{name: "terminated", in: "a\x00bc\x00", n: 2, want: []string{"a", "bc"}, ok: true},
		{name: "unterminated tail", in: "a\x00bc", n: 2, want: []string{"a", "bc"}, ok: true},
		{name: "empty strings", in: "\x00\x00", n: 2, want: []string{"", ""}, ok: true},
		{name: "trailing data ignored", in: "a\x00b\x00c\x00", n: 2, want: []string{"a", "b"}, ok: true},
		{name: "zero count", in: "abc", n: 0, want: []string{}, ok: true},
		{name: "too few", in: "a\x00", n: 3, ok: false},
		{name: "huge count", in: "", n: 1 << 30, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := SplitCStrings([]byte(tt.in), tt.n)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHex32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "000081a4", string(AppendHex32(nil, 0o100644)))
	assert.Equal(t, "ffffffff", string(AppendHex32(nil, 0xffffffff)))

	v, err := ParseHex32([]byte("000081A4"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0o100644), v)

	_, err = ParseHex32([]byte("0000zz00"))
	assert.ErrorIs(t, err, ErrHexDigit)

	_, err = ParseHex32([]byte("123"))
	assert.ErrorIs(t, err, ErrHexDigit)
}
