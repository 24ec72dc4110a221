package sizing

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, align, want uint64
	}{
		{32, 8, 0},
		{33, 8, 7},
		{34, 8, 6},
		{35, 8, 5},
		{39, 8, 1},
		{0, 4, 0},
		{1, 4, 3},
		{110 + 6, 4, 0},
		{5, 0, 0},
		{5, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Pad(tt.n, tt.align), "Pad(%d, %d)", tt.n, tt.align)
	}
}

func TestAddMulUint64(t *testing.T) {
	t.Parallel()

	_, ok := AddUint64(math.MaxUint64, 1)
	assert.False(t, ok)

	sum, ok := AddUint64(2, 3)
	require.True(t, ok)
	assert.Equal(t, uint64(5), sum)

	_, ok = MulUint64(math.MaxUint64/2+1, 2)
	assert.False(t, ok)

	product, ok := MulUint64(0, math.MaxUint64)
	require.True(t, ok)
	assert.Zero(t, product)
}

func TestSkip(t *testing.T) {
	t.Parallel()

	r := strings.NewReader("abcdef")
	require.NoError(t, Skip(r, 4))
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(rest))

	err = Skip(strings.NewReader("ab"), 3)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.NoError(t, Skip(strings.NewReader(""), 0))
}

func TestReadAllWithLimit(t *testing.T) {
	t.Parallel()

	errTooBig := errors.New("too big")

	data, err := ReadAllWithLimit(bytes.NewReader([]byte("1234")), 4, errTooBig)
	require.NoError(t, err)
	assert.Equal(t, []byte("1234"), data)

	_, err = ReadAllWithLimit(bytes.NewReader([]byte("12345")), 4, errTooBig)
	assert.ErrorIs(t, err, errTooBig)
}

func TestCountingWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cw := &CountingWriter{W: &buf}
	_, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = cw.Write([]byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, uint64(11), cw.N)

	cw.N = math.MaxUint64
	_, err = cw.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrOverflow)
}
