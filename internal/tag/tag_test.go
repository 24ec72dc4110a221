package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NAME", Header.Name(Name))
	assert.Equal(t, "BASENAMES", Header.Name(BaseNames))
	assert.Equal(t, "PAYLOADCOMPRESSOR", Header.Name(PayloadCompressor))
	assert.Equal(t, "424242", Header.Name(424242))
	assert.False(t, Header.Contains(424242))

	got, ok := Header.Lookup("DIRNAMES")
	require.True(t, ok)
	assert.Equal(t, uint32(DirNames), got)
}

func TestSignatureTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SIZE", Signature.Name(SigSize))
	assert.Equal(t, "SHA256HEADER", Signature.Name(SigSHA256))
	assert.True(t, Signature.Contains(HeaderSignatures))
}

func TestTagsSorted(t *testing.T) {
	t.Parallel()

	tags := Signature.Tags()
	require.NotEmpty(t, tags)
	assert.IsNonDecreasing(t, tags)
}
