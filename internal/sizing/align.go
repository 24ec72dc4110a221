package sizing

import (
	"errors"
	"io"
	"math"
)

// Pad returns the number of bytes needed to advance n to the next multiple of align.
// An align of zero or one never needs padding.
func Pad(n, align uint64) uint64 {
	if align <= 1 {
		return 0
	}
	return (align - n%align) % align
}

// Skip discards exactly n bytes from r.
// A short stream is reported as io.ErrUnexpectedEOF.
func Skip(r io.Reader, n uint64) error {
	if n == 0 {
		return nil
	}
	if n > math.MaxInt64 {
		return io.ErrUnexpectedEOF
	}
	_, err := io.CopyN(io.Discard, r, int64(n))
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
