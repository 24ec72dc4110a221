package textutil

import "errors"

// HexWidth is the width of a fixed-width hex field in a cpio header.
const HexWidth = 8

// ErrHexDigit is returned when a fixed-width hex field holds a non-hex byte.
var ErrHexDigit = errors.New("invalid hex digit")

const hexDigits = "0123456789abcdef"

// ParseHex32 decodes an 8-character ASCII hex field. Both cases are accepted.
func ParseHex32(b []byte) (uint32, error) {
	if len(b) != HexWidth {
		return 0, ErrHexDigit
	}
	var v uint32
	for _, c := range b {
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, ErrHexDigit
		}
		v = v<<4 | uint32(d)
	}
	return v, nil
}

// AppendHex32 appends v as 8 lower-case hex characters, zero-padded.
func AppendHex32(dst []byte, v uint32) []byte {
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(v>>uint(shift))&0xf])
	}
	return dst
}
