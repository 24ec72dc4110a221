// Package textutil holds the small byte-level text helpers shared by the
// header and archive codecs.
package textutil

import "bytes"

// CString returns the prefix of b before the first NUL byte,
// or all of b when no NUL is present.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// SplitCStrings reads n consecutive NUL-terminated strings from b.
// The final string may end at the end of b instead of a NUL.
// Returns ok=false if b holds fewer than n strings.
func SplitCStrings(b []byte, n int) (out []string, ok bool) {
	if n <= 0 {
		return []string{}, true
	}
	// Each string takes at least one byte unless it is the unterminated tail.
	if n > len(b)+1 {
		return nil, false
	}
	out = make([]string, 0, n)
	for i := range n {
		j := bytes.IndexByte(b, 0)
		if j < 0 {
			if i != n-1 {
				return nil, false
			}
			out = append(out, string(b))
			break
		}
		out = append(out, string(b[:j]))
		b = b[j+1:]
	}
	return out, true
}

// AppendCString appends s and a terminating NUL to dst.
func AppendCString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, 0)
}
