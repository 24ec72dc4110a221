package cpio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/sizing"
	"github.com/meigma/rpm/internal/textutil"
)

// Reader reads entries from a newc archive.
type Reader struct {
	cr           sizing.CountingReader
	maxNameSize  uint32
	maxEntrySize uint64

	remaining  uint64
	pad        uint64
	dataOffset uint64
	done       bool
	err        error
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxNameSize caps the declared name size, including its terminator.
func WithMaxNameSize(n uint32) ReaderOption {
	return func(r *Reader) {
		r.maxNameSize = n
	}
}

// WithMaxEntrySize caps the declared content size of a single entry.
func WithMaxEntrySize(n uint64) ReaderOption {
	return func(r *Reader) {
		r.maxEntrySize = n
	}
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	rd := &Reader{
		cr:           sizing.CountingReader{R: r},
		maxNameSize:  DefaultMaxNameSize,
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Next advances to the next entry, discarding any unread content of the
// current one. It returns io.EOF once the trailer entry has been read; the
// trailer itself is never returned.
func (r *Reader) Next() (*Header, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.done {
		return nil, io.EOF
	}
	h, err := r.next()
	if err != nil {
		if errors.Is(err, io.EOF) && r.done {
			return nil, io.EOF
		}
		r.err = err
		return nil, err
	}
	return h, nil
}

func (r *Reader) next() (*Header, error) {
	if err := sizing.Skip(&r.cr, r.remaining+r.pad); err != nil {
		return nil, fmt.Errorf("skip entry content: %w", err)
	}
	r.remaining, r.pad = 0, 0

	var buf [HeaderSize]byte
	if _, err := io.ReadFull(&r.cr, buf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			// The stream ended without a trailer.
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read entry header: %w", err)
	}
	h, nameSize, err := parseHeader(&buf)
	if err != nil {
		return nil, err
	}
	if nameSize == 0 {
		return nil, rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrInvalidName, "empty name")
	}
	if nameSize > r.maxNameSize {
		return nil, rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrOversizedField,
			"name size %d exceeds limit %d", nameSize, r.maxNameSize)
	}

	name := make([]byte, nameSize)
	if _, err := io.ReadFull(&r.cr, name); err != nil {
		return nil, fmt.Errorf("read entry name: %w", err)
	}
	if err := sizing.Skip(&r.cr, sizing.Pad(HeaderSize+uint64(nameSize), 4)); err != nil {
		return nil, fmt.Errorf("skip name padding: %w", err)
	}
	if name[nameSize-1] != 0 || bytes.IndexByte(name[:nameSize-1], 0) >= 0 || !utf8.Valid(name[:nameSize-1]) {
		return nil, rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrInvalidName, "%q", textutil.CString(name))
	}
	h.Name = string(name[:nameSize-1])

	size := uint64(h.FileSize)
	if h.Name == Trailer {
		r.done = true
		if err := sizing.Skip(&r.cr, size+sizing.Pad(size, 4)); err != nil {
			return nil, fmt.Errorf("skip trailer content: %w", err)
		}
		return nil, io.EOF
	}
	if size > r.maxEntrySize {
		return nil, rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrOversizedField,
			"%s: size %d exceeds limit %d", h.Name, size, r.maxEntrySize)
	}

	r.remaining = size
	r.pad = sizing.Pad(size, 4)
	r.dataOffset = r.cr.N
	return h, nil
}

// Read reads content of the current entry. It returns io.EOF at the end of
// the entry.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	n, err := r.cr.Read(p)
	r.remaining -= uint64(n) //nolint:gosec // n is non-negative
	if errors.Is(err, io.EOF) {
		if r.remaining > 0 {
			r.err = fmt.Errorf("read entry content: %w", io.ErrUnexpectedEOF)
			return n, r.err
		}
		err = nil
	}
	if err != nil {
		r.err = err
	}
	return n, err
}

// ReadEntry advances to the next entry and reads all of its content.
// The content size is bounded by the reader's entry size limit.
func (r *Reader) ReadEntry() (*Header, []byte, error) {
	h, err := r.Next()
	if err != nil {
		return nil, nil, err
	}
	content := make([]byte, h.FileSize)
	if _, err := io.ReadFull(r, content); err != nil {
		return nil, nil, err
	}
	return h, content, nil
}

// DataOffset returns the position of the current entry's content within the
// archive stream.
func (r *Reader) DataOffset() uint64 {
	return r.dataOffset
}

// parseHeader decodes the fixed header fields and returns the declared name size.
func parseHeader(buf *[HeaderSize]byte) (*Header, uint32, error) {
	if string(buf[:6]) != Magic {
		return nil, 0, rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrBadMagic, "%q", buf[:6])
	}
	var fields [13]uint32
	for i := range fields {
		start := 6 + i*textutil.HexWidth
		v, err := textutil.ParseHex32(buf[start : start+textutil.HexWidth])
		if err != nil {
			return nil, 0, rpmtype.Wrap(rpmtype.SectionArchive, rpmtype.ErrInvalidEncoding, err,
				fmt.Sprintf("header field %d", i))
		}
		fields[i] = v
	}
	h := &Header{
		Inode:     fields[0],
		Mode:      fields[1],
		UID:       fields[2],
		GID:       fields[3],
		NLink:     fields[4],
		MTime:     fields[5],
		FileSize:  fields[6],
		DevMajor:  fields[7],
		DevMinor:  fields[8],
		RDevMajor: fields[9],
		RDevMinor: fields[10],
		Checksum:  fields[12],
	}
	return h, fields[11], nil
}
