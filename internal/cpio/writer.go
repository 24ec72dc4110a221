package cpio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/sizing"
	"github.com/meigma/rpm/internal/textutil"
)

var (
	// ErrWriteTooLong is returned when more content is written than the header declared.
	ErrWriteTooLong = errors.New("cpio: write too long")

	// ErrMissingContent is returned when an entry is finished before all declared content was written.
	ErrMissingContent = errors.New("cpio: missing entry content")

	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("cpio: writer closed")

	errFileTooLarge = errors.New("cpio: file too large for newc format")
)

// Writer writes a newc archive.
type Writer struct {
	cw        sizing.CountingWriter
	remaining uint64
	pad       uint64
	closed    bool
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: sizing.CountingWriter{W: w}}
}

// WriteHeader finishes the current entry and writes hdr. Content of
// hdr.FileSize bytes must follow through Write.
func (w *Writer) WriteHeader(hdr *Header) error {
	if w.closed {
		return ErrClosed
	}
	if err := validName(hdr.Name); err != nil {
		return err
	}
	if err := w.finishEntry(); err != nil {
		return err
	}
	return w.writeHeader(hdr)
}

func (w *Writer) writeHeader(hdr *Header) error {
	nameSize := uint64(len(hdr.Name)) + 1
	if nameSize > math.MaxUint32 {
		return rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrOversizedField, "name size %d", nameSize)
	}
	buf := make([]byte, 0, HeaderSize+nameSize+4)
	buf = append(buf, Magic...)
	for _, v := range [13]uint32{
		hdr.Inode, hdr.Mode, hdr.UID, hdr.GID, hdr.NLink, hdr.MTime, hdr.FileSize,
		hdr.DevMajor, hdr.DevMinor, hdr.RDevMajor, hdr.RDevMinor,
		uint32(nameSize), hdr.Checksum,
	} {
		buf = textutil.AppendHex32(buf, v)
	}
	buf = textutil.AppendCString(buf, hdr.Name)
	buf = append(buf, make([]byte, sizing.Pad(HeaderSize+nameSize, 4))...)
	if _, err := w.cw.Write(buf); err != nil {
		return fmt.Errorf("write entry header: %w", err)
	}
	w.remaining = uint64(hdr.FileSize)
	w.pad = sizing.Pad(uint64(hdr.FileSize), 4)
	return nil
}

// Write writes content of the current entry. Writing past the declared size
// writes what fits and returns ErrWriteTooLong.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	tooLong := false
	if uint64(len(p)) > w.remaining {
		p = p[:w.remaining]
		tooLong = true
	}
	n, err := w.cw.Write(p)
	w.remaining -= uint64(n) //nolint:gosec // n is non-negative
	if err == nil && tooLong {
		err = ErrWriteTooLong
	}
	return n, err
}

// WriteEntry writes hdr with content as its data. hdr.FileSize is set
// from len(content).
func (w *Writer) WriteEntry(hdr *Header, content []byte) error {
	if uint64(len(content)) > math.MaxUint32 {
		return errFileTooLarge
	}
	h := *hdr
	h.FileSize = uint32(len(content)) //nolint:gosec // checked above
	if err := w.WriteHeader(&h); err != nil {
		return err
	}
	_, err := w.Write(content)
	return err
}

// Close finishes the current entry and writes the trailer. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.finishEntry(); err != nil {
		return err
	}
	if err := w.writeHeader(&Header{Name: Trailer, NLink: 1}); err != nil {
		return err
	}
	w.closed = true
	return nil
}

// Written returns the number of archive bytes written so far.
func (w *Writer) Written() uint64 {
	return w.cw.N
}

func (w *Writer) finishEntry() error {
	if w.remaining > 0 {
		return fmt.Errorf("%w: %d bytes", ErrMissingContent, w.remaining)
	}
	if w.pad > 0 {
		var zero [4]byte
		if _, err := w.cw.Write(zero[:w.pad]); err != nil {
			return fmt.Errorf("write entry padding: %w", err)
		}
		w.pad = 0
	}
	return nil
}

func validName(name string) error {
	switch {
	case name == "":
		return rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrInvalidName, "empty name")
	case !utf8.ValidString(name), bytes.IndexByte([]byte(name), 0) >= 0:
		return rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrInvalidName, "%q", name)
	case name == Trailer:
		return rpmtype.Errorf(rpmtype.SectionArchive, rpmtype.ErrInvalidName, "reserved name %q", name)
	}
	return nil
}
