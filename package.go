package rpm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"strings"

	"github.com/meigma/rpm/internal/compress"
	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/header"
	"github.com/meigma/rpm/internal/lead"
	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/sizing"
	"github.com/meigma/rpm/internal/tag"
)

// Package is an opened RPM package. The lead and both headers are decoded
// by Open; the payload is read lazily.
//
// A Package is not safe for concurrent use.
type Package struct {
	cfg openConfig
	reg *compress.Registry

	lead       Lead
	sig        *Header
	hdr        *Header
	compressor string
	offset     uint64

	// rs is set when the source can seek, making the payload re-readable.
	rs       io.ReadSeeker
	start    int64
	payload  *bufio.Reader
	consumed bool
	closer   io.Closer
}

// Open decodes the lead, signature header, and metadata header from r and
// positions the package at the start of its payload.
//
// When r is an io.Seeker the payload may be read any number of times;
// otherwise it can be read once.
func Open(r io.Reader, opts ...Option) (*Package, error) {
	var cfg openConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Package{cfg: cfg, reg: cfg.registry()}
	if rs, ok := r.(io.ReadSeeker); ok {
		if start, err := rs.Seek(0, io.SeekCurrent); err == nil {
			p.rs = rs
			p.start = start
		}
	}

	cr := &sizing.CountingReader{R: r}
	l, err := lead.Decode(cr)
	if err != nil {
		return nil, err
	}
	p.lead = l

	p.sig, err = header.Decode(cr, append(cfg.headerOptions(),
		header.WithSection(rpmtype.SectionSignature),
		header.WithTagSet(tag.Signature),
	)...)
	if err != nil {
		return nil, err
	}
	if err := sizing.Skip(cr, sizing.Pad(cr.N-lead.Size, 8)); err != nil {
		return nil, fmt.Errorf("skip signature padding: %w", err)
	}

	p.hdr, err = header.Decode(cr, append(cfg.headerOptions(),
		header.WithSection(rpmtype.SectionHeader),
		header.WithTagSet(tag.Header),
	)...)
	if err != nil {
		return nil, err
	}
	p.offset = cr.N

	p.payload = bufio.NewReader(cr)
	p.compressor = p.resolveCompressor()
	return p, nil
}

// OpenFile opens the package at name. Close releases the file.
func OpenFile(name string, opts ...Option) (*Package, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	p, err := Open(f, opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	p.closer = f
	return p, nil
}

// resolveCompressor picks the payload compressor: an explicit option wins,
// then the PayloadCompressor tag, then the payload's magic bytes. Packages
// with none of these are gzip, the historical rpm default.
func (p *Package) resolveCompressor() string {
	if p.cfg.compressor != "" {
		return compress.Normalize(p.cfg.compressor)
	}
	if name, ok := p.hdr.String(tag.PayloadCompressor); ok && strings.TrimSpace(name) != "" {
		return compress.Normalize(name)
	}
	prefix, _ := p.payload.Peek(compress.DetectSize) //nolint:errcheck // a short payload is detected as-is
	if name, ok := compress.Detect(prefix); ok {
		return name
	}
	return compress.DefaultCompressor
}

// Close releases the underlying file when the package was opened with
// OpenFile.
func (p *Package) Close() error {
	if p.closer == nil {
		return nil
	}
	c := p.closer
	p.closer = nil
	return c.Close()
}

// Lead returns the package lead.
func (p *Package) Lead() Lead { return p.lead }

// Signature returns the decoded signature header.
func (p *Package) Signature() *Header { return p.sig }

// Header returns the decoded metadata header.
func (p *Package) Header() *Header { return p.hdr }

// Compressor returns the normalized payload compressor identifier.
func (p *Package) Compressor() string { return p.compressor }

// PayloadOffset returns the byte offset of the compressed payload from the
// start of the package.
func (p *Package) PayloadOffset() uint64 { return p.offset }

// Diagnostics returns the tolerated decode conditions of both headers,
// signature header first.
func (p *Package) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(p.sig.Diagnostics)+len(p.hdr.Diagnostics))
	out = append(out, p.sig.Diagnostics...)
	return append(out, p.hdr.Diagnostics...)
}

// RawPayload returns the compressed payload stream.
func (p *Package) RawPayload() (io.Reader, error) {
	if !p.consumed {
		p.consumed = true
		return p.payload, nil
	}
	if p.rs == nil {
		return nil, ErrPayloadConsumed
	}
	pos := p.start + int64(p.offset) //nolint:gosec // offset is bounded by header caps
	if _, err := p.rs.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to payload: %w", err)
	}
	p.payload.Reset(p.rs)
	return p.payload, nil
}

// PayloadReader returns the decompressed payload: a cpio newc archive, as
// rpm2cpio writes it.
func (p *Package) PayloadReader() (io.ReadCloser, error) {
	raw, err := p.RawPayload()
	if err != nil {
		return nil, err
	}
	return p.reg.Decode(p.compressor, raw)
}

// Entries returns the payload entries in archive order. The trailer is
// never yielded. Each call starts from the beginning of the payload; on
// a non-seekable source only the first call succeeds and later calls yield
// ErrPayloadConsumed.
//
// An Entry's content is readable only until the iteration advances.
func (p *Package) Entries() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		rc, err := p.PayloadReader()
		if err != nil {
			yield(nil, err)
			return
		}
		defer rc.Close()

		ar := cpio.NewReader(rc, p.cfg.archiveOptions()...)
		for {
			hdr, err := ar.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(&Entry{EntryMeta: *hdr, r: ar}, nil) {
				return
			}
		}
	}
}

// Entry is one payload entry. Read streams its content.
type Entry struct {
	EntryMeta
	r *cpio.Reader
}

// Read reads entry content. Symlink entries carry their target as content.
func (e *Entry) Read(b []byte) (int, error) {
	return e.r.Read(b)
}

// Bytes reads the remaining entry content.
func (e *Entry) Bytes() ([]byte, error) {
	return io.ReadAll(e)
}

// Path returns the entry name as an absolute install path, the way rpm
// lists package files.
func (e *Entry) Path() string {
	return InstallPath(e.Name)
}

// InstallPath converts a payload entry name such as "./usr/bin/x" to the
// install path "/usr/bin/x".
func InstallPath(name string) string {
	return path.Clean("/" + strings.TrimPrefix(name, "./"))
}
