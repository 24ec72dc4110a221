package rpm

import (
	"errors"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/extract"
	"github.com/meigma/rpm/internal/index"
	"github.com/meigma/rpm/internal/sizing"
)

// Index is a loaded payload file index.
//
// The index records, for every payload entry, its content offset within the
// decompressed payload and the SHA-256 of its content, so a caller holding
// the decompressed stream can seek straight to one file.
type Index = index.Index

// IndexEntry is a read-only view of one index entry.
type IndexEntry = index.EntryView

// LoadIndex parses an index produced by BuildIndex. data is retained.
func LoadIndex(data []byte) (*Index, error) {
	return index.Load(data)
}

// BuildIndex reads the whole payload and returns a FlatBuffers index of its
// entries. Paths are stored without their leading "./".
func (p *Package) BuildIndex() ([]byte, error) {
	rc, err := p.PayloadReader()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	payloadDigest := digest.SHA256.Digester()
	counted := &sizing.CountingReader{R: io.TeeReader(rc, payloadDigest.Hash())}
	ar := cpio.NewReader(counted, p.cfg.archiveOptions()...)

	var entries []index.Entry
	for {
		hdr, err := ar.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name, err := extract.CleanName(hdr.Name)
		if err != nil {
			return nil, err
		}
		e := index.Entry{
			Path:       name,
			Mode:       hdr.Mode,
			Size:       uint64(hdr.FileSize),
			DataOffset: ar.DataOffset(),
			ModTime:    int64(hdr.MTime),
			UID:        hdr.UID,
			GID:        hdr.GID,
		}
		switch {
		case hdr.IsSymlink():
			target, err := io.ReadAll(ar)
			if err != nil {
				return nil, err
			}
			e.LinkTarget = string(target)
		case hdr.IsRegular():
			d := digest.SHA256.Digester()
			if _, err := io.Copy(d.Hash(), ar); err != nil {
				return nil, err
			}
			e.Hash = d.Hash().Sum(nil)
		}
		entries = append(entries, e)
	}
	// Drain anything after the trailer so the payload digest covers the
	// whole stream.
	if _, err := io.Copy(io.Discard, counted); err != nil {
		return nil, err
	}

	info := p.Info()
	return index.Build(index.Meta{
		Package:     info.NEVRA(),
		Compressor:  p.compressor,
		PayloadSize: counted.N,
		PayloadHash: payloadDigest.Hash().Sum(nil),
	}, entries), nil
}
