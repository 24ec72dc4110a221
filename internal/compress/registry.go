// Package compress maps payload compressor identifiers to stream codecs.
//
// The registry imposes no limit on decompressed size; consumers bound what
// they allocate while reading the decompressed stream.
package compress

import (
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/meigma/rpm/internal/rpmtype"
)

// Codec is a payload compression format.
type Codec interface {
	// NewReader returns a stream that decompresses r.
	NewReader(r io.Reader) (io.ReadCloser, error)
	// NewWriter returns a stream that compresses into w. A level of zero
	// selects the codec default.
	NewWriter(w io.Writer, level int) (io.WriteCloser, error)
}

// Compressor identifiers.
const (
	None  = "none"
	CPIO  = "cpio"
	Gzip  = "gzip"
	Bzip2 = "bzip2"
	XZ    = "xz"
	LZMA  = "lzma"
	Zstd  = "zstd"
	LZ4   = "lz4"
)

// DefaultCompressor is assumed when a package carries no compressor tag.
const DefaultCompressor = Gzip

// Registry maps normalized compressor identifiers to codecs.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

type registryConfig struct {
	maxDecoderMemory uint64
}

// Option configures the default registry.
type Option func(*registryConfig)

// WithDecoderMaxMemory caps the memory a zstd decoder may allocate.
func WithDecoderMaxMemory(n uint64) Option {
	return func(c *registryConfig) {
		c.maxDecoderMemory = n
	}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Default returns a new registry holding the built-in codecs.
func Default(opts ...Option) *Registry {
	var cfg registryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := NewRegistry()
	r.Register(None, noneCodec{})
	r.Register(CPIO, noneCodec{})
	r.Register(Gzip, gzipCodec{})
	r.Register(Bzip2, bzip2Codec{})
	r.Register(XZ, xzCodec{})
	r.Register(LZMA, lzmaCodec{})
	r.Register(Zstd, zstdCodec{pool: NewDecoderPool(cfg.maxDecoderMemory)})
	r.Register(LZ4, lz4Codec{})
	return r
}

// Normalize lower-cases and trims a compressor identifier.
// An empty identifier means DefaultCompressor.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultCompressor
	}
	return name
}

// ParseLevel extracts a compression level from a payload flags value such as
// "9" or "19". Anything without a leading number yields 0.
func ParseLevel(flags string) int {
	flags = strings.TrimSpace(flags)
	end := 0
	for end < len(flags) && flags[end] >= '0' && flags[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	level, err := strconv.Atoi(flags[:end])
	if err != nil {
		return 0
	}
	return level
}

// Register adds or replaces the codec for name.
func (r *Registry) Register(name string, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[Normalize(name)] = c
}

// Lookup returns the codec registered for name.
func (r *Registry) Lookup(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[Normalize(name)]
	return c, ok
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Decode returns a decompressed view of src. Errors from the codec, both
// at construction and while reading, wrap rpmtype.ErrCompression.
func (r *Registry) Decode(name string, src io.Reader) (io.ReadCloser, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, rpmtype.Errorf(rpmtype.SectionPayload, rpmtype.ErrUnsupportedCompression, "%q", name)
	}
	rc, err := c.NewReader(src)
	if err != nil {
		return nil, rpmtype.Wrap(rpmtype.SectionPayload, rpmtype.ErrCompression, err, Normalize(name))
	}
	if _, plain := c.(noneCodec); plain {
		return rc, nil
	}
	return &codecReader{rc: rc, name: Normalize(name)}, nil
}

// Encode returns a stream that compresses into dst.
func (r *Registry) Encode(name string, dst io.Writer, level int) (io.WriteCloser, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, rpmtype.Errorf(rpmtype.SectionPayload, rpmtype.ErrUnsupportedCompression, "%q", name)
	}
	wc, err := c.NewWriter(dst, level)
	if err != nil {
		return nil, rpmtype.Wrap(rpmtype.SectionPayload, rpmtype.ErrCompression, err, Normalize(name))
	}
	return wc, nil
}

// codecReader tags codec failures with ErrCompression.
type codecReader struct {
	rc   io.ReadCloser
	name string
}

func (c *codecReader) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		var fe *rpmtype.FormatError
		if !errors.As(err, &fe) {
			err = rpmtype.Wrap(rpmtype.SectionPayload, rpmtype.ErrCompression, err, c.name)
		}
	}
	return n, err
}

func (c *codecReader) Close() error {
	return c.rc.Close()
}
