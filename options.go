package rpm

import (
	"log/slog"

	"github.com/meigma/rpm/internal/compress"
	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/extract"
	"github.com/meigma/rpm/internal/header"
)

// Default decode limits.
const (
	DefaultMaxHeaderSize = header.DefaultMaxDataSize
	DefaultMaxIndexCount = header.DefaultMaxIndexCount
	DefaultMaxNameSize   = cpio.DefaultMaxNameSize
	DefaultMaxEntrySize  = cpio.DefaultMaxEntrySize
)

type openConfig struct {
	maxHeaderSize    uint32
	maxIndexCount    uint32
	maxNameSize      uint32
	maxEntrySize     uint64
	maxDecoderMemory uint64
	codecs           map[string]Codec
	compressor       string
	concurrency      int
}

// Option configures Open.
type Option func(*openConfig)

// WithMaxHeaderSize caps the declared data size of each header.
func WithMaxHeaderSize(n uint32) Option {
	return func(c *openConfig) {
		c.maxHeaderSize = n
	}
}

// WithMaxIndexCount caps the declared index entry count of each header.
func WithMaxIndexCount(n uint32) Option {
	return func(c *openConfig) {
		c.maxIndexCount = n
	}
}

// WithMaxNameSize caps payload entry name sizes.
func WithMaxNameSize(n uint32) Option {
	return func(c *openConfig) {
		c.maxNameSize = n
	}
}

// WithMaxEntrySize caps the content size of a single payload entry.
func WithMaxEntrySize(n uint64) Option {
	return func(c *openConfig) {
		c.maxEntrySize = n
	}
}

// WithMaxDecoderMemory caps the memory a zstd payload decoder may allocate.
func WithMaxDecoderMemory(n uint64) Option {
	return func(c *openConfig) {
		c.maxDecoderMemory = n
	}
}

// WithCodec registers an additional payload compressor, or replaces a
// built-in one.
func WithCodec(name string, codec Codec) Option {
	return func(c *openConfig) {
		if c.codecs == nil {
			c.codecs = make(map[string]Codec)
		}
		c.codecs[name] = codec
	}
}

// WithCompressor forces the payload compressor, ignoring the header tag.
func WithCompressor(name string) Option {
	return func(c *openConfig) {
		c.compressor = name
	}
}

func (c *openConfig) registry() *compress.Registry {
	reg := compress.Default(compress.WithDecoderMaxMemory(c.maxDecoderMemory))
	for name, codec := range c.codecs {
		reg.Register(name, codec)
	}
	return reg
}

func (c *openConfig) headerOptions() []header.DecodeOption {
	var opts []header.DecodeOption
	if c.maxHeaderSize != 0 {
		opts = append(opts, header.WithMaxDataSize(c.maxHeaderSize))
	}
	if c.maxIndexCount != 0 {
		opts = append(opts, header.WithMaxIndexCount(c.maxIndexCount))
	}
	return opts
}

func (c *openConfig) archiveOptions() []cpio.ReaderOption {
	var opts []cpio.ReaderOption
	if c.maxNameSize != 0 {
		opts = append(opts, cpio.WithMaxNameSize(c.maxNameSize))
	}
	if c.maxEntrySize != 0 {
		opts = append(opts, cpio.WithMaxEntrySize(c.maxEntrySize))
	}
	return opts
}

// ExtractPolicy decides what happens to an entry with an unsafe path.
type ExtractPolicy = extract.Policy

// Extraction policies.
const (
	// PolicyAbort stops extraction at the first unsafe entry.
	PolicyAbort = extract.PolicyAbort
	// PolicySkip skips unsafe entries and reports them in ExtractResult.
	PolicySkip = extract.PolicySkip
)

type extractConfig struct {
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
	changeOwner   bool
	policy        ExtractPolicy
	logger        *slog.Logger
	progress      ProgressFunc
}

// ExtractOption configures Package.Extract.
type ExtractOption func(*extractConfig)

// ExtractWithOverwrite replaces existing files. By default they are kept.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(c *extractConfig) {
		c.overwrite = overwrite
	}
}

// ExtractWithPreserveMode applies permission bits from the payload.
// Enabled by default.
func ExtractWithPreserveMode(preserve bool) ExtractOption {
	return func(c *extractConfig) {
		c.preserveMode = preserve
	}
}

// ExtractWithPreserveTimes applies modification times from the payload.
// Enabled by default.
func ExtractWithPreserveTimes(preserve bool) ExtractOption {
	return func(c *extractConfig) {
		c.preserveTimes = preserve
	}
}

// ExtractWithOwner applies numeric ownership from the payload. This usually
// requires privileges.
func ExtractWithOwner(change bool) ExtractOption {
	return func(c *extractConfig) {
		c.changeOwner = change
	}
}

// ExtractWithPolicy sets the unsafe-path policy. The default is PolicyAbort.
func ExtractWithPolicy(p ExtractPolicy) ExtractOption {
	return func(c *extractConfig) {
		c.policy = p
	}
}

// ExtractWithLogger sets a logger for extraction events.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(c *extractConfig) {
		c.logger = logger
	}
}

// ExtractWithProgress sets a callback receiving one event per entry.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(c *extractConfig) {
		c.progress = fn
	}
}

// WithConcurrency sets how many packages OpenAll processes at once. Values
// below one mean runtime.GOMAXPROCS(0). Open ignores it.
func WithConcurrency(n int) Option {
	return func(c *openConfig) {
		c.concurrency = n
	}
}
