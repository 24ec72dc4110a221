package compress

import (
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

type noneCodec struct{}

func (noneCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (noneCodec) NewWriter(w io.Writer, _ int) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type gzipCodec struct{}

func (gzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (gzipCodec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level <= 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, min(level, gzip.BestCompression))
}

type bzip2Codec struct{}

func (bzip2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}

func (bzip2Codec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level <= 0 {
		level = bzip2.DefaultCompression
	}
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: min(level, bzip2.BestCompression)})
}

type xzCodec struct{}

func (xzCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

// NewWriter ignores level: the xz encoder exposes dictionary size, not presets.
func (xzCodec) NewWriter(w io.Writer, _ int) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

// lzmaCodec handles the legacy .lzma ("LZMA alone") container.
type lzmaCodec struct{}

func (lzmaCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(lr), nil
}

func (lzmaCodec) NewWriter(w io.Writer, _ int) (io.WriteCloser, error) {
	return lzma.NewWriter(w)
}

type zstdCodec struct {
	pool *DecoderPool
}

func (c zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, release, err := c.pool.Get(r)
	if err != nil {
		return nil, err
	}
	return &releaseReader{Reader: dec, release: release}, nil
}

func (zstdCodec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	encLevel := zstd.SpeedDefault
	if level > 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(encLevel), zstd.WithEncoderConcurrency(1))
}

// lz4Codec is not an rpm payload compressor; it is registered so locally
// built archives can use a fast frame format.
type lz4Codec struct{}

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (lz4Codec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if level > 0 {
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
			return nil, err
		}
	}
	return zw, nil
}

func lz4Level(level int) lz4.CompressionLevel {
	if level >= 9 {
		return lz4.Level9
	}
	return lz4.CompressionLevel(1 << (8 + level))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type releaseReader struct {
	io.Reader
	release func()
}

func (r *releaseReader) Close() error {
	if r.release != nil {
		r.release()
		r.release = nil
	}
	return nil
}
