package scanner

import (
	"errors"
	"io"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// ErrCompressionFailed indicates a failure opening a compressed stream.
var ErrCompressionFailed = errors.New("failed to open compressed stream")

// compressionSuffix reports the compression extension on name, if any, and
// the name with that suffix trimmed.
func compressionSuffix(name string) (suffix, trimmed string) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return ".gz", name[:len(name)-3]
	case strings.HasSuffix(lower, ".zstd"):
		return ".zstd", name[:len(name)-5]
	case strings.HasSuffix(lower, ".zst"):
		return ".zst", name[:len(name)-4]
	default:
		return "", name
	}
}

// decompress wraps r with the decoder implied by suffix (".gz", ".zst" or
// ".zstd"); suffix == "" returns r unchanged.
func decompress(r io.Reader, suffix string) (io.ReadCloser, error) {
	switch suffix {
	case ".gz":
		return newParallelGzipReader(r)
	case ".zst", ".zstd":
		return newZstdDecoder(r)
	default:
		return io.NopCloser(r), nil
	}
}

// newParallelGzipReader returns a pgzip reader configured for parallel
// decompression, capped so large hosts don't spawn excessive goroutines.
func newParallelGzipReader(r io.Reader) (*pgzip.Reader, error) {
	threads := runtime.GOMAXPROCS(0)
	if threads < 1 {
		threads = 1
	}
	if threads > 8 {
		threads = 8
	}
	const blockSize = 1 << 20
	return pgzip.NewReaderN(r, blockSize, threads)
}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func newZstdDecoder(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{Decoder: dec}, nil
}
