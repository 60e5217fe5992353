package stream

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Codec names the optional compression codecs attachable to either end of
// the stream driver.
type Codec string

const (
	None Codec = ""
	Zstd Codec = "zstd"
	Gzip Codec = "gzip"
)

// CodecForFile infers a codec from a file's extension, falling back to
// None when unrecognised; used when --compress-output is not given
// explicitly but the output path carries a known extension.
func CodecForFile(path string) Codec {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	default:
		return None
	}
}

// OpenInput opens path for reading, transparently decompressing according
// to codec (or the file's extension, if codec is None).
func OpenInput(path string, codec Codec) (io.ReadCloser, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file %q: %w", path, err)
	}
	if codec == None {
		codec = CodecForFile(path)
	}
	switch codec {
	case Zstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to open zstd stream %q: %w", path, err)
		}
		return io.NopCloser(zr), func() error { zr.Close(); return f.Close() }, nil
	case Gzip:
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to open gzip stream %q: %w", path, err)
		}
		return gr, func() error {
			gr.Close()
			return f.Close()
		}, nil
	default:
		return f, f.Close, nil
	}
}

// OpenOutput opens path for writing, transparently compressing according
// to codec.
func OpenOutput(path string, codec Codec) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	switch codec {
	case Zstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open zstd writer %q: %w", path, err)
		}
		return &chainedCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
	case Gzip:
		gw := gzip.NewWriter(f)
		return &chainedCloser{Writer: gw, closers: []io.Closer{gw, f}}, nil
	default:
		return f, nil
	}
}

// chainedCloser closes an inner codec writer before the underlying file,
// so compressed trailers are flushed before the file descriptor closes.
type chainedCloser struct {
	io.Writer
	closers []io.Closer
}

func (c *chainedCloser) Close() error {
	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Uncompress decompresses a zstd-compressed file to w, the collaborator
// behind the `uncompress` subcommand.
func Uncompress(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file %q: %w", path, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to open zstd stream %q: %w", path, err)
	}
	defer zr.Close()

	if _, err := io.Copy(w, zr); err != nil {
		return fmt.Errorf("failed decompressing %q: %w", path, err)
	}
	return nil
}
