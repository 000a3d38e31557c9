// Package compression provides the pluggable page-archive codec
// pkg/storage's checkpointer uses to shrink a batch of dirty pages
// before writing them to disk. It has no knowledge of page layout —
// it only turns bytes into smaller bytes and back.
package compression

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

// Algorithm selects which codec a Compressor runs.
type Algorithm int

const (
	AlgorithmNone Algorithm = iota
	AlgorithmSnappy
	AlgorithmZstd
	AlgorithmGzip
	AlgorithmZlib
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmSnappy:
		return "snappy"
	case AlgorithmZstd:
		return "zstd"
	case AlgorithmGzip:
		return "gzip"
	case AlgorithmZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// Config selects an Algorithm and its level, where the algorithm
// supports one (gzip/zlib 0-9, zstd 1-19; ignored otherwise).
type Config struct {
	Algorithm Algorithm
	Level     int
}

// DefaultConfig is zstd at its balanced default level — the
// checkpointer's default when the caller supplies no Config.
func DefaultConfig() *Config {
	return &Config{Algorithm: AlgorithmZstd, Level: 3}
}

// Compressor runs one Algorithm's compress/decompress pair, reusing a
// scratch buffer and (for zstd) a pre-built encoder/decoder across
// calls instead of allocating one per archived page.
type Compressor struct {
	config  *Config
	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
	scratch bytes.Buffer
}

// NewCompressor builds a Compressor for cfg, or DefaultConfig() if cfg
// is nil.
func NewCompressor(cfg *Config) (*Compressor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Compressor{config: cfg}

	if cfg.Algorithm == AlgorithmZstd {
		var err error
		level := cfg.Level
		if level < 1 || level > 19 {
			level = 3
		}
		c.zstdEnc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("compression: create zstd encoder: %w", err)
		}
		c.zstdDec, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("compression: create zstd decoder: %w", err)
		}
	}
	return c, nil
}

// Compress returns data encoded under c's algorithm. An empty input
// round-trips as empty without touching the codec.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	switch c.config.Algorithm {
	case AlgorithmNone:
		return data, nil
	case AlgorithmSnappy:
		return snappy.Encode(nil, data), nil
	case AlgorithmZstd:
		return c.zstdEnc.EncodeAll(data, nil), nil
	case AlgorithmGzip:
		c.scratch.Reset()
		w, err := gzip.NewWriterLevel(&c.scratch, c.config.Level)
		if err != nil {
			return nil, fmt.Errorf("compression: gzip writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("compression: gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("compression: gzip close: %w", err)
		}
		return append([]byte(nil), c.scratch.Bytes()...), nil
	case AlgorithmZlib:
		c.scratch.Reset()
		w, err := zlib.NewWriterLevel(&c.scratch, c.config.Level)
		if err != nil {
			return nil, fmt.Errorf("compression: zlib writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("compression: zlib write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("compression: zlib close: %w", err)
		}
		return append([]byte(nil), c.scratch.Bytes()...), nil
	default:
		return nil, fmt.Errorf("compression: unsupported algorithm %v", c.config.Algorithm)
	}
}

// Decompress reverses Compress.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	switch c.config.Algorithm {
	case AlgorithmNone:
		return data, nil
	case AlgorithmSnappy:
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("compression: snappy decode: %w", err)
		}
		return decoded, nil
	case AlgorithmZstd:
		decoded, err := c.zstdDec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("compression: zstd decode: %w", err)
		}
		return decoded, nil
	case AlgorithmGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("compression: gzip reader: %w", err)
		}
		defer r.Close()
		c.scratch.Reset()
		if _, err := io.Copy(&c.scratch, r); err != nil {
			return nil, fmt.Errorf("compression: gzip read: %w", err)
		}
		return append([]byte(nil), c.scratch.Bytes()...), nil
	case AlgorithmZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("compression: zlib reader: %w", err)
		}
		defer r.Close()
		c.scratch.Reset()
		if _, err := io.Copy(&c.scratch, r); err != nil {
			return nil, fmt.Errorf("compression: zlib read: %w", err)
		}
		return append([]byte(nil), c.scratch.Bytes()...), nil
	default:
		return nil, fmt.Errorf("compression: unsupported algorithm %v", c.config.Algorithm)
	}
}

// Close releases the zstd encoder/decoder, a no-op for every other
// algorithm.
func (c *Compressor) Close() error {
	if c.zstdEnc != nil {
		c.zstdEnc.Close()
	}
	if c.zstdDec != nil {
		c.zstdDec.Close()
	}
	return nil
}

// CompressionRatio is compressedSize/originalSize (0 if originalSize is 0).
func CompressionRatio(originalSize, compressedSize int) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// SpaceSavings is the percentage of originalSize that compression removed.
func SpaceSavings(originalSize, compressedSize int) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1.0 - CompressionRatio(originalSize, compressedSize)) * 100
}
