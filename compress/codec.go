// Package compress implements the FrVect compression algorithm family from
// spec.md §4.3: RAW, GZIP, the differential predictor composed with GZIP,
// the zero-suppress family for 2/4/8-byte words, and the write-only
// meta-modes that resolve to one of those concrete schemes before a vector
// ever reaches the wire.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Compressor compresses a byte payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte payload previously produced by the
// matching Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// rawCodec is the identity codec backing the RAW algorithm id: it copies
// nothing, since FrVect already owns its buffer.
type rawCodec struct{}

func (rawCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (rawCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

// NewRawCodec returns the identity codec used for the RAW compression id.
func NewRawCodec() Codec { return rawCodec{} }

// gzipCodec implements spec.md's GZIP algorithm id: "deflate with a
// user-chosen level 0-9". klauspost/compress/flate is used in place of the
// standard library's compress/flate for the same reason the teacher reaches
// for klauspost for its S2 codec: it is a drop-in, faster implementation of
// the same wire format, and the on-disk bytes it produces are ordinary raw
// DEFLATE streams any implementation can read back.
type gzipCodec struct {
	level int
}

// NewGzipCodec returns a Codec that deflates at the given level (0-9, per
// spec.md §4.3). The level is not clamped: one that flate.NewWriter rejects
// makes Compress return an error.
func NewGzipCodec(level int) Codec {
	return gzipCodec{level: level}
}

func (c gzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("compress: gzip writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress: gzip write: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: gzip close: %w", err)
	}

	return buf.Bytes(), nil
}

func (c gzipCodec) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("compress: gzip decode: %w", err)
	}

	return out, nil
}
