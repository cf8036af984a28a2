// Package compress: vector-level operations.
//
// Compress, Expand, and Best implement the three entry points spec.md §4.3
// names directly: encoding a live FrVect payload under a requested scheme,
// decoding one back to host-endian bytes, and the brute-force "try
// everything, keep the smallest" BEST meta-mode.
package compress

import (
	"fmt"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
)

// hostEngine is the byte order this package uses whenever it needs to
// reinterpret a buffer as words of a given size (differential prediction,
// post-decode swapping). All encoded buffers this package produces are
// stored in host order; the CompressionCode's endianness bit is set
// accordingly by the caller.
var hostEngine = hostEndianEngine()

func hostEndianEngine() endian.EndianEngine {
	if endian.IsNativeLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// zeroSuppressCandidate returns the zero-suppress scheme matching an
// element's word width, and whether that scheme is applicable at all
// (STRING and anything with an unrecognized width are not).
func zeroSuppressCandidate(elemType format.ElementType) (format.CompressionScheme, bool) {
	switch elemType.WordSize() {
	case 2:
		return format.ZeroSuppressWord2, true
	case 4:
		return format.ZeroSuppressWord4, true
	case 8:
		return format.ZeroSuppressWord8, true
	default:
		return 0, false
	}
}

// ResolveMeta resolves a write-only meta-mode against an element type to a
// concrete scheme, per spec.md §4.3's resolution table. Concrete schemes
// pass through unchanged. MetaBest is resolved by Best, not here: it needs
// the actual payload to pick a winner, not just the element type.
func ResolveMeta(scheme format.CompressionScheme, elemType format.ElementType) format.CompressionScheme {
	zs, zsOK := zeroSuppressCandidate(elemType)

	switch scheme {
	case format.MetaZeroSuppress2OtherwiseGzip:
		if zsOK && zs == format.ZeroSuppressWord2 {
			return zs
		}

		return format.Gzip
	case format.MetaZeroSuppress24OtherwiseGzip:
		if zsOK && (zs == format.ZeroSuppressWord2 || zs == format.ZeroSuppressWord4) {
			return zs
		}

		return format.Gzip
	case format.MetaZeroSuppress248OtherwiseGzip:
		if zsOK {
			return zs
		}

		return format.Gzip
	default:
		return scheme
	}
}

// Compress encodes data (nData host-endian elements of elemType, laid out
// contiguously) under scheme at the given deflate level, substituting the
// documented GZIP fallback when scheme is not applicable to elemType
// (spec.md's InvalidCompressionForType rule) and resolving meta-modes
// first. It returns the concrete scheme actually used — the one to stamp
// into the compression code word — and the encoded buffer, in host byte
// order.
func Compress(scheme format.CompressionScheme, level int, elemType format.ElementType, nData int, data []byte) (format.CompressionScheme, []byte, error) {
	if scheme == format.MetaBest {
		return Best(level, elemType, nData, data)
	}

	if scheme.IsMeta() {
		scheme = ResolveMeta(scheme, elemType)
	}

	switch scheme {
	case format.Raw:
		out, err := NewRawCodec().Compress(data)
		return format.Raw, out, err

	case format.Gzip:
		out, err := NewGzipCodec(level).Compress(data)
		return format.Gzip, out, err

	case format.DiffGzip:
		if !elemType.IsInteger() {
			out, err := NewGzipCodec(level).Compress(data)
			return format.Gzip, out, err
		}

		diffed := diffEncode(data, elemType.WordSize(), hostEngine)
		out, err := NewGzipCodec(level).Compress(diffed)

		return format.DiffGzip, out, err

	case format.ZeroSuppressWord2, format.ZeroSuppressWord4, format.ZeroSuppressWord8:
		ws := zeroSuppressWordSize(scheme)
		if !zeroSuppressApplicable(ws, elemType.WordSize()) {
			out, err := NewGzipCodec(level).Compress(data)
			return format.Gzip, out, err
		}

		out, err := zeroSuppressEncode(data, ws)
		if err != nil {
			out, gzErr := NewGzipCodec(level).Compress(data)
			if gzErr != nil {
				return 0, nil, gzErr
			}

			return format.Gzip, out, nil
		}

		return scheme, out, nil

	default:
		return 0, nil, fmt.Errorf("compress: %w: %v", errs.ErrUnknownCompression, scheme)
	}
}

// Expand decodes data, previously produced by Compress under scheme, back
// into nData host-endian elements of elemType. sourceLittleEndian is the
// endianness bit recorded in the vector's compression code; if it disagrees
// with the host, Expand byte-swaps after decompression (and after
// integration, for DIFF_GZIP), per spec.md §4.3.
func Expand(scheme format.CompressionScheme, elemType format.ElementType, nData int, data []byte, sourceLittleEndian bool) ([]byte, error) {
	var out []byte

	switch scheme {
	case format.Raw:
		buf, err := NewRawCodec().Decompress(data)
		if err != nil {
			return nil, err
		}
		out = append([]byte(nil), buf...)

	case format.Gzip:
		buf, err := NewGzipCodec(0).Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("compress: expand gzip: %w", err)
		}
		out = buf

	case format.DiffGzip:
		buf, err := NewGzipCodec(0).Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("compress: expand diff_gzip: %w", err)
		}
		out = diffDecode(buf, elemType.WordSize(), hostEngine)

	case format.ZeroSuppressWord2, format.ZeroSuppressWord4, format.ZeroSuppressWord8:
		ws := zeroSuppressWordSize(scheme)
		buf, err := zeroSuppressDecode(data, ws, nData*elemType.ByteSize()/ws)
		if err != nil {
			return nil, fmt.Errorf("compress: expand zero-suppress: %w", err)
		}
		out = buf

	default:
		return nil, fmt.Errorf("compress: %w: %v", errs.ErrUnknownCompression, scheme)
	}

	if sourceLittleEndian != endian.IsNativeLittleEndian() {
		endian.SwapWords(out, elemType.WordSize())
	}

	wantLen := nData * elemType.ByteSize()
	if len(out) != wantLen {
		return nil, fmt.Errorf("compress: expand produced %d bytes, want %d: %w", len(out), wantLen, errs.ErrShortBuffer)
	}

	return out, nil
}

// Best implements the BEST meta-mode: every scheme applicable to elemType is
// tried and the smallest encoded result wins. spec.md leaves the tie-break
// order unspecified beyond "ties favor the implementation's documented
// order"; this implementation's documented order, most to least preferred,
// is ZERO_SUPPRESS, DIFF_GZIP, GZIP, RAW — a candidate only replaces the
// incumbent on a strictly smaller size, so the first candidate in that order
// wins any tie.
func Best(level int, elemType format.ElementType, nData int, data []byte) (format.CompressionScheme, []byte, error) {
	type candidate struct {
		scheme format.CompressionScheme
	}

	candidates := make([]candidate, 0, 4)

	if zs, ok := zeroSuppressCandidate(elemType); ok {
		candidates = append(candidates, candidate{zs})
	}

	if elemType.IsInteger() {
		candidates = append(candidates, candidate{format.DiffGzip})
	}

	candidates = append(candidates, candidate{format.Gzip}, candidate{format.Raw})

	var (
		bestScheme format.CompressionScheme
		bestOut    []byte
		haveBest   bool
	)

	for _, c := range candidates {
		scheme, out, err := Compress(c.scheme, level, elemType, nData, data)
		if err != nil {
			continue
		}

		if !haveBest || len(out) < len(bestOut) {
			bestScheme, bestOut, haveBest = scheme, out, true
		}
	}

	if !haveBest {
		return 0, nil, fmt.Errorf("compress: BEST: %w", errs.ErrUnknownCompression)
	}

	return bestScheme, bestOut, nil
}

func zeroSuppressWordSize(scheme format.CompressionScheme) int {
	switch scheme {
	case format.ZeroSuppressWord2:
		return 2
	case format.ZeroSuppressWord4:
		return 4
	case format.ZeroSuppressWord8:
		return 8
	default:
		return 0
	}
}
