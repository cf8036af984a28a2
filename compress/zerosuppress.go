package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/igwn/gwframe/errs"
)

// zeroSuppressEncode implements the ZERO_SUPPRESS_WORD_{2,4,8} family from
// spec.md §4.3: a run-length coding of zero runs for fixed-width words. The
// stream is a sequence of (tag, varint-count, payload) tokens:
//
//	tag 0: a run of count all-zero words, no payload
//	tag 1: count literal words, payload is count*wordSize bytes verbatim
//
// This is the same varint-driven token shape the teacher's timestamp delta
// encoder uses for its own run lengths (encoding/ts_delta.go), applied here
// to whole zero runs instead of delta-of-delta values.
func zeroSuppressEncode(buf []byte, wordSize int) ([]byte, error) {
	if wordSize <= 0 || len(buf)%wordSize != 0 {
		return nil, fmt.Errorf("compress: zero-suppress word size %d does not divide buffer length %d", wordSize, len(buf))
	}

	nWords := len(buf) / wordSize
	out := make([]byte, 0, len(buf)/2+16)
	varintBuf := make([]byte, binary.MaxVarintLen64)

	isZero := func(i int) bool {
		for b := 0; b < wordSize; b++ {
			if buf[i*wordSize+b] != 0 {
				return false
			}
		}

		return true
	}

	i := 0
	for i < nWords {
		if isZero(i) {
			start := i
			for i < nWords && isZero(i) {
				i++
			}

			out = append(out, 0)
			n := binary.PutUvarint(varintBuf, uint64(i-start))
			out = append(out, varintBuf[:n]...)

			continue
		}

		start := i
		for i < nWords && !isZero(i) {
			i++
		}

		out = append(out, 1)
		n := binary.PutUvarint(varintBuf, uint64(i-start))
		out = append(out, varintBuf[:n]...)
		out = append(out, buf[start*wordSize:i*wordSize]...)
	}

	return out, nil
}

// zeroSuppressDecode inverts zeroSuppressEncode, reproducing exactly
// nWords*wordSize bytes or failing with ErrShortBuffer on truncated input.
func zeroSuppressDecode(data []byte, wordSize int, nWords int) ([]byte, error) {
	out := make([]byte, nWords*wordSize)
	pos := 0
	offset := 0

	for offset < len(out) {
		if pos >= len(data) {
			return nil, errs.ErrShortBuffer
		}

		tag := data[pos]
		pos++

		count, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nil, errs.ErrShortBuffer
		}
		pos += n

		span := int(count) * wordSize
		if offset+span > len(out) {
			return nil, fmt.Errorf("compress: zero-suppress run overruns buffer: %w", errs.ErrShortBuffer)
		}

		switch tag {
		case 0:
			// out is already zero-filled.
		case 1:
			if pos+span > len(data) {
				return nil, errs.ErrShortBuffer
			}
			copy(out[offset:offset+span], data[pos:pos+span])
			pos += span
		default:
			return nil, fmt.Errorf("compress: zero-suppress unknown tag %d", tag)
		}

		offset += span
	}

	return out, nil
}

// zeroSuppressApplicable reports whether a zero-suppress scheme of the
// given word size can represent an element of elementWordSize bytes. The
// scheme packs values word-at-a-time, so it is only lossless when the
// element's own width matches the scheme's word width.
func zeroSuppressApplicable(schemeWordSize, elementWordSize int) bool {
	return schemeWordSize == elementWordSize
}
