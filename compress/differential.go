package compress

import (
	"github.com/igwn/gwframe/endian"
)

// diffEncode implements the differential predictor from spec.md §4.3:
// "y[i] = x[i] - x[i-1], preserving x[0]". It operates on fixed-width signed
// words read with engine, the same word-at-a-time reinterpretation the
// caller uses for every other step of the pipeline. For complex element
// types the caller passes the interleaved real/imag buffer through
// unchanged: the predictor treats it as a flat sequence of words, per
// spec.md's note that complex values are "treated as 4- or 8-byte signed".
func diffEncode(buf []byte, wordSize int, engine endian.EndianEngine) []byte {
	out := make([]byte, len(buf))
	if len(buf) == 0 {
		return out
	}

	switch wordSize {
	case 1:
		var prev int8
		for i := 0; i < len(buf); i++ {
			cur := int8(buf[i])
			if i == 0 {
				out[i] = byte(cur)
			} else {
				out[i] = byte(cur - prev)
			}
			prev = cur
		}
	case 2:
		n := len(buf) / 2
		var prev int16
		for i := 0; i < n; i++ {
			cur := int16(engine.Uint16(buf[i*2:]))
			var delta int16
			if i == 0 {
				delta = cur
			} else {
				delta = cur - prev
			}
			engine.PutUint16(out[i*2:], uint16(delta))
			prev = cur
		}
	case 4:
		n := len(buf) / 4
		var prev int32
		for i := 0; i < n; i++ {
			cur := int32(engine.Uint32(buf[i*4:]))
			var delta int32
			if i == 0 {
				delta = cur
			} else {
				delta = cur - prev
			}
			engine.PutUint32(out[i*4:], uint32(delta))
			prev = cur
		}
	case 8:
		n := len(buf) / 8
		var prev int64
		for i := 0; i < n; i++ {
			cur := int64(engine.Uint64(buf[i*8:]))
			var delta int64
			if i == 0 {
				delta = cur
			} else {
				delta = cur - prev
			}
			engine.PutUint64(out[i*8:], uint64(delta))
			prev = cur
		}
	default:
		copy(out, buf)
	}

	return out
}

// diffDecode inverts diffEncode: it integrates the delta stream back into
// absolute values, preserving x[0].
func diffDecode(buf []byte, wordSize int, engine endian.EndianEngine) []byte {
	out := make([]byte, len(buf))
	if len(buf) == 0 {
		return out
	}

	switch wordSize {
	case 1:
		var acc int8
		for i := 0; i < len(buf); i++ {
			delta := int8(buf[i])
			if i == 0 {
				acc = delta
			} else {
				acc += delta
			}
			out[i] = byte(acc)
		}
	case 2:
		n := len(buf) / 2
		var acc int16
		for i := 0; i < n; i++ {
			delta := int16(engine.Uint16(buf[i*2:]))
			if i == 0 {
				acc = delta
			} else {
				acc += delta
			}
			engine.PutUint16(out[i*2:], uint16(acc))
		}
	case 4:
		n := len(buf) / 4
		var acc int32
		for i := 0; i < n; i++ {
			delta := int32(engine.Uint32(buf[i*4:]))
			if i == 0 {
				acc = delta
			} else {
				acc += delta
			}
			engine.PutUint32(out[i*4:], uint32(acc))
		}
	case 8:
		n := len(buf) / 8
		var acc int64
		for i := 0; i < n; i++ {
			delta := int64(engine.Uint64(buf[i*8:]))
			if i == 0 {
				acc = delta
			} else {
				acc += delta
			}
			engine.PutUint64(out[i*8:], uint64(acc))
		}
	default:
		copy(out, buf)
	}

	return out
}
