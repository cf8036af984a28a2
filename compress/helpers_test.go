package compress

import (
	"github.com/igwn/gwframe/endian"
)

func endianLittle() endian.EndianEngine {
	return endian.GetLittleEndianEngine()
}

func endianIsNativeLittle() bool {
	return endian.IsNativeLittleEndian()
}

func packInt32(e endian.EndianEngine, vals ...int32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		e.PutUint32(out[i*4:], uint32(v))
	}

	return out
}

func rampInt32(e endian.EndianEngine, n int) []byte {
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		e.PutUint32(out[i*4:], uint32(int32(i)))
	}

	return out
}

// sparseInt16 returns 14 little-endian int16 words matching spec.md's
// zero-suppress example: mostly zero, with a 7 at index 8 and a 5 at index
// 12.
func sparseInt16(e endian.EndianEngine) []byte {
	vals := []int16{0, 0, 0, 0, 0, 0, 0, 0, 7, 0, 0, 0, 5, 0}
	out := make([]byte, len(vals)*2)
	for i, v := range vals {
		e.PutUint16(out[i*2:], uint16(v))
	}

	return out
}
