package endian

// SwapWords byte-swaps buf in place, treating it as a sequence of
// fixed-width words. It is the primitive the vector codec uses to move a
// decoded buffer from the stored endianness to host endianness (or back),
// per spec.md §4.3: "the word-width used for swapping is the element's word
// width, with complex decomposed into two words".
//
// wordSize of 1 is a no-op. len(buf) must be a multiple of wordSize;
// callers own validating nData/nBytes before calling this.
func SwapWords(buf []byte, wordSize int) {
	switch wordSize {
	case 0, 1:
		return
	case 2:
		for i := 0; i+1 < len(buf); i += 2 {
			buf[i], buf[i+1] = buf[i+1], buf[i]
		}
	case 4:
		for i := 0; i+3 < len(buf); i += 4 {
			buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+3], buf[i+2], buf[i+1], buf[i]
		}
	case 8:
		for i := 0; i+7 < len(buf); i += 8 {
			buf[i], buf[i+1], buf[i+2], buf[i+3], buf[i+4], buf[i+5], buf[i+6], buf[i+7] =
				buf[i+7], buf[i+6], buf[i+5], buf[i+4], buf[i+3], buf[i+2], buf[i+1], buf[i]
		}
	default:
		swapGeneric(buf, wordSize)
	}
}

// swapGeneric handles word sizes outside the common {2,4,8} set by reversing
// each word byte-by-byte. Nothing in the current element type family needs
// it, but it keeps SwapWords total over any word size the format grows.
func swapGeneric(buf []byte, wordSize int) {
	for start := 0; start+wordSize <= len(buf); start += wordSize {
		for i, j := start, start+wordSize-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
}
