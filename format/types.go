// Package format defines the small closed enumerations shared across the
// frame file reader/writer: vector element kinds, compression algorithm
// ids, and the fixed class ids assigned to each on-disk structure kind.
// None of these types carry behavior beyond String(); they exist so every
// other package can speak the same vocabulary as the wire format.
package format

// ElementType identifies the scalar type stored in an FrVect, matching the
// closed set in spec.md §4.3.
type ElementType uint8

const (
	ElementUnknown ElementType = iota
	ElementInt8                // C: signed byte
	ElementUint8               // 1U: unsigned byte
	ElementInt16               // 2S
	ElementUint16              // 2U
	ElementInt32               // 4S
	ElementUint32              // 4U
	ElementInt64               // 8S
	ElementUint64              // 8U
	ElementFloat32             // 4R
	ElementFloat64             // 8R
	ElementComplex64           // 8C: two REAL_4 words
	ElementComplex128          // 16C: two REAL_8 words
	ElementString              // STRING
)

// WordSize returns the size in bytes of one element's underlying swap unit.
// Complex types are decomposed into two words of half their total size, per
// spec.md §4.3 ("the word-width used for swapping is the element's word
// width, with complex decomposed into two words").
func (e ElementType) WordSize() int {
	switch e {
	case ElementInt8, ElementUint8:
		return 1
	case ElementInt16, ElementUint16:
		return 2
	case ElementInt32, ElementUint32, ElementFloat32:
		return 4
	case ElementInt64, ElementUint64, ElementFloat64:
		return 8
	case ElementComplex64:
		return 4
	case ElementComplex128:
		return 8
	default:
		return 0
	}
}

// ByteSize returns the total on-disk size in bytes of one element, which for
// complex types is twice WordSize.
func (e ElementType) ByteSize() int {
	switch e {
	case ElementComplex64:
		return 8
	case ElementComplex128:
		return 16
	default:
		return e.WordSize()
	}
}

// IsInteger reports whether the element type is a fixed-width integer, the
// domain DIFF_GZIP requires.
func (e ElementType) IsInteger() bool {
	switch e {
	case ElementInt8, ElementUint8, ElementInt16, ElementUint16,
		ElementInt32, ElementUint32, ElementInt64, ElementUint64:
		return true
	default:
		return false
	}
}

// IsComplex reports whether the element type is one of the two complex
// kinds, which the codec treats as interleaved real/imag words.
func (e ElementType) IsComplex() bool {
	return e == ElementComplex64 || e == ElementComplex128
}

func (e ElementType) String() string {
	switch e {
	case ElementInt8:
		return "INT_1S"
	case ElementUint8:
		return "INT_1U"
	case ElementInt16:
		return "INT_2S"
	case ElementUint16:
		return "INT_2U"
	case ElementInt32:
		return "INT_4S"
	case ElementUint32:
		return "INT_4U"
	case ElementInt64:
		return "INT_8S"
	case ElementUint64:
		return "INT_8U"
	case ElementFloat32:
		return "REAL_4"
	case ElementFloat64:
		return "REAL_8"
	case ElementComplex64:
		return "COMPLEX_8"
	case ElementComplex128:
		return "COMPLEX_16"
	case ElementString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// CompressionScheme is the algorithm id portion of an FrVect compression
// code word (spec.md §6: "bits 0-7 select algorithm"). Concrete schemes are
// what a reader ever sees on disk; meta-modes are write-only directives that
// get resolved to a concrete scheme before the mode word is stamped.
type CompressionScheme uint8

const (
	Raw CompressionScheme = iota
	Gzip
	DiffGzip
	ZeroSuppressWord2
	ZeroSuppressWord4
	ZeroSuppressWord8

	// Meta-modes: write-only, resolved against the element type before the
	// vector is serialized. A reader never observes these ids.
	MetaZeroSuppress2OtherwiseGzip
	MetaZeroSuppress24OtherwiseGzip
	MetaZeroSuppress248OtherwiseGzip
	MetaBest
)

// IsMeta reports whether the scheme is a write-only directive that must be
// resolved to a concrete scheme before encoding touches the wire.
func (c CompressionScheme) IsMeta() bool {
	return c >= MetaZeroSuppress2OtherwiseGzip
}

func (c CompressionScheme) String() string {
	switch c {
	case Raw:
		return "RAW"
	case Gzip:
		return "GZIP"
	case DiffGzip:
		return "DIFF_GZIP"
	case ZeroSuppressWord2:
		return "ZERO_SUPPRESS_WORD_2"
	case ZeroSuppressWord4:
		return "ZERO_SUPPRESS_WORD_4"
	case ZeroSuppressWord8:
		return "ZERO_SUPPRESS_WORD_8"
	case MetaZeroSuppress2OtherwiseGzip:
		return "ZERO_SUPPRESS_2_OTHERWISE_GZIP"
	case MetaZeroSuppress24OtherwiseGzip:
		return "ZERO_SUPPRESS_2_4_OTHERWISE_GZIP"
	case MetaZeroSuppress248OtherwiseGzip:
		return "ZERO_SUPPRESS_2_4_8_OTHERWISE_GZIP"
	case MetaBest:
		return "BEST"
	default:
		return "UNKNOWN"
	}
}

// CompressionCode packs a CompressionScheme with the stored-endianness bit,
// the on-disk representation from spec.md §6: "bit 8 set means stored
// little-endian, clear means big-endian".
type CompressionCode uint16

const littleEndianBit CompressionCode = 1 << 8

// NewCompressionCode packs a concrete scheme and endianness into a code
// word. Callers must resolve meta-modes first; packing a meta-mode produces
// a code a reader cannot interpret.
func NewCompressionCode(scheme CompressionScheme, littleEndian bool) CompressionCode {
	code := CompressionCode(scheme)
	if littleEndian {
		code |= littleEndianBit
	}

	return code
}

// Scheme extracts the algorithm id.
func (c CompressionCode) Scheme() CompressionScheme {
	return CompressionScheme(c &^ littleEndianBit)
}

// LittleEndian reports whether the encoded buffer is stored little-endian.
func (c CompressionCode) LittleEndian() bool {
	return c&littleEndianBit != 0
}

// ClassID is the small integer the type registry binds to a structure name
// (spec.md §3, "Frame spec object").
type ClassID uint16

// Fixed class ids for the structures this repository knows about. FrHeader
// has no class id: it is prefix-free and precedes the registry entirely.
const (
	ClassUnknown ClassID = iota
	ClassFrameH
	ClassFrVect
	ClassFrAdcData
	ClassFrProcData
	ClassFrSimData
	ClassFrEvent
	ClassFrSimEvent
	ClassFrTable
	ClassFrSummary
	ClassFrHistory
	ClassFrMsg
	ClassFrDetector
	ClassFrTOC
	ClassFrEndOfFrame
	ClassFrEndOfFile
)

func (c ClassID) String() string {
	switch c {
	case ClassFrameH:
		return "FrameH"
	case ClassFrVect:
		return "FrVect"
	case ClassFrAdcData:
		return "FrAdcData"
	case ClassFrProcData:
		return "FrProcData"
	case ClassFrSimData:
		return "FrSimData"
	case ClassFrEvent:
		return "FrEvent"
	case ClassFrSimEvent:
		return "FrSimEvent"
	case ClassFrTable:
		return "FrTable"
	case ClassFrSummary:
		return "FrSummary"
	case ClassFrHistory:
		return "FrHistory"
	case ClassFrMsg:
		return "FrMsg"
	case ClassFrDetector:
		return "FrDetector"
	case ClassFrTOC:
		return "FrTOC"
	case ClassFrEndOfFrame:
		return "FrEndOfFrame"
	case ClassFrEndOfFile:
		return "FrEndOfFile"
	default:
		return "Unknown"
	}
}

// ChecksumScheme selects the algorithm sealing a file, stamped as the last
// byte of FrHeader.
type ChecksumScheme uint8

const (
	ChecksumNone ChecksumScheme = iota
	ChecksumCRC32
)

func (s ChecksumScheme) String() string {
	switch s {
	case ChecksumNone:
		return "NONE"
	case ChecksumCRC32:
		return "CRC32"
	default:
		return "UNKNOWN"
	}
}
