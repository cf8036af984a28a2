// Package frame implements the object model (spec.md's C4): FrHeader plus
// the per-version data records for every structure kind a frame file can
// contain, each with the promote/demote machinery spec.md §4.4 describes.
// It drives package wire for all byte I/O and registers every structure
// kind with package registry at init time.
package frame

import (
	"fmt"
	"io"
	"math"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
)

// HeaderSize is the fixed, version-independent byte length of FrHeader:
// five width bytes, the 2-, 4- and 8-byte endianness probes, the 4- and
// 8-byte floating-point probes, the library tag and the checksum selector.
const HeaderSize = 33

// probe16/32/64 are the literal byte-order probe values
// spec.md §3 describes ("literal 0x1234…"), used to detect whether the
// writer's host was little- or big-endian regardless of what this reader's
// host is.
const (
	probe16 = uint16(0x1234)
	probe32 = uint32(0x12345678)
	probe64 = uint64(0x123456789ABCDEF)
)

// Header is the fixed 33-byte record every frame file opens with: source
// byte widths, the three endianness probes, two floating-point probes, a
// library tag, and the checksum scheme selector.
type Header struct {
	SizeInt2   uint8
	SizeInt4   uint8
	SizeInt8   uint8
	SizeFloat4 uint8
	SizeFloat8 uint8

	LibraryTag uint8
	Checksum   format.ChecksumScheme

	LittleEndian bool
}

// DefaultHeader returns the header this module stamps when writing: native
// C byte widths, host endianness, and CRC32 checksums.
func DefaultHeader() Header {
	return Header{
		SizeInt2:     2,
		SizeInt4:     4,
		SizeInt8:     8,
		SizeFloat4:   4,
		SizeFloat8:   8,
		LibraryTag:   1,
		Checksum:     format.ChecksumCRC32,
		LittleEndian: endian.IsNativeLittleEndian(),
	}
}

// ReadHeader reads the 33 fixed header bytes directly off r (which has no
// engine set yet — FrHeader is how the stream learns what engine to use)
// and configures r's engine and checksum scheme accordingly.
func ReadHeader(r *wire.Reader) (Header, error) {
	r.SetEngine(endian.GetBigEndianEngine())

	sizeInt2, err := r.ReadUint8()
	if err != nil {
		return Header{}, err
	}
	sizeInt4, err := r.ReadUint8()
	if err != nil {
		return Header{}, err
	}
	sizeInt8, err := r.ReadUint8()
	if err != nil {
		return Header{}, err
	}
	sizeFloat4, err := r.ReadUint8()
	if err != nil {
		return Header{}, err
	}
	sizeFloat8, err := r.ReadUint8()
	if err != nil {
		return Header{}, err
	}

	raw16, err := r.ReadBytes(2)
	if err != nil {
		return Header{}, err
	}
	raw32, err := r.ReadBytes(4)
	if err != nil {
		return Header{}, err
	}
	raw64, err := r.ReadBytes(8)
	if err != nil {
		return Header{}, err
	}

	little := endian.GetLittleEndianEngine().Uint16(raw16) == probe16
	big := endian.GetBigEndianEngine().Uint16(raw16) == probe16

	if !little && !big {
		return Header{}, fmt.Errorf("frame: %w: unrecognized byte-order probe", errs.ErrInvalidMagicNumber)
	}

	engine := endian.GetBigEndianEngine()
	if little {
		engine = endian.GetLittleEndianEngine()
	}

	if engine.Uint32(raw32) != probe32 || engine.Uint64(raw64) != probe64 {
		return Header{}, fmt.Errorf("frame: %w: inconsistent byte-order probes", errs.ErrInvalidMagicNumber)
	}

	// Float probes are read but not independently validated beyond their
	// fixed size: any IEEE-754 host reproduces the same bit pattern for pi
	// once byte order is known, so the integer probes above are sufficient
	// to pin down endianness.
	if _, err := r.ReadBytes(int(sizeFloat4)); err != nil {
		return Header{}, err
	}
	if _, err := r.ReadBytes(int(sizeFloat8)); err != nil {
		return Header{}, err
	}

	libTag, err := r.ReadUint8()
	if err != nil {
		return Header{}, err
	}

	checksumRaw, err := r.ReadUint8()
	if err != nil {
		return Header{}, err
	}

	h := Header{
		SizeInt2:     sizeInt2,
		SizeInt4:     sizeInt4,
		SizeInt8:     sizeInt8,
		SizeFloat4:   sizeFloat4,
		SizeFloat8:   sizeFloat8,
		LibraryTag:   libTag,
		Checksum:     format.ChecksumScheme(checksumRaw),
		LittleEndian: little,
	}

	r.SetEngine(engine)
	r.SetChecksumScheme(h.Checksum)

	return h, nil
}

// WriteHeader writes h's 33 fixed bytes and configures w's engine and
// checksum scheme to match.
func WriteHeader(w *wire.Writer, h Header) error {
	engine := endian.GetBigEndianEngine()
	if h.LittleEndian {
		engine = endian.GetLittleEndianEngine()
	}

	// The header itself is prefix-free and always big-endian on the wire
	// for its own bytes up through the probes; what LittleEndian selects
	// is the probe VALUES (and hence the engine used for everything after
	// the header), matching how a reader bootstraps byte order purely by
	// comparing the probe bytes against both candidate orderings.
	w.SetEngine(endian.GetBigEndianEngine())

	for _, b := range []uint8{h.SizeInt2, h.SizeInt4, h.SizeInt8, h.SizeFloat4, h.SizeFloat8} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}

	probe16Bytes := make([]byte, 2)
	engine.PutUint16(probe16Bytes, probe16)
	if err := w.WriteBytes(probe16Bytes); err != nil {
		return err
	}

	probe32Bytes := make([]byte, 4)
	engine.PutUint32(probe32Bytes, probe32)
	if err := w.WriteBytes(probe32Bytes); err != nil {
		return err
	}

	probe64Bytes := make([]byte, 8)
	engine.PutUint64(probe64Bytes, probe64)
	if err := w.WriteBytes(probe64Bytes); err != nil {
		return err
	}

	float4Bytes := make([]byte, 4)
	engine.PutUint32(float4Bytes, math.Float32bits(3.14159274))
	if err := w.WriteBytes(float4Bytes); err != nil {
		return err
	}

	float8Bytes := make([]byte, 8)
	engine.PutUint64(float8Bytes, math.Float64bits(3.141592653589793))
	if err := w.WriteBytes(float8Bytes); err != nil {
		return err
	}

	if err := w.WriteUint8(h.LibraryTag); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(h.Checksum)); err != nil {
		return err
	}

	w.SetEngine(engine)
	w.SetChecksumScheme(h.Checksum)

	return nil
}

// headerByteSink is a minimal in-memory io.WriteSeeker, used by HeaderBytes
// to capture FrHeader's fixed bytes without touching a real sink.
type headerByteSink struct {
	data []byte
	pos  int64
}

func (b *headerByteSink) Write(p []byte) (int, error) {
	if int64(len(b.data)) < b.pos+int64(len(p)) {
		grown := make([]byte, b.pos+int64(len(p)))
		copy(grown, b.data)
		b.data = grown
	}
	n := copy(b.data[b.pos:], p)
	b.pos += int64(n)

	return n, nil
}

func (b *headerByteSink) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = offset
	case io.SeekCurrent:
		b.pos += offset
	case io.SeekEnd:
		b.pos = int64(len(b.data)) + offset
	}

	return b.pos, nil
}

// HeaderBytes returns h's fixed HeaderSize-byte on-disk encoding. The frame
// file driver uses this twice: once before writing, to compute
// chkSumFrHeader ahead of the real write, and once after reading, to
// reproduce the exact bytes a parsed Header decodes from so it can verify
// chkSumFrHeader without having kept the original bytes around.
func HeaderBytes(h Header) ([]byte, error) {
	sink := &headerByteSink{}
	w := wire.NewWriter(sink)
	if err := WriteHeader(w, h); err != nil {
		return nil, err
	}

	return sink.data, nil
}
