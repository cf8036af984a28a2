package wire

import (
	"fmt"
	"io"
	"math"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/internal/pool"
)

// Writer is a single-file, single-threaded write handle mirroring Reader.
// Each structure is assembled in a pooled buffer so its length prefix and
// per-structure checksum — both of which depend on the structure's full
// size — can be computed before anything reaches the underlying sink, the
// same buffer-then-copy shape mebo's NumericEncoder.Finish uses to
// assemble a blob whose header fields depend on the payload sizes that
// follow it.
type Writer struct {
	w         io.WriteSeeker
	engine    endian.EndianEngine
	checkSums format.ChecksumScheme

	fileCRC *crcFilter

	poisoned error

	buf *pool.ByteBuffer // nil outside BeginStruct/EndStruct

	nextInstanceID uint32
}

// NewWriter wraps w. Frame files are conventionally big-endian on disk;
// callers that want little-endian output call SetEngine before writing
// anything.
func NewWriter(w io.WriteSeeker) *Writer {
	return &Writer{
		w:       w,
		engine:  endian.GetBigEndianEngine(),
		fileCRC: newCRCFilter(),
	}
}

func (s *Writer) SetEngine(e endian.EndianEngine)                { s.engine = e }
func (s *Writer) Engine() endian.EndianEngine                    { return s.engine }
func (s *Writer) SetChecksumScheme(scheme format.ChecksumScheme) { s.checkSums = scheme }
func (s *Writer) ChecksumScheme() format.ChecksumScheme          { return s.checkSums }
func (s *Writer) Poisoned() error                                { return s.poisoned }
func (s *Writer) FileCheckSum() uint32                           { return s.fileCRC.Sum() }

func (s *Writer) poison(err error) error {
	if s.poisoned == nil {
		s.poisoned = err
	}

	return s.poisoned
}

// Tell returns the current byte offset in the sink.
func (s *Writer) Tell() (int64, error) {
	return s.w.Seek(0, io.SeekCurrent)
}

// NextInstanceID allocates the next unique, non-zero instance id for a
// structure this writer is about to emit.
func (s *Writer) NextInstanceID() uint32 {
	s.nextInstanceID++
	return s.nextInstanceID
}

// appendRaw writes b to the in-progress structure buffer while one is open
// (BeginStruct/EndStruct), or straight to the sink otherwise — used for
// FrHeader, which precedes any length-prefixed structure and has no CRC of
// its own beyond the file-wide one.
func (s *Writer) appendRaw(b []byte) error {
	if s.poisoned != nil {
		return s.poisoned
	}

	if s.buf != nil {
		s.buf.MustWrite(b)
		return nil
	}

	if _, err := s.w.Write(b); err != nil {
		return s.poison(fmt.Errorf("wire: write: %w", err))
	}

	s.fileCRC.Write(b)

	return nil
}

func (s *Writer) WriteUint8(v uint8) error { return s.appendRaw([]byte{v}) }
func (s *Writer) WriteInt8(v int8) error   { return s.WriteUint8(uint8(v)) }

func (s *Writer) WriteUint16(v uint16) error {
	b := make([]byte, 2)
	s.engine.PutUint16(b, v)
	return s.appendRaw(b)
}
func (s *Writer) WriteInt16(v int16) error { return s.WriteUint16(uint16(v)) }

func (s *Writer) WriteUint32(v uint32) error {
	b := make([]byte, 4)
	s.engine.PutUint32(b, v)
	return s.appendRaw(b)
}
func (s *Writer) WriteInt32(v int32) error { return s.WriteUint32(uint32(v)) }

func (s *Writer) WriteUint64(v uint64) error {
	b := make([]byte, 8)
	s.engine.PutUint64(b, v)
	return s.appendRaw(b)
}
func (s *Writer) WriteInt64(v int64) error { return s.WriteUint64(uint64(v)) }

func (s *Writer) WriteFloat32(v float32) error { return s.WriteUint32(math.Float32bits(v)) }
func (s *Writer) WriteFloat64(v float64) error { return s.WriteUint64(math.Float64bits(v)) }

// WriteString writes a 2-byte length prefix followed by the raw bytes of v.
func (s *Writer) WriteString(v string) error {
	if len(v) > math.MaxUint16 {
		return fmt.Errorf("wire: string of %d bytes exceeds the 2-byte length prefix", len(v))
	}

	if err := s.WriteUint16(uint16(len(v))); err != nil {
		return err
	}

	if len(v) == 0 {
		return nil
	}

	return s.appendRaw([]byte(v))
}

// WriteBytes writes b verbatim, used for FrVect's compressed payload.
func (s *Writer) WriteBytes(b []byte) error { return s.appendRaw(b) }

// WritePointer writes a raw instance id (0 meaning "no reference").
func (s *Writer) WritePointer(id uint32) error { return s.WriteUint32(id) }

// BeginStruct opens a new length-prefixed structure for classId/instanceId.
// Nesting is not supported: spec.md's structures are siblings in the file,
// never embedded payload-within-payload, so a second BeginStruct before the
// matching EndStruct is a programmer error.
func (s *Writer) BeginStruct(classID format.ClassID, instanceID uint32) error {
	if s.poisoned != nil {
		return s.poisoned
	}

	if s.buf != nil {
		return fmt.Errorf("wire: BeginStruct called while a structure is already open")
	}

	s.buf = pool.GetBlobBuffer()
	s.buf.Reset()

	placeholder := make([]byte, 8)
	s.buf.MustWrite(placeholder)

	classIDBytes := make([]byte, 2)
	s.engine.PutUint16(classIDBytes, uint16(classID))
	s.buf.MustWrite(classIDBytes)

	instanceIDBytes := make([]byte, 4)
	s.engine.PutUint32(instanceIDBytes, instanceID)
	s.buf.MustWrite(instanceIDBytes)

	return nil
}

// EndStruct patches the length prefix, computes the per-structure CRC, and
// flushes the assembled structure (including its trailing chkSum) to the
// sink.
func (s *Writer) EndStruct() error {
	if s.buf == nil {
		return fmt.Errorf("wire: EndStruct called with no open structure")
	}

	body := s.buf.Bytes()
	total := uint64(len(body)) + 4 // + trailing chkSum
	s.engine.PutUint64(body[0:8], total)

	// The length field itself is part of the CRC region, so recompute
	// after patching rather than trusting the placeholder-era sum.
	crc := newCRCFilter()
	crc.Write(body)
	sum := crc.Sum()

	chk := make([]byte, 4)
	s.engine.PutUint32(chk, sum)

	buf := s.buf
	s.buf = nil

	defer pool.PutBlobBuffer(buf)

	if _, err := s.w.Write(body); err != nil {
		return s.poison(fmt.Errorf("wire: write: %w", err))
	}
	s.fileCRC.Write(body)

	if _, err := s.w.Write(chk); err != nil {
		return s.poison(fmt.Errorf("wire: write: %w", err))
	}
	s.fileCRC.Write(chk)

	return nil
}
