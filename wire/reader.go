// Package wire implements the binary stream (spec.md's C2): length-prefixed
// typed record I/O with host-byte-order conversion, string encoding, an
// instance-id pointer-reference table, and the dual per-structure/file-wide
// checksum taps spec.md §4.2 and §6 describe. The object model (package
// frame) drives this package; wire itself knows nothing about FrVect,
// FrameH, or any other structure name — only about bytes, records, and
// ids.
package wire

import (
	"fmt"
	"io"
	"math"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
)

// Reader is a single-file, single-threaded read handle, matching the
// concurrency model in spec.md §5: one FrameFile, one logical reader, its
// own mutable position/reference-table/checksum state.
type Reader struct {
	r         io.ReadSeeker
	engine    endian.EndianEngine
	checkSums format.ChecksumScheme

	fileCRC   *crcFilter
	structCRC *crcFilter

	refs     *refTable
	poisoned error
}

// NewReader wraps r. The engine defaults to big-endian (IGWD frame files
// are conventionally big-endian on disk); callers that parse FrHeader call
// SetEngine once the byte-order probe has been read.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{
		r:         r,
		engine:    endian.GetBigEndianEngine(),
		fileCRC:   newCRCFilter(),
		structCRC: newCRCFilter(),
		refs:      newRefTable(),
	}
}

// SetEngine sets the byte order subsequent primitive reads interpret bytes
// with.
func (s *Reader) SetEngine(e endian.EndianEngine) { s.engine = e }

// Engine returns the stream's current byte order.
func (s *Reader) Engine() endian.EndianEngine { return s.engine }

// SetChecksumScheme records which algorithm FrHeader declared; wire itself
// only implements CRC32, so any scheme other than NONE/CRC32 is the
// caller's responsibility to reject.
func (s *Reader) SetChecksumScheme(scheme format.ChecksumScheme) { s.checkSums = scheme }

// ChecksumScheme returns the scheme set by SetChecksumScheme.
func (s *Reader) ChecksumScheme() format.ChecksumScheme { return s.checkSums }

// Poisoned returns the first fatal error seen on this stream, or nil. Once
// set, every subsequent read fails with the same error, per spec.md §5's
// "mid-structure abort invalidates the handle" rule.
func (s *Reader) Poisoned() error { return s.poisoned }

func (s *Reader) poison(err error) error {
	if s.poisoned == nil {
		s.poisoned = err
	}

	return s.poisoned
}

// Tell returns the current byte offset.
func (s *Reader) Tell() (int64, error) {
	return s.r.Seek(0, io.SeekCurrent)
}

// Seek moves to an absolute byte offset. Seeking does not feed the
// checksum filters: random access (the TOC fast path) is explicitly exempt
// from the file-wide checksum in spec.md §5.
func (s *Reader) Seek(offset int64) error {
	_, err := s.r.Seek(offset, io.SeekStart)
	return err
}

// FileCheckSum returns the running file-wide CRC.
func (s *Reader) FileCheckSum() uint32 { return s.fileCRC.Sum() }

// CRCSnapshot captures both checksum taps' running state, so a caller can
// read bytes out of sequence — the TOC random-access fast path — without
// those bytes ever counting towards the file-wide or per-structure CRC,
// per spec.md §5's "the TOC fast-path may reorder offset-array reads but
// must not alter the file-wide checksum" invariant.
type CRCSnapshot struct {
	file  crcSnapshot
	struc crcSnapshot
}

// SnapshotCRC captures the current checksum state for a later RestoreCRC.
func (s *Reader) SnapshotCRC() CRCSnapshot {
	return CRCSnapshot{file: s.fileCRC.snapshot(), struc: s.structCRC.snapshot()}
}

// RestoreCRC reinstates checksum state captured by SnapshotCRC, discarding
// whatever the filters accumulated in between.
func (s *Reader) RestoreCRC(snap CRCSnapshot) {
	s.fileCRC.restore(snap.file)
	s.structCRC.restore(snap.struc)
}

func (s *Reader) readRaw(n int) ([]byte, error) {
	if s.poisoned != nil {
		return nil, s.poisoned
	}

	if n == 0 {
		return nil, nil
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, s.poison(&errs.Truncated{Got: 0, Want: int64(n)})
		}

		return nil, s.poison(fmt.Errorf("wire: read: %w", err))
	}

	s.fileCRC.Write(buf)
	s.structCRC.Write(buf)

	return buf, nil
}

func (s *Reader) ReadUint8() (uint8, error) {
	b, err := s.readRaw(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (s *Reader) ReadInt8() (int8, error) {
	v, err := s.ReadUint8()
	return int8(v), err
}

func (s *Reader) ReadUint16() (uint16, error) {
	b, err := s.readRaw(2)
	if err != nil {
		return 0, err
	}

	return s.engine.Uint16(b), nil
}

func (s *Reader) ReadInt16() (int16, error) {
	v, err := s.ReadUint16()
	return int16(v), err
}

func (s *Reader) ReadUint32() (uint32, error) {
	b, err := s.readRaw(4)
	if err != nil {
		return 0, err
	}

	return s.engine.Uint32(b), nil
}

func (s *Reader) ReadInt32() (int32, error) {
	v, err := s.ReadUint32()
	return int32(v), err
}

func (s *Reader) ReadUint64() (uint64, error) {
	b, err := s.readRaw(8)
	if err != nil {
		return 0, err
	}

	return s.engine.Uint64(b), nil
}

func (s *Reader) ReadInt64() (int64, error) {
	v, err := s.ReadUint64()
	return int64(v), err
}

func (s *Reader) ReadFloat32() (float32, error) {
	v, err := s.ReadUint32()
	return math.Float32frombits(v), err
}

func (s *Reader) ReadFloat64() (float64, error) {
	v, err := s.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadString reads a 2-byte length prefix followed by that many raw bytes,
// per spec.md §6: "no NUL terminator, length 0 means empty".
func (s *Reader) ReadString() (string, error) {
	n, err := s.ReadUint16()
	if err != nil {
		return "", err
	}

	if n == 0 {
		return "", nil
	}

	b, err := s.readRaw(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ReadBytes reads n raw bytes verbatim, used for FrVect's opaque compressed
// payload.
func (s *Reader) ReadBytes(n int) ([]byte, error) {
	return s.readRaw(n)
}

// Handle is an unresolved reference to a value of type T read from the
// stream's instance-id table, per spec.md §4.2's "ReadPointer<T> → handle<T>".
type Handle[T any] struct{ id uint32 }

// Valid reports whether the handle names an instance (id 0 means none).
func (h Handle[T]) Valid() bool { return h.id != 0 }

// ID returns the raw instance id the handle was built from.
func (h Handle[T]) ID() uint32 { return h.id }

// ReadPointer reads a raw instance id and returns it as a typed Handle.
func ReadPointer[T any](s *Reader) (Handle[T], error) {
	id, err := s.ReadUint32()
	return Handle[T]{id: id}, err
}

// HandleFromID builds a Handle directly from an already-decoded instance
// id, for callers decoding a payload through a Cursor rather than reading
// live off a Reader (Handle's id field is unexported, so this is the
// Cursor-side equivalent of ReadPointer).
func HandleFromID[T any](id uint32) Handle[T] {
	return Handle[T]{id: id}
}

// Resolve calls cb with the object registered under h's id, once it is
// known — immediately if the producer has already been read, or after a
// later Register call otherwise. Cycles are fine: cb only needs to stash a
// pointer, not dereference fields eagerly.
func Resolve[T any](s *Reader, h Handle[T], cb func(T)) {
	if !h.Valid() {
		return
	}

	s.refs.Resolve(h.id, func(obj any) {
		if v, ok := obj.(T); ok {
			cb(v)
		}
	})
}

// Register associates id with obj in the stream's instance table, firing
// any pending Resolve callbacks waiting on it. Callers register each
// structure immediately after constructing it from its ReadRecord payload.
func (s *Reader) Register(id uint32, obj any) { s.refs.Register(id, obj) }

// FinishRefs reports ErrBrokenReference (via errs.BrokenReference) if any
// instance id was referenced but never registered.
func (s *Reader) FinishRefs() error { return s.refs.Finish() }

// Record is one length-prefixed structure as framed in spec.md §6:
// length/classId/instanceId/payload/chkSum.
type Record struct {
	ClassID    format.ClassID
	InstanceID uint32
	Offset     int64
	Payload    []byte
}

// recordOverhead is the framing bytes counted in length but not part of
// Payload: the 8-byte length field, 2-byte classId, 4-byte instanceId, and
// 4-byte trailing chkSum.
const recordOverhead = 8 + 2 + 4 + 4

// ReadRecord peels one length-prefixed structure, verifying its
// per-structure CRC against the trailing chkSum field (which is itself
// excluded from the computation, per spec.md §4.2). On CRC mismatch it
// returns a *errs.CorruptStructure.
func (s *Reader) ReadRecord() (Record, error) {
	offset, err := s.Tell()
	if err != nil {
		return Record{}, err
	}

	s.structCRC.Reset()
	s.structCRC.SetEnabled(true)

	length, err := s.ReadUint64()
	if err != nil {
		return Record{}, err
	}

	if length < recordOverhead {
		return Record{}, s.poison(&errs.Truncated{Offset: offset, Want: recordOverhead, Got: int64(length)})
	}

	classIDRaw, err := s.ReadUint16()
	if err != nil {
		return Record{}, err
	}
	classID := format.ClassID(classIDRaw)

	instanceID, err := s.ReadUint32()
	if err != nil {
		return Record{}, err
	}

	payloadLen := int(length - recordOverhead)

	payload, err := s.readRaw(payloadLen)
	if err != nil {
		return Record{}, err
	}

	computed := s.structCRC.Sum()
	s.structCRC.SetEnabled(false)

	stored, err := s.ReadUint32()

	s.structCRC.SetEnabled(true)

	if err != nil {
		return Record{}, err
	}

	if stored != computed {
		return Record{}, s.poison(&errs.CorruptStructure{
			ClassID:  uint16(classID),
			Offset:   offset,
			Computed: computed,
			Stored:   stored,
		})
	}

	return Record{ClassID: classID, InstanceID: instanceID, Offset: offset, Payload: payload}, nil
}
