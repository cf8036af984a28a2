package frame

import (
	"fmt"
	"hash/crc32"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// EndOfFile is the file-closing record (spec.md §3 "End-of-file
// record"): frame count, byte count, the back-pointer to the TOC, and
// the three checksums that seal a file. ChkSum covers NFrames, NBytes,
// SeekTOC, and ChkSumFrHeader only — a payload-internal sanity check
// distinct from the generic per-structure framing checksum every record
// already carries (spec.md §6). ChkSumFile is the running file-wide CRC
// up to (not including) this field.
type EndOfFile struct {
	InstanceID uint32

	NFrames        uint32
	NBytes         uint64
	SeekTOC        uint64
	ChkSumFrHeader uint32
	ChkSum         uint32
	ChkSumFile     uint32
}

// endOfFileChecksumFields serializes the four fields ChkSum covers, in
// on-disk byte order, for computing or verifying that checksum.
func endOfFileChecksumFields(engine endian.EndianEngine, nFrames uint32, nBytes, seekTOC uint64, chkSumFrHeader uint32) []byte {
	buf := make([]byte, 4+8+8+4)
	engine.PutUint32(buf[0:4], nFrames)
	engine.PutUint64(buf[4:12], nBytes)
	engine.PutUint64(buf[12:20], seekTOC)
	engine.PutUint32(buf[20:24], chkSumFrHeader)

	return buf
}

// NewEndOfFile computes ChkSum from the other fields, leaving ChkSumFile
// for the caller to fill in from the writer's running file-wide CRC just
// before flushing this structure.
func NewEndOfFile(engine endian.EndianEngine, nFrames uint32, nBytes, seekTOC uint64, chkSumFrHeader uint32) *EndOfFile {
	sum := crc32.ChecksumIEEE(endOfFileChecksumFields(engine, nFrames, nBytes, seekTOC, chkSumFrHeader))

	return &EndOfFile{
		NFrames:        nFrames,
		NBytes:         nBytes,
		SeekTOC:        seekTOC,
		ChkSumFrHeader: chkSumFrHeader,
		ChkSum:         sum,
	}
}

// Verify recomputes ChkSum and reports a mismatch, per spec.md §8's
// family of universal invariants (chkSumFrHeader is the checksum of the
// 33 header bytes).
func (e *EndOfFile) Verify(engine endian.EndianEngine) error {
	want := crc32.ChecksumIEEE(endOfFileChecksumFields(engine, e.NFrames, e.NBytes, e.SeekTOC, e.ChkSumFrHeader))
	if want != e.ChkSum {
		return fmt.Errorf("frame: %w: end-of-file record checksum computed=%#08x stored=%#08x",
			errs.ErrCorruptFile, want, e.ChkSum)
	}

	return nil
}

func ReadEndOfFile(payload []byte, engine endian.EndianEngine) (*EndOfFile, error) {
	c := wire.NewCursor(payload, engine)

	e := &EndOfFile{}

	var err error
	if e.NFrames, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.NBytes, err = c.Uint64(); err != nil {
		return nil, err
	}
	if e.SeekTOC, err = c.Uint64(); err != nil {
		return nil, err
	}
	if e.ChkSumFrHeader, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.ChkSum, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.ChkSumFile, err = c.Uint32(); err != nil {
		return nil, err
	}

	return e, nil
}

func WriteEndOfFile(w *wire.Writer, e *EndOfFile) error {
	if err := w.BeginStruct(format.ClassFrEndOfFile, e.InstanceID); err != nil {
		return err
	}

	if err := w.WriteUint32(e.NFrames); err != nil {
		return err
	}
	if err := w.WriteUint64(e.NBytes); err != nil {
		return err
	}
	if err := w.WriteUint64(e.SeekTOC); err != nil {
		return err
	}
	if err := w.WriteUint32(e.ChkSumFrHeader); err != nil {
		return err
	}
	if err := w.WriteUint32(e.ChkSum); err != nil {
		return err
	}
	if err := w.WriteUint32(e.ChkSumFile); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	mustRegister("FrEndOfFile", format.ClassFrEndOfFile, []registry.Field{
		{Name: "nFrames", Type: "INT_4U"},
		{Name: "nBytes", Type: "INT_8U"},
		{Name: "seekTOC", Type: "INT_8U"},
		{Name: "chkSumFrHeader", Type: "INT_4U"},
		{Name: "chkSum", Type: "INT_4U"},
		{Name: "chkSumFile", Type: "INT_4U"},
	}, func() any { return &EndOfFile{} })
}
