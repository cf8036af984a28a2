package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/stretchr/testify/require"
)

// seekBuffer adapts a bytes.Buffer-backed slice into an io.ReadWriteSeeker
// for round-trip tests, the same shape tests in the pack use for in-memory
// fixtures.
type seekBuffer struct {
	data []byte
	pos  int64
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if int64(len(b.data)) < b.pos+int64(len(p)) {
		grown := make([]byte, b.pos+int64(len(p)))
		copy(grown, b.data)
		b.data = grown
	}
	n := copy(b.data[b.pos:], p)
	b.pos += int64(n)

	return n, nil
}

func (b *seekBuffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)

	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
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

func TestWriter_BeginEndStruct_RoundTrip(t *testing.T) {
	sb := &seekBuffer{}
	w := NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())

	require.NoError(t, w.BeginStruct(format.ClassFrameH, 1))
	require.NoError(t, w.WriteInt32(3))
	require.NoError(t, w.WriteUint32(7))
	require.NoError(t, w.WriteString("H1:STRAIN"))
	require.NoError(t, w.EndStruct())

	r := NewReader(bytes.NewReader(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())

	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrameH, rec.ClassID)
	require.Equal(t, uint32(1), rec.InstanceID)

	cur := NewCursor(rec.Payload, endian.GetBigEndianEngine())
	run, err := cur.Int32()
	require.NoError(t, err)
	require.Equal(t, int32(3), run)

	frameNo, err := cur.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(7), frameNo)

	name, err := cur.String()
	require.NoError(t, err)
	require.Equal(t, "H1:STRAIN", name)
}

func TestReader_ReadRecord_CorruptStructure(t *testing.T) {
	sb := &seekBuffer{}
	w := NewWriter(sb)
	require.NoError(t, w.BeginStruct(format.ClassFrVect, 2))
	require.NoError(t, w.WriteUint32(42))
	require.NoError(t, w.EndStruct())

	corrupted := append([]byte(nil), sb.data...)
	corrupted[len(corrupted)-1] ^= 0xFF // flip a bit in the stored chkSum

	r := NewReader(bytes.NewReader(corrupted))
	_, err := r.ReadRecord()
	require.ErrorIs(t, err, errs.ErrCorruptStructure)
	require.ErrorIs(t, r.Poisoned(), errs.ErrCorruptStructure)
}

func TestReader_ReadRecord_Truncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 0, 0, 0, 0, 0, 0, 30})) // declares 30 bytes, none follow
	_, err := r.ReadRecord()
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestRefTable_DeferredResolution(t *testing.T) {
	tab := newRefTable()

	var resolved string
	tab.Resolve(5, func(obj any) { resolved = obj.(string) })
	require.Empty(t, resolved)

	tab.Register(5, "later")
	require.Equal(t, "later", resolved)

	require.NoError(t, tab.Finish())
}

func TestRefTable_BrokenReference(t *testing.T) {
	tab := newRefTable()
	tab.Resolve(9, func(any) {})

	err := tab.Finish()
	require.ErrorIs(t, err, errs.ErrBrokenReference)
}

func TestReader_Poisoned_SticksAfterFatalError(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadUint32()
	require.Error(t, err)

	_, err2 := r.ReadUint8()
	require.ErrorIs(t, err2, err)
}
