package framefile

import (
	"io"
	"math"
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/frame"
	"github.com/stretchr/testify/require"
)

// seekBuffer adapts a byte slice into an io.ReadWriteSeeker, the same
// in-memory fixture shape every package in this module uses for round-trip
// tests instead of touching a real file.
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

func nativeEngine() endian.EndianEngine {
	if endian.IsNativeLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

func int32Bytes(vals ...int32) []byte {
	engine := nativeEngine()

	out := make([]byte, 0, len(vals)*4)
	tmp := make([]byte, 4)
	for _, v := range vals {
		engine.PutUint32(tmp, uint32(v))
		out = append(out, tmp...)
	}

	return out
}

func float32Bytes(vals ...float32) []byte {
	engine := nativeEngine()

	out := make([]byte, 0, len(vals)*4)
	tmp := make([]byte, 4)
	for _, v := range vals {
		engine.PutUint32(tmp, math.Float32bits(v))
		out = append(out, tmp...)
	}

	return out
}

func newEmptyFrame(run int32, frameNumber uint32) *Frame {
	return &Frame{
		Run:         run,
		FrameNumber: frameNumber,
		GTime:       frame.GPSTime{Seconds: 1000000000 + frameNumber, Nanoseconds: 0},
		Duration:    1.0,
		DataQuality: 0,
	}
}

func newADCFrame(t *testing.T, channel string, data []byte, elemType format.ElementType) *Frame {
	t.Helper()

	nData := uint32(len(data)) / uint32(elemType.ByteSize()) //nolint:gosec
	v, err := frame.NewVect(channel, "ct", elemType, []frame.Dimension{{Length: nData, Step: 1, Origin: 0, Unit: "s"}}, data)
	require.NoError(t, err)

	fr := newEmptyFrame(1, 0)
	fr.ADC = []ADCChannel{{
		Data: &frame.AdcData{
			Name:       channel,
			SampleRate: 16384,
			NBits:      16,
			Slope:      1,
		},
		Vect: v,
	}}

	return fr
}

func TestOpenWrite_OpenRead_EmptyFrameRoundTrip(t *testing.T) {
	sb := &seekBuffer{}

	w, err := OpenWrite(sb)
	require.NoError(t, err)

	require.NoError(t, w.WriteFrame(newEmptyFrame(7, 0)))
	require.NoError(t, w.WriteFrame(newEmptyFrame(7, 1)))
	require.NoError(t, w.Close())

	r, err := OpenRead(sb)
	require.NoError(t, err)

	fr, err := r.NextFrame()
	require.NoError(t, err)
	require.NotNil(t, fr)
	require.Equal(t, int32(7), fr.Run)
	require.Equal(t, uint32(0), fr.FrameNumber)

	fr, err = r.NextFrame()
	require.NoError(t, err)
	require.NotNil(t, fr)
	require.Equal(t, uint32(1), fr.FrameNumber)

	fr, err = r.NextFrame()
	require.NoError(t, err)
	require.Nil(t, fr)

	require.NoError(t, r.Close())
	require.Equal(t, 2, r.FrameCount())

	eof := r.EndOfFile()
	require.NotNil(t, eof)
	require.Equal(t, uint32(2), eof.NFrames)
}

func TestFrameFile_HeaderReflectsEndianOption(t *testing.T) {
	sb := &seekBuffer{}

	w, err := OpenWrite(sb, WithLittleEndian())
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(newEmptyFrame(1, 0)))
	require.NoError(t, w.Close())

	r, err := OpenRead(sb)
	require.NoError(t, err)
	require.True(t, r.Header().LittleEndian)
	require.Equal(t, format.ChecksumCRC32, r.Header().Checksum)
}
