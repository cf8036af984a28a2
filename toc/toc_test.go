package toc

import (
	"bytes"
	"io"
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

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

func newReadSeeker(data []byte) io.ReadSeeker { return bytes.NewReader(data) }

func buildSampleTOC(t *testing.T) *TOC {
	t.Helper()

	toc := New()
	toc.RecordFrame(1, 0, 1000000000, 0, 1.0, 0, 100)
	require.NoError(t, toc.RecordChannel(ChannelADC, "H1:STRAIN", 200))
	require.NoError(t, toc.RecordChannel(ChannelProc, "H1:PROC", 300))
	require.NoError(t, toc.RecordEventCount("H1:TRIGGER", 2))
	require.NoError(t, toc.RecordDetector("H1", 50))

	toc.RecordFrame(1, 1, 1000000001, 0, 1.0, 0, 1100)
	require.NoError(t, toc.RecordChannel(ChannelADC, "H1:STRAIN", 1200))
	require.NoError(t, toc.RecordEventCount("H1:TRIGGER", 0))

	return toc
}

func TestTOC_BuilderAndQueries(t *testing.T) {
	toc := buildSampleTOC(t)
	toc.Finalize()

	require.Equal(t, 2, toc.FrameCount())

	off, err := toc.PositionH(0)
	require.NoError(t, err)
	require.Equal(t, int64(100), off)

	off, err = toc.PositionH(1)
	require.NoError(t, err)
	require.Equal(t, int64(1100), off)

	_, err = toc.PositionH(2)
	require.ErrorIs(t, err, errs.ErrFrameIndexOutOfRange)

	off, err = toc.PositionADC(0, "H1:STRAIN")
	require.NoError(t, err)
	require.Equal(t, int64(200), off)

	off, err = toc.PositionADC(1, "H1:STRAIN")
	require.NoError(t, err)
	require.Equal(t, int64(1200), off)

	// proc channel went silent after frame 0: Finalize zero-pads it.
	off, err = toc.PositionProc(1, "H1:PROC")
	require.NoError(t, err)
	require.Equal(t, int64(0), off)

	_, err = toc.PositionADC(0, "H1:MISSING")
	require.ErrorIs(t, err, errs.ErrChannelNotFound)

	off, err = toc.PositionDetector("H1")
	require.NoError(t, err)
	require.Equal(t, int64(50), off)

	_, err = toc.PositionDetector("L1")
	require.ErrorIs(t, err, errs.ErrChannelNotFound)

	require.Equal(t, []string{"H1:STRAIN"}, toc.ChannelNames(ChannelADC))
	require.Equal(t, []string{"H1:PROC"}, toc.ChannelNames(ChannelProc))
	require.Equal(t, []string{"H1"}, toc.DetectorNames())

	require.Equal(t, []uint32{2, 0}, toc.EventCount["H1:TRIGGER"])
}

func TestTOC_RecordChannel_BeforeAnyFrame(t *testing.T) {
	toc := New()
	err := toc.RecordChannel(ChannelADC, "H1:STRAIN", 0)
	require.ErrorIs(t, err, errs.ErrFrameIndexOutOfRange)
}

func TestTOC_RecordChannel_EmptyName(t *testing.T) {
	toc := New()
	toc.RecordFrame(1, 0, 0, 0, 1.0, 0, 0)
	err := toc.RecordChannel(ChannelADC, "", 0)
	require.ErrorIs(t, err, errs.ErrEmptyChannelName)
}

func TestTOC_HashCollisionFallback(t *testing.T) {
	idx := newChannelIndex()
	require.NoError(t, idx.record("a", 0, 10))
	require.NoError(t, idx.record("b", 0, 20))

	// Force a collision by hand: make both names share one hash id.
	idx.byHash = map[uint64][]int64{}
	idx.tracker.Reset()
	require.NoError(t, idx.tracker.Track("a", 42))
	require.NoError(t, idx.tracker.Track("b", 42))
	require.True(t, idx.tracker.HasCollision())

	_, err := idx.positionByHash(0, 42)
	require.ErrorIs(t, err, errs.ErrHashCollision)

	// Name-based lookup still works regardless of the hash collision.
	off, err := idx.position(0, "a")
	require.NoError(t, err)
	require.Equal(t, int64(10), off)
}

func writeTOCRecord(t *testing.T, toc *TOC, engine endian.EndianEngine) []byte {
	t.Helper()

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(engine)
	require.NoError(t, WriteFrTOC(w, toc, 1))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(engine)
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrTOC, rec.ClassID)

	return rec.Payload
}

func TestFrTOC_WriteReadRoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	toc := buildSampleTOC(t)
	payload := writeTOCRecord(t, toc, engine)

	got, err := ReadFrTOC(payload, engine)
	require.NoError(t, err)

	require.Equal(t, toc.Run, got.Run)
	require.Equal(t, toc.Frame, got.Frame)
	require.Equal(t, toc.GTimeS, got.GTimeS)
	require.Equal(t, toc.Dt, got.Dt)
	require.Equal(t, toc.FrameOffsets, got.FrameOffsets)
	require.Equal(t, toc.DetectorNames(), got.DetectorNames())
	require.Equal(t, toc.Detectors, got.Detectors)
	require.Equal(t, toc.ChannelNames(ChannelADC), got.ChannelNames(ChannelADC))
	require.Equal(t, toc.EventCount, got.EventCount)

	pos, err := got.PositionADC(0, "H1:STRAIN")
	require.NoError(t, err)
	require.Equal(t, int64(200), pos)

	pos, err = got.PositionADC(1, "H1:STRAIN")
	require.NoError(t, err)
	require.Equal(t, int64(1200), pos)

	pos, err = got.PositionProc(1, "H1:PROC")
	require.NoError(t, err)
	require.Equal(t, int64(0), pos)
}

func TestFrTOC_CachePositionsMatchesEagerRead(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	toc := buildSampleTOC(t)
	payload := writeTOCRecord(t, toc, engine)

	eager, err := ReadFrTOC(payload, engine)
	require.NoError(t, err)

	cache, err := CachePositions(payload, engine)
	require.NoError(t, err)
	require.Equal(t, eager.frameCount, cache.FrameCount())
	require.Equal(t, eager.ChannelNames(ChannelADC), cache.ChannelNames(ChannelADC))

	for i := 0; i < cache.FrameCount(); i++ {
		want, wantErr := eager.PositionADC(i, "H1:STRAIN")
		got, gotErr := cache.PositionAt(ChannelADC, i, "H1:STRAIN")
		require.Equal(t, wantErr, gotErr)
		require.Equal(t, want, got)
	}

	h0, err := cache.PositionH(0)
	require.NoError(t, err)
	require.Equal(t, int64(100), h0)

	det, err := cache.PositionDetector("H1")
	require.NoError(t, err)
	require.Equal(t, int64(50), det)

	count, err := cache.EventCountAt(0, "H1:TRIGGER")
	require.NoError(t, err)
	require.Equal(t, uint32(2), count)

	count, err = cache.EventCountAt(1, "H1:TRIGGER")
	require.NoError(t, err)
	require.Equal(t, uint32(0), count)

	_, err = cache.SeekPositions(ChannelADC, "H1:MISSING")
	require.ErrorIs(t, err, errs.ErrChannelNotFound)

	_, err = cache.PositionAt(ChannelADC, 99, "H1:STRAIN")
	require.ErrorIs(t, err, errs.ErrFrameIndexOutOfRange)
}

func TestFrTOC_EmptyTOCRoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	toc := New()
	payload := writeTOCRecord(t, toc, engine)

	got, err := ReadFrTOC(payload, engine)
	require.NoError(t, err)
	require.Equal(t, 0, got.FrameCount())
	require.Empty(t, got.DetectorNames())

	cache, err := CachePositions(payload, engine)
	require.NoError(t, err)
	require.Equal(t, 0, cache.FrameCount())
}
