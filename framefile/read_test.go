package framefile

import (
	"testing"

	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/toc"
	"github.com/stretchr/testify/require"
)

func TestFrameFile_TOCRandomAccess(t *testing.T) {
	sb := &seekBuffer{}

	w, err := OpenWrite(sb)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		fr := newADCFrame(t, "H1:STRAIN", int32Bytes(int32(i), int32(i)+1), format.ElementInt32)
		fr.FrameNumber = uint32(i)
		require.NoError(t, w.WriteFrame(fr))
	}
	require.NoError(t, w.Close())

	r, err := OpenRead(sb)
	require.NoError(t, err)

	for {
		fr, err := r.NextFrame()
		require.NoError(t, err)
		if fr == nil {
			break
		}
	}

	tc := r.TOC()
	require.NotNil(t, tc)
	require.Equal(t, 3, tc.FrameCount())

	off, err := tc.PositionADC(1, "H1:STRAIN")
	require.NoError(t, err)

	hOffset, err := tc.PositionH(1)
	require.NoError(t, err)
	require.Less(t, hOffset, off)

	fr, err := r.ReadFrameAt(hOffset)
	require.NoError(t, err)
	require.Equal(t, uint32(1), fr.FrameNumber)

	cache, err := r.LoadTOCCache()
	require.NoError(t, err)

	cachedOff, err := cache.PositionAt(toc.ChannelADC, 1, "H1:STRAIN")
	require.NoError(t, err)
	require.Equal(t, off, cachedOff)
}

func TestFrameFile_ReadFrameAtByHOffset(t *testing.T) {
	sb := &seekBuffer{}

	w, err := OpenWrite(sb)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		fr := newADCFrame(t, "H1:STRAIN", int32Bytes(int32(i)), format.ElementInt32)
		fr.FrameNumber = uint32(i)
		require.NoError(t, w.WriteFrame(fr))
	}
	require.NoError(t, w.Close())

	r, err := OpenRead(sb)
	require.NoError(t, err)
	for {
		fr, err := r.NextFrame()
		require.NoError(t, err)
		if fr == nil {
			break
		}
	}

	tc := r.TOC()
	hOffset, err := tc.PositionH(2)
	require.NoError(t, err)

	fr, err := r.ReadFrameAt(hOffset)
	require.NoError(t, err)
	require.Equal(t, uint32(2), fr.FrameNumber)

	// The sequential read position is unaffected by the random-access read.
	next, err := r.NextFrame()
	require.NoError(t, err)
	require.Nil(t, next)
}

func TestFrameFile_ReadFrameAtDoesNotAlterFileChecksum(t *testing.T) {
	sb := &seekBuffer{}

	w, err := OpenWrite(sb)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		fr := newADCFrame(t, "H1:STRAIN", int32Bytes(int32(i)), format.ElementInt32)
		fr.FrameNumber = uint32(i)
		require.NoError(t, w.WriteFrame(fr))
	}
	require.NoError(t, w.Close())

	r, err := OpenRead(sb)
	require.NoError(t, err)

	for {
		fr, err := r.NextFrame()
		require.NoError(t, err)
		if fr == nil {
			break
		}
	}

	beforeCRC := r.r.FileCheckSum()

	tc := r.TOC()
	hOffset, err := tc.PositionH(1)
	require.NoError(t, err)

	_, err = r.ReadFrameAt(hOffset)
	require.NoError(t, err)

	require.Equal(t, beforeCRC, r.r.FileCheckSum(), "random-access read must not feed the file-wide checksum")
}
