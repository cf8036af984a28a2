package frame

import (
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

func TestEndOfFrame_WriteReadRoundTrip(t *testing.T) {
	e := &EndOfFrame{InstanceID: 1, Run: -1, FrameNumber: 7}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteEndOfFrame(w, e))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrEndOfFrame, rec.ClassID)

	got, err := ReadEndOfFrame(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, e.Run, got.Run)
	require.Equal(t, e.FrameNumber, got.FrameNumber)
}
