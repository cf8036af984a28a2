package frame

import (
	"math"
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

func TestFrameH_WriteReadRoundTrip(t *testing.T) {
	h := &FrameH{
		InstanceID:  1,
		Run:         -2,
		FrameNumber: 42,
		GTime:       GPSTime{Seconds: 1000000000, Nanoseconds: 500},
		Duration:    16.0,
		DataQuality: 0xABCD1234,
		ADC:         []wire.Handle[*AdcData]{wire.HandleFromID[*AdcData](2), wire.HandleFromID[*AdcData](3)},
		Proc:        []wire.Handle[*ProcData]{wire.HandleFromID[*ProcData](4)},
		HistoryHead: wire.HandleFromID[*History](7),
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteFrameH(w, h))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())

	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrameH, rec.ClassID)
	require.Equal(t, uint32(1), rec.InstanceID)

	got, err := ReadFrameH(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, h.Run, got.Run)
	require.Equal(t, h.FrameNumber, got.FrameNumber)
	require.Equal(t, h.GTime, got.GTime)
	require.Equal(t, h.Duration, got.Duration)
	require.Equal(t, h.DataQuality, got.DataQuality)
	require.Equal(t, h.ADC, got.ADC)
	require.Equal(t, h.Proc, got.Proc)
	require.Empty(t, got.Sim)
	require.Equal(t, h.HistoryHead, got.HistoryHead)
	require.Equal(t, uint32(0), got.MsgHead.ID())
}

func TestFrameH_PromoteDemote_Identity(t *testing.T) {
	v1 := &FrameHV1{
		InstanceID:  5,
		Run:         1,
		FrameNumber: 10,
		GTime:       GPSTime{Seconds: 123, Nanoseconds: 456},
		Duration:    4.0,
		DataQuality: 0xBEEF,
	}

	v2 := PromoteFrameH(v1)
	require.Equal(t, uint32(v1.DataQuality), v2.DataQuality)

	back, err := DemoteFrameH(v2)
	require.NoError(t, err)
	require.Equal(t, v1, back)
}

func TestFrameH_Demote_NotRepresentable(t *testing.T) {
	v2 := &FrameH{DataQuality: math.MaxUint16 + 1}

	_, err := DemoteFrameH(v2)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrDemoteNotRepresentable)
}
