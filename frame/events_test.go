package frame

import (
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

func TestEvent_WriteReadRoundTrip(t *testing.T) {
	e := &Event{
		InstanceID:  1,
		Name:        "GW-candidate",
		Comment:     "burst trigger",
		Inputs:      "H1:STRAIN,L1:STRAIN",
		GTime:       GPSTime{Seconds: 1126259462, Nanoseconds: 391},
		TimeBefore:  1,
		TimeAfter:   1,
		EventStatus: 0,
		Amplitude:   12.3,
		Probability: 0.99,
		Params:      map[string]float64{"snr": 24.5, "chisq": 1.1},
		Data:        []wire.Handle[*Vect]{wire.HandleFromID[*Vect](5)},
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteEvent(w, e))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrEvent, rec.ClassID)

	got, err := ReadEvent(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, e.Name, got.Name)
	require.Equal(t, e.GTime, got.GTime)
	require.Equal(t, e.EventStatus, got.EventStatus)
	require.Equal(t, e.Params, got.Params)
	require.Equal(t, e.Data, got.Data)
}

func TestSimEvent_WriteReadRoundTrip(t *testing.T) {
	e := &SimEvent{
		InstanceID: 2,
		Name:       "injected-burst",
		Comment:    "",
		Inputs:     "H1:INJ",
		GTime:      GPSTime{Seconds: 1126259462, Nanoseconds: 0},
		TimeBefore: 0.5,
		TimeAfter:  0.5,
		Amplitude:  5.0,
		Params:     map[string]float64{"hrss": 1e-22},
		Data:       []wire.Handle[*Vect]{wire.HandleFromID[*Vect](6)},
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteSimEvent(w, e))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrSimEvent, rec.ClassID)

	got, err := ReadSimEvent(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, e.Name, got.Name)
	require.Equal(t, e.GTime, got.GTime)
	require.Equal(t, e.Params, got.Params)
	require.Equal(t, e.Data, got.Data)
}
