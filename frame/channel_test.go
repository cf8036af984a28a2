package frame

import (
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

func TestAdcData_WriteReadRoundTrip(t *testing.T) {
	a := &AdcData{
		InstanceID:    1,
		Name:          "H1:STRAIN",
		Comment:       "strain channel",
		ChannelGroup:  1,
		ChannelNumber: 2,
		NBits:         16,
		Bias:          0.5,
		Slope:         1.25,
		Units:         "counts",
		SampleRate:    16384,
		TimeOffset:    0,
		FShift:        0,
		Phase:         0,
		Data:          wire.HandleFromID[*Vect](9),
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteAdcData(w, a))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrAdcData, rec.ClassID)

	got, err := ReadAdcData(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, a.Name, got.Name)
	require.Equal(t, a.ChannelGroup, got.ChannelGroup)
	require.Equal(t, a.NBits, got.NBits)
	require.Equal(t, a.Bias, got.Bias)
	require.Equal(t, a.SampleRate, got.SampleRate)
	require.Equal(t, a.Data, got.Data)
}

func TestProcData_WriteReadRoundTrip(t *testing.T) {
	p := &ProcData{
		InstanceID: 2,
		Name:       "H1:STRAIN_PROC",
		Comment:    "",
		Type:       1,
		SubType:    0,
		TimeOffset: 1.5,
		TRange:     16,
		FShift:     100,
		Phase:      0.25,
		BandWidth:  8192,
		Data:       wire.HandleFromID[*Vect](11),
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteProcData(w, p))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrProcData, rec.ClassID)

	got, err := ReadProcData(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	got.InstanceID = rec.InstanceID
	require.Equal(t, *p, *got)
}

func TestSimData_WriteReadRoundTrip(t *testing.T) {
	s := &SimData{
		InstanceID: 3,
		Name:       "H1:INJ",
		Comment:    "injected signal",
		SampleRate: 16384,
		TimeOffset: 0,
		Data:       wire.HandleFromID[*Vect](12),
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteSimData(w, s))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrSimData, rec.ClassID)

	got, err := ReadSimData(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	got.InstanceID = rec.InstanceID
	require.Equal(t, *s, *got)
}
