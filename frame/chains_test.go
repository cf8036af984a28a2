package frame

import (
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

func TestHistory_WriteReadRoundTrip(t *testing.T) {
	h := &History{InstanceID: 1, Name: "frameCPP", Time: 12345, Comment: "initial write", Next: wire.HandleFromID[*History](2)}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteHistory(w, h))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrHistory, rec.ClassID)

	got, err := ReadHistory(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, h.Name, got.Name)
	require.Equal(t, h.Time, got.Time)
	require.Equal(t, h.Next, got.Next)
}

func TestMsg_WriteReadRoundTrip(t *testing.T) {
	m := &Msg{InstanceID: 1, Alarm: "DAQ", Message: "lock loss", Severity: 3, Time: 999, Next: wire.HandleFromID[*Msg](0)}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteMsg(w, m))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrMsg, rec.ClassID)

	got, err := ReadMsg(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, m.Alarm, got.Alarm)
	require.Equal(t, m.Severity, got.Severity)
	require.False(t, got.Next.Valid())
}

func TestDetector_WriteReadRoundTrip(t *testing.T) {
	d := &Detector{
		InstanceID:  1,
		Name:        "LIGO Hanford",
		Prefix:      "H1",
		Latitude:    46.45,
		Longitude:   -119.41,
		Elevation:   142.5,
		ArmXAzimuth: 2.199,
		ArmYAzimuth: 3.770,
		Next:        wire.HandleFromID[*Detector](0),
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteDetector(w, d))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrDetector, rec.ClassID)

	got, err := ReadDetector(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	got.InstanceID = rec.InstanceID
	require.Equal(t, *d, *got)
}

func TestChainToSlice(t *testing.T) {
	byID := map[uint32]*History{
		1: {InstanceID: 1, Name: "first", Next: wire.HandleFromID[*History](2)},
		2: {InstanceID: 2, Name: "second", Next: wire.HandleFromID[*History](3)},
		3: {InstanceID: 3, Name: "third", Next: wire.HandleFromID[*History](0)},
	}

	out := ChainToSlice(wire.HandleFromID[*History](1), byID, func(h *History) wire.Handle[*History] { return h.Next })
	require.Len(t, out, 3)
	require.Equal(t, []string{"first", "second", "third"}, []string{out[0].Name, out[1].Name, out[2].Name})
}

func TestChainToSlice_Empty(t *testing.T) {
	byID := map[uint32]*History{}
	out := ChainToSlice(wire.HandleFromID[*History](0), byID, func(h *History) wire.Handle[*History] { return h.Next })
	require.Empty(t, out)
}

func TestChainToSlice_DanglingNextTruncates(t *testing.T) {
	byID := map[uint32]*History{
		1: {InstanceID: 1, Name: "only", Next: wire.HandleFromID[*History](99)},
	}

	out := ChainToSlice(wire.HandleFromID[*History](1), byID, func(h *History) wire.Handle[*History] { return h.Next })
	require.Len(t, out, 1)
	require.Equal(t, "only", out[0].Name)
}
