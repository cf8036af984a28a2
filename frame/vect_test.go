package frame

import (
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

func int32Bytes(vals ...int32) []byte {
	engine := endian.GetLittleEndianEngine()
	if !endian.IsNativeLittleEndian() {
		engine = endian.GetBigEndianEngine()
	}

	out := make([]byte, 0, len(vals)*4)
	tmp := make([]byte, 4)
	for _, v := range vals {
		engine.PutUint32(tmp, uint32(v))
		out = append(out, tmp...)
	}

	return out
}

func TestVect_NewAndWriteReadRoundTrip(t *testing.T) {
	data := int32Bytes(10, 20, 30, 40)
	dims := []Dimension{{Length: 4, Step: 0.5, Origin: 0, Unit: "s"}}

	v, err := NewVect("H1:STRAIN", "ct", format.ElementInt32, dims, data)
	require.NoError(t, err)
	require.Equal(t, format.Raw, v.Code.Scheme())
	v.InstanceID = 3

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteVect(w, v))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())

	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrVect, rec.ClassID)
	require.Equal(t, uint32(3), rec.InstanceID)

	got, err := ReadVect(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, v.Name, got.Name)
	require.Equal(t, v.UnitY, got.UnitY)
	require.Equal(t, v.Type, got.Type)
	require.Equal(t, v.NData, got.NData)
	require.Equal(t, v.Data, got.Data)
	require.Equal(t, v.Dims, got.Dims)
}

func TestVect_CloneCompressedRoundTrip(t *testing.T) {
	vals := make([]int32, 200)
	for i := range vals {
		vals[i] = 0
	}
	vals[50] = 7
	vals[51] = -3

	dims := []Dimension{{Length: 200, Step: 1, Origin: 0, Unit: "count"}}
	v, err := NewVect("sparse", "count", format.ElementInt32, dims, int32Bytes(vals...))
	require.NoError(t, err)

	compressed, err := v.CloneCompressed(format.ZeroSuppressWord4, 0)
	require.NoError(t, err)
	require.Equal(t, format.ZeroSuppressWord4, compressed.Code.Scheme())
	require.Less(t, len(compressed.Data), len(v.Data))

	expanded, err := compressed.ExpandCopy()
	require.NoError(t, err)
	require.Equal(t, v.Data, expanded)
}

func TestVect_ExpandInPlace(t *testing.T) {
	data := int32Bytes(1, 2, 3)
	dims := []Dimension{{Length: 3, Step: 1, Origin: 0, Unit: "s"}}
	v, err := NewVect("x", "", format.ElementInt32, dims, data)
	require.NoError(t, err)

	compressed, err := v.CloneCompressed(format.Gzip, 6)
	require.NoError(t, err)

	require.NoError(t, compressed.ExpandInPlace())
	require.Equal(t, format.Raw, compressed.Code.Scheme())
	require.Equal(t, data, compressed.Data)
}

func TestReadVect_DimensionMismatch(t *testing.T) {
	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())

	v := &Vect{
		Name:  "bad",
		Type:  format.ElementInt32,
		Code:  format.NewCompressionCode(format.Raw, endian.IsNativeLittleEndian()),
		NData: 4, // declared, but dims below only cover 3
		Dims:  []Dimension{{Length: 3, Step: 1, Origin: 0, Unit: "s"}},
		Data:  int32Bytes(1, 2, 3),
	}
	require.NoError(t, WriteVect(w, v))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)

	_, err = ReadVect(rec.Payload, endian.GetBigEndianEngine())
	require.Error(t, err)
}
