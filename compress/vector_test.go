package compress

import (
	"testing"

	"github.com/igwn/gwframe/format"
	"github.com/stretchr/testify/require"
)

func TestResolveMeta(t *testing.T) {
	cases := []struct {
		name   string
		scheme format.CompressionScheme
		elem   format.ElementType
		want   format.CompressionScheme
	}{
		{"2-otherwise-gzip on 2-byte int", format.MetaZeroSuppress2OtherwiseGzip, format.ElementInt16, format.ZeroSuppressWord2},
		{"2-otherwise-gzip on 4-byte int falls back", format.MetaZeroSuppress2OtherwiseGzip, format.ElementInt32, format.Gzip},
		{"2-4-otherwise-gzip on 4-byte real", format.MetaZeroSuppress24OtherwiseGzip, format.ElementFloat32, format.ZeroSuppressWord4},
		{"2-4-otherwise-gzip on 8-byte complex uses word 4", format.MetaZeroSuppress24OtherwiseGzip, format.ElementComplex64, format.ZeroSuppressWord4},
		{"2-4-8-otherwise-gzip on 8-byte int", format.MetaZeroSuppress248OtherwiseGzip, format.ElementInt64, format.ZeroSuppressWord8},
		{"2-4-8-otherwise-gzip on string falls back", format.MetaZeroSuppress248OtherwiseGzip, format.ElementString, format.Gzip},
		{"concrete scheme passes through", format.DiffGzip, format.ElementInt32, format.DiffGzip},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveMeta(tc.scheme, tc.elem))
		})
	}
}

func TestCompressExpand_RoundTrip(t *testing.T) {
	le := endianLittle()

	cases := []struct {
		name   string
		scheme format.CompressionScheme
		elem   format.ElementType
		n      int
		data   []byte
	}{
		{"raw int32 ramp", format.Raw, format.ElementInt32, 4, packInt32(le, 1, 2, 3, 4)},
		{"gzip float64 zeros", format.Gzip, format.ElementFloat64, 8, make([]byte, 64)},
		{"diff_gzip int32 ramp of 1000", format.DiffGzip, format.ElementInt32, 1000, rampInt32(le, 1000)},
		{"zero_suppress_word_2 sparse", format.ZeroSuppressWord2, format.ElementInt16, 14, sparseInt16(le)},
		{"best meta mode on sparse data", format.MetaBest, format.ElementInt16, 14, sparseInt16(le)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scheme, encoded, err := Compress(tc.scheme, 6, tc.elem, tc.n, tc.data)
			require.NoError(t, err)
			require.False(t, scheme.IsMeta())

			decoded, err := Expand(scheme, tc.elem, tc.n, encoded, endianIsNativeLittle())
			require.NoError(t, err)
			require.Equal(t, tc.data, decoded)
		})
	}
}

func TestCompress_EmptyVector(t *testing.T) {
	scheme, encoded, err := Compress(format.Gzip, 6, format.ElementFloat64, 0, nil)
	require.NoError(t, err)
	require.Equal(t, format.Gzip, scheme)

	decoded, err := Expand(scheme, format.ElementFloat64, 0, encoded, endianIsNativeLittle())
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestBest_PicksSmallerThanGzipOnHighlySparseData(t *testing.T) {
	le := endianLittle()
	data := sparseInt16(le)

	_, gz, err := Compress(format.Gzip, 6, format.ElementInt16, len(data)/2, data)
	require.NoError(t, err)

	scheme, best, err := Compress(format.MetaBest, 6, format.ElementInt16, len(data)/2, data)
	require.NoError(t, err)
	require.LessOrEqual(t, len(best), len(gz))
	require.NotEqual(t, format.MetaBest, scheme)
}
