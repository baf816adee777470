package varint_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/varint"
)

func TestUint32RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 1 << 31, math.MaxUint32}
	for _, v := range cases {
		buf := varint.AppendUint32(nil, v)
		got, n, err := varint.ReadUint32(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestUint32KnownEncoding(t *testing.T) {
	// 300 = 0b1_0010_1100 -> low 7 bits 0x2C with continuation, then 0x02
	buf := varint.AppendUint32(nil, 300)
	require.Equal(t, []byte{0xAC, 0x02}, buf)
}

func TestUint32Truncated(t *testing.T) {
	_, _, err := varint.ReadUint32([]byte{0x80, 0x80})
	require.ErrorIs(t, err, varint.ErrTruncated)
}

func TestUint32Overflow(t *testing.T) {
	_, _, err := varint.ReadUint32([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	require.ErrorIs(t, err, varint.ErrOverflow)
}

func TestStringRoundTrip(t *testing.T) {
	buf := varint.AppendString(nil, "hello world")
	s, n, err := varint.ReadString(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, "hello world", s)
}

func TestStringEmpty(t *testing.T) {
	buf := varint.AppendString(nil, "")
	s, n, err := varint.ReadString(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "", s)
}

func TestUint64RoundTrip(t *testing.T) {
	buf := varint.AppendUint64(nil, 0x0102030405060708)
	v, n, err := varint.ReadUint64(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, uint64(0x0102030405060708), v)
}

func TestFloat32RoundTrip(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 3.14159, -0.0001, float32(math.Inf(1)), float32(math.Inf(-1))} {
		buf := varint.AppendFloat32(nil, v)
		got, n, err := varint.ReadFloat32(buf)
		require.NoError(t, err)
		require.Equal(t, 4, n)
		require.Equal(t, math.Float32bits(v), math.Float32bits(got))
	}
}

func TestInt32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, math.MinInt32, math.MaxInt32} {
		buf := varint.AppendInt32(nil, v)
		got, n, err := varint.ReadInt32(buf)
		require.NoError(t, err)
		require.Equal(t, 4, n)
		require.Equal(t, v, got)
	}
}
