package lidgren_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/lidgren"
)

func TestHeaderRoundTrip(t *testing.T) {
	buf := lidgren.AppendHeader(nil, lidgren.UserReliableOrdered(0), true, 42, 10)
	require.Len(t, buf, lidgren.HeaderSize)

	h, err := lidgren.ParseHeader(buf)
	require.NoError(t, err)
	require.Equal(t, lidgren.UserReliableOrdered(0), h.Type)
	require.True(t, h.Fragment)
	require.Equal(t, uint16(42), h.Sequence)
	require.Equal(t, 10, h.PayloadLen)
}

func TestHeaderNonFragment(t *testing.T) {
	buf := lidgren.AppendHeader(nil, lidgren.Discovery, false, 0, 0)
	h, err := lidgren.ParseHeader(buf)
	require.NoError(t, err)
	require.False(t, h.Fragment)
	require.Equal(t, lidgren.Discovery, h.Type)
}

func TestHeaderTruncated(t *testing.T) {
	_, err := lidgren.ParseHeader([]byte{1, 2, 3})
	require.Error(t, err)
}
