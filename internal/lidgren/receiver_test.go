package lidgren_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/lidgren"
)

func TestReliableOrderedReceiverInOrder(t *testing.T) {
	h := lidgren.NewReliableOrderedReceiver()

	d, ack := h.Handle(0, []byte("a"))
	require.True(t, ack)
	require.Equal(t, [][]byte{[]byte("a")}, d)

	d, ack = h.Handle(1, []byte("b"))
	require.True(t, ack)
	require.Equal(t, [][]byte{[]byte("b")}, d)
}

func TestReliableOrderedReceiverBuffersOutOfOrder(t *testing.T) {
	h := lidgren.NewReliableOrderedReceiver()
	h.Handle(0, []byte("a"))

	// seq 2 arrives before seq 1: buffered, nothing delivered yet.
	d, ack := h.Handle(2, []byte("c"))
	require.True(t, ack)
	require.Nil(t, d)

	// seq 1 arrives: delivers 1 then drains the buffered 2.
	d, ack = h.Handle(1, []byte("b"))
	require.True(t, ack)
	require.Equal(t, [][]byte{[]byte("b"), []byte("c")}, d)
}

func TestReliableOrderedReceiverDropsStale(t *testing.T) {
	h := lidgren.NewReliableOrderedReceiver()
	h.Handle(5, []byte("a"))

	d, ack := h.Handle(5, []byte("dup"))
	require.True(t, ack)
	require.Nil(t, d)

	d, ack = h.Handle(3, []byte("old"))
	require.True(t, ack)
	require.Nil(t, d)
}

func TestReliableOrderedReceiverRejectsTooFarAhead(t *testing.T) {
	h := lidgren.NewReliableOrderedReceiver()
	h.Handle(0, []byte("a"))

	d, ack := h.Handle(100, []byte("far"))
	require.False(t, ack)
	require.Nil(t, d)
}
