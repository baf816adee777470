package lidgren_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/lidgren"
)

func testRemote(t *testing.T) netip.AddrPort {
	t.Helper()
	return netip.MustParseAddrPort("127.0.0.1:12345")
}

func TestConnectionDeliversReliableOrderedInSequence(t *testing.T) {
	now := time.Now()
	c := lidgren.NewConnection(testRemote(t), now)

	h0 := lidgren.Header{Type: lidgren.UserReliableOrdered(0), Sequence: 0}
	delivered, ack, err := c.HandleFrame(h0, []byte("first"), now)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("first")}, delivered)
	require.NotNil(t, ack)
}

func TestConnectionReassemblesFragmentedReliableMessage(t *testing.T) {
	now := time.Now()
	c := lidgren.NewConnection(testRemote(t), now)

	message := []byte("a fragmented reliable ordered message payload")
	chunks := lidgren.ChunkFragments(1, message, 16)

	var got [][]byte
	for i, chunk := range chunks {
		h := lidgren.Header{Type: lidgren.UserReliableOrdered(0), Sequence: uint16(i), Fragment: true}
		delivered, _, err := c.HandleFrame(h, chunk, now)
		require.NoError(t, err)
		got = append(got, delivered...)
	}

	require.Len(t, got, 1)
	require.Equal(t, message, got[0])
}

func TestConnectionAcknowledgeFeedsBackIntoSender(t *testing.T) {
	now := time.Now()
	c := lidgren.NewConnection(testRemote(t), now)

	s := c.Sender(0)
	s.Enqueue([]byte("hello"), false)
	frames := s.SendMessages(now)
	require.Len(t, frames, 1)

	ackPayload := []byte{lidgren.UserReliableOrdered(0).ID(), byte(frames[0].Sequence), byte(frames[0].Sequence >> 8)}
	_, _, err := c.HandleFrame(lidgren.Header{Type: lidgren.Acknowledge}, ackPayload, now)
	require.NoError(t, err)

	// After acknowledgement, no retransmit even well past the resend window.
	require.Empty(t, s.SendMessages(now.Add(2*lidgren.ResendInterval)))
}
