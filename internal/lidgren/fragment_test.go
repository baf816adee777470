package lidgren_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/lidgren"
)

func TestReassemblerRoundTrip(t *testing.T) {
	message := bytes.Repeat([]byte("x"), 2500)
	chunks := lidgren.ChunkFragments(1, message, 1024)
	require.Len(t, chunks, 3)

	r := lidgren.NewReassembler()
	now := time.Now()
	var got []byte
	var ok bool
	for _, c := range chunks {
		got, ok, _ = r.Feed(c, now)
	}
	require.True(t, ok)
	require.Equal(t, message, got)
}

func TestReassemblerOutOfOrderChunks(t *testing.T) {
	message := bytes.Repeat([]byte("y"), 300)
	chunks := lidgren.ChunkFragments(2, message, 100)
	require.Len(t, chunks, 3)

	r := lidgren.NewReassembler()
	now := time.Now()

	_, ok, err := r.Feed(chunks[2], now)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = r.Feed(chunks[0], now)
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := r.Feed(chunks[1], now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, message, got)
}

func TestReassemblerCleanupDropsStale(t *testing.T) {
	message := bytes.Repeat([]byte("z"), 2000)
	chunks := lidgren.ChunkFragments(3, message, 500)

	r := lidgren.NewReassembler()
	t0 := time.Now()
	r.Feed(chunks[0], t0)

	dropped := r.Cleanup(t0.Add(lidgren.FragmentTimeout + time.Second))
	require.Equal(t, 1, dropped)

	// The group is gone: feeding the remaining chunks starts a fresh group
	// rather than completing the old one.
	_, ok, err := r.Feed(chunks[1], t0.Add(lidgren.FragmentTimeout+time.Second))
	require.NoError(t, err)
	require.False(t, ok)
}
