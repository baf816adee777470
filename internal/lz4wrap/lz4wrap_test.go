package lz4wrap_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/lz4wrap"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)

	envelope, err := lz4wrap.Compress(original)
	require.NoError(t, err)

	got, err := lz4wrap.Decompress(envelope)
	require.NoError(t, err)
	require.Equal(t, original, got)
}

func TestDecompressRejectsNonEnvelope(t *testing.T) {
	_, err := lz4wrap.Decompress([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}
