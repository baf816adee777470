// Package lz4wrap implements the compressed-packet envelope: a MessagePack
// array whose first element is an ext-tag-98 value holding the concatenated
// big-endian uncompressed sizes of each following LZ4 block, followed by
// that many LZ4-compressed binary blocks. Grounded in
// original_source/src/network/packets/compression.rs, reimplemented with
// pierrec/lz4/v4's block-level API in place of the Rust lz4 crate.
package lz4wrap

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/ecconia/logicworldd/internal/msgpack"
)

// sizeExtTag is the MessagePack ext type tag marking the uncompressed-size
// table, matching the original implementation's envelope.
const sizeExtTag = 98

// Decompress reads a compression envelope from buf and returns the
// concatenated decompressed payload of every block. It returns an error if
// buf isn't shaped like an envelope (an array whose first element is ext tag
// 98), so the caller can fall back to treating buf as uncompressed.
func Decompress(buf []byte) ([]byte, error) {
	r := msgpack.NewReader(buf)
	snap := r.Snapshot()

	n, err := r.ExpectArrayHeader()
	if err != nil {
		r.Restore(snap)
		return nil, fmt.Errorf("lz4wrap: not an envelope array: %w", err)
	}
	if n < 1 {
		return nil, fmt.Errorf("lz4wrap: envelope array must have at least one element")
	}

	tag, sizeTable, err := r.ExpectExt()
	if err != nil {
		return nil, fmt.Errorf("lz4wrap: reading size table: %w", err)
	}
	if tag != sizeExtTag {
		return nil, fmt.Errorf("lz4wrap: unexpected ext tag %d (want %d)", tag, sizeExtTag)
	}

	blockCount := n - 1
	if len(sizeTable) != blockCount*8 {
		return nil, fmt.Errorf("lz4wrap: size table has %d bytes, want %d for %d blocks",
			len(sizeTable), blockCount*8, blockCount)
	}

	var out []byte
	for i := 0; i < blockCount; i++ {
		declaredSize := be64(sizeTable[i*8 : i*8+8])

		block, err := r.ExpectBinary()
		if err != nil {
			return nil, fmt.Errorf("lz4wrap: reading block %d: %w", i, err)
		}

		dst := make([]byte, declaredSize)
		actual, err := lz4.UncompressBlock(block, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4wrap: decompressing block %d: %w", i, err)
		}
		if uint64(actual) != declaredSize {
			return nil, fmt.Errorf("lz4wrap: block %d decompressed to %d bytes, declared %d",
				i, actual, declaredSize)
		}

		out = append(out, dst[:actual]...)
	}

	return out, nil
}

// Compress splits data into a single block (callers needing multiple blocks
// should chunk before calling) and wraps it in a compression envelope
// matching Decompress's expected shape.
func Compress(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	dst := make([]byte, bound)
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4wrap: compress block: %w", err)
	}
	if n == 0 {
		// Incompressible input; pierrec returns n==0 in this case. Store
		// raw bytes is not representable by UncompressBlock's format, so
		// fall back to a block no larger than the source isn't possible —
		// callers must not feed incompressible data through this path.
		return nil, fmt.Errorf("lz4wrap: data is incompressible")
	}
	block := dst[:n]

	w := msgpack.NewWriter()
	w.WriteArrayHeader(2)
	sizeTable := make([]byte, 8)
	putBE64(sizeTable, uint64(len(data)))
	w.WriteExt(sizeExtTag, sizeTable)
	w.WriteBinary(block)
	return w.Bytes(), nil
}

func be64(b []byte) uint64 {
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}

func putBE64(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}
