package lidgren

import (
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/ecconia/logicworldd/internal/varint"
)

// FragmentTimeout is how long an incomplete fragment group is kept before
// being discarded, matching the original implementation's 10 second cleanup
// window (original_source/src/lidgren/connected_client.rs).
const FragmentTimeout = 10 * time.Second

// fragmentGroup accumulates the chunks of one fragmented message.
type fragmentGroup struct {
	lastAccessed time.Time
	totalChunks  int
	chunkSize    int
	buffer       []byte
	received     *bitset.BitSet
	receivedCnt  int
}

// Reassembler holds the in-progress fragment groups for one connection,
// keyed by group id, and reassembles complete messages. Not safe for
// concurrent use — owned by a single Connection, driven from the
// single-threaded server loop.
type Reassembler struct {
	groups map[uint32]*fragmentGroup
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{groups: make(map[uint32]*fragmentGroup)}
}

// Feed parses one fragment-framed payload (group id, total bits, chunk size,
// chunk index, then the chunk bytes — each of the first four fields a
// low-bit-first 7-bit varint) and returns the reassembled message once every
// chunk for its group has arrived, or ok=false if the group is still
// incomplete.
func (r *Reassembler) Feed(payload []byte, now time.Time) (message []byte, ok bool, err error) {
	groupID, n, err := varint.ReadUint32(payload)
	if err != nil {
		return nil, false, fmt.Errorf("lidgren: fragment group id: %w", err)
	}
	payload = payload[n:]

	totalBits, n, err := varint.ReadUint32(payload)
	if err != nil {
		return nil, false, fmt.Errorf("lidgren: fragment total bits: %w", err)
	}
	payload = payload[n:]

	chunkSize, n, err := varint.ReadUint32(payload)
	if err != nil {
		return nil, false, fmt.Errorf("lidgren: fragment chunk size: %w", err)
	}
	payload = payload[n:]

	chunkIndex, n, err := varint.ReadUint32(payload)
	if err != nil {
		return nil, false, fmt.Errorf("lidgren: fragment chunk index: %w", err)
	}
	payload = payload[n:]

	totalBytes := int(totalBits+7) / 8
	if chunkSize == 0 {
		return nil, false, fmt.Errorf("lidgren: fragment chunk size must be nonzero")
	}
	totalChunks := (totalBytes + int(chunkSize) - 1) / int(chunkSize)
	if totalChunks == 0 {
		totalChunks = 1
	}
	if int(chunkIndex) >= totalChunks {
		return nil, false, fmt.Errorf("lidgren: fragment chunk index %d out of range (%d total)", chunkIndex, totalChunks)
	}

	g, exists := r.groups[groupID]
	if !exists {
		g = &fragmentGroup{
			totalChunks: totalChunks,
			chunkSize:   int(chunkSize),
			buffer:      make([]byte, totalBytes),
			received:    bitset.New(uint(totalChunks)),
		}
		r.groups[groupID] = g
	}
	g.lastAccessed = now

	isLast := int(chunkIndex) == g.totalChunks-1
	if isLast {
		expected := len(g.buffer) - int(chunkIndex)*g.chunkSize
		if len(payload) != expected {
			return nil, false, fmt.Errorf("lidgren: final fragment chunk %d has %d bytes, expected %d",
				chunkIndex, len(payload), expected)
		}
	} else if len(payload) > g.chunkSize {
		// Non-final chunks are only bounded above; an undersized chunk is
		// tolerated rather than rejected.
		return nil, false, fmt.Errorf("lidgren: fragment chunk %d has %d bytes, exceeds chunk size %d",
			chunkIndex, len(payload), g.chunkSize)
	}

	if !g.received.Test(uint(chunkIndex)) {
		copy(g.buffer[int(chunkIndex)*g.chunkSize:], payload)
		g.received.Set(uint(chunkIndex))
		g.receivedCnt++
	}

	if g.receivedCnt == g.totalChunks {
		delete(r.groups, groupID)
		return g.buffer, true, nil
	}
	return nil, false, nil
}

// Cleanup discards fragment groups that have not received a chunk within
// FragmentTimeout, returning how many were dropped.
func (r *Reassembler) Cleanup(now time.Time) int {
	dropped := 0
	for id, g := range r.groups {
		if now.Sub(g.lastAccessed) > FragmentTimeout {
			delete(r.groups, id)
			dropped++
		}
	}
	return dropped
}

// ChunkFragments splits message into fragment-framed payloads no larger than
// chunkSize bytes of message content each, ready to be sent as the payload
// of a fragment=true frame under groupID.
func ChunkFragments(groupID uint32, message []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	totalChunks := (len(message) + chunkSize - 1) / chunkSize
	if totalChunks == 0 {
		totalChunks = 1
	}
	totalBits := uint32(len(message)) * 8

	out := make([][]byte, 0, totalChunks)
	for i := 0; i < totalChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(message) {
			end = len(message)
		}
		var buf []byte
		buf = varint.AppendUint32(buf, groupID)
		buf = varint.AppendUint32(buf, totalBits)
		buf = varint.AppendUint32(buf, uint32(chunkSize))
		buf = varint.AppendUint32(buf, uint32(i))
		buf = append(buf, message[start:end]...)
		out = append(out, buf)
	}
	return out
}
