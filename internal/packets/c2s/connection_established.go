package c2s

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
)

// DecodeConnectionEstablished validates a ConnectionEstablishedPacket
// payload: packets.ConnectionEstablished id, array-of-1 containing the
// integer 0. The original's dummy value carries no information; this keeps
// that shape so it validates correctly-formed clients.
func DecodeConnectionEstablished(payload []byte) error {
	id, body, err := packets.DecodeFramed(payload)
	if err != nil {
		return fmt.Errorf("c2s: connection established: %w", err)
	}
	if id != packets.ConnectionEstablished {
		return fmt.Errorf("c2s: connection established: wrong packet id %d", id)
	}

	r := msgpack.NewReader(body)
	n, err := r.ExpectArrayHeader()
	if err != nil {
		return fmt.Errorf("c2s: connection established: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("c2s: connection established has %d entries, want 1", n)
	}
	v, err := r.ExpectInt()
	if err != nil {
		return fmt.Errorf("c2s: connection established dummy value: %w", err)
	}
	if v != 0 {
		return fmt.Errorf("c2s: connection established dummy value is %d, want 0", v)
	}
	return nil
}

// EncodeConnectionEstablished frames the fixed ConnectionEstablishedPacket
// payload.
func EncodeConnectionEstablished() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(1)
	w.WriteInt(0)
	return packets.EncodeFramed(packets.ConnectionEstablished, w.Bytes())
}
