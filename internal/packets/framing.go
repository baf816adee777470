package packets

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
)

// EncodeFramed prepends id to body as a MessagePack-encoded unsigned
// integer, producing the payload a reliable-ordered application packet
// carries on the wire: the whole payload is a MessagePack stream whose
// first value is the packet id.
func EncodeFramed(id ID, body []byte) []byte {
	w := msgpack.NewWriter()
	w.WriteUint(uint64(id))
	return append(w.Bytes(), body...)
}

// DecodeFramed splits a reliable-ordered payload into its leading
// MessagePack-encoded packet id and the remaining MessagePack body.
func DecodeFramed(payload []byte) (ID, []byte, error) {
	r := msgpack.NewReader(payload)
	v, err := r.ExpectUint()
	if err != nil {
		return 0, nil, fmt.Errorf("packets: read id: %w", err)
	}
	return ID(v), payload[r.Pos():], nil
}
