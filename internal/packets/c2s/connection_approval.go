package c2s

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/packets"
)

// DecodeConnectionApproval parses a ConnectionApprovalPacket payload: the
// packets.ConnectionApproval id followed by the same ConnectHail body shape
// as the Lidgren-level Connect hail.
func DecodeConnectionApproval(payload []byte) (ConnectHail, error) {
	id, body, err := packets.DecodeFramed(payload)
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connection approval: %w", err)
	}
	if id != packets.ConnectionApproval {
		return ConnectHail{}, fmt.Errorf("c2s: connection approval: wrong packet id %d", id)
	}
	return Decode(body)
}

// EncodeConnectionApproval frames h as a ConnectionApprovalPacket payload.
func EncodeConnectionApproval(h ConnectHail) []byte {
	return packets.EncodeFramed(packets.ConnectionApproval, h.Encode())
}
