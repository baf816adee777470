package c2s

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
)

// Discovery is the 2-entry map {"ForConnection": bool, "RequestGUID": string}
// shared by the Lidgren-level Discovery system message and the
// application-level DiscoveryRequestPacket.
type Discovery struct {
	ForConnection bool
	RequestGUID   string
}

// DecodeDiscovery parses a Discovery body (no packet id prefix — this is a
// Lidgren system message, distinguished by MessageType alone).
func DecodeDiscovery(body []byte) (Discovery, error) {
	r := msgpack.NewReader(body)
	return decodeDiscoveryMap(r)
}

func decodeDiscoveryMap(r *msgpack.Reader) (Discovery, error) {
	n, err := r.ExpectMapHeader()
	if err != nil {
		return Discovery{}, fmt.Errorf("c2s: discovery: %w", err)
	}
	if n != 2 {
		return Discovery{}, fmt.Errorf("c2s: discovery has %d map entries, want 2", n)
	}

	key, err := r.ExpectString()
	if err != nil || key != "ForConnection" {
		return Discovery{}, fmt.Errorf("c2s: discovery first key is %q (err=%v), want \"ForConnection\"", key, err)
	}
	forConnection, err := r.ExpectBool()
	if err != nil {
		return Discovery{}, fmt.Errorf("c2s: discovery ForConnection value: %w", err)
	}

	key, err = r.ExpectString()
	if err != nil || key != "RequestGUID" {
		return Discovery{}, fmt.Errorf("c2s: discovery second key is %q (err=%v), want \"RequestGUID\"", key, err)
	}
	requestGUID, err := r.ExpectString()
	if err != nil {
		return Discovery{}, fmt.Errorf("c2s: discovery RequestGUID value: %w", err)
	}

	return Discovery{ForConnection: forConnection, RequestGUID: requestGUID}, nil
}

// Encode serializes d back to its MessagePack body.
func (d Discovery) Encode() []byte {
	w := msgpack.NewWriter()
	w.WriteMapHeader(2)
	w.WriteString("ForConnection")
	w.WriteBool(d.ForConnection)
	w.WriteString("RequestGUID")
	w.WriteString(d.RequestGUID)
	return w.Bytes()
}

// DecodeDiscoveryRequest parses a DiscoveryRequestPacket payload: the
// packets.DiscoveryRequest id followed by the same Discovery map shape.
func DecodeDiscoveryRequest(payload []byte) (Discovery, error) {
	id, body, err := packets.DecodeFramed(payload)
	if err != nil {
		return Discovery{}, fmt.Errorf("c2s: discovery request: %w", err)
	}
	if id != packets.DiscoveryRequest {
		return Discovery{}, fmt.Errorf("c2s: discovery request: wrong packet id %d", id)
	}
	return DecodeDiscovery(body)
}

// EncodeDiscoveryRequest frames d as a DiscoveryRequestPacket payload.
func EncodeDiscoveryRequest(d Discovery) []byte {
	return packets.EncodeFramed(packets.DiscoveryRequest, d.Encode())
}
