package server

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/varint"
)

// connectHeaderSize is the combined size of the two fixed-width fields
// following the app-name string in a Connect/ConnectResponse payload: the
// 64-bit remote id and the 32-bit time float.
const connectHeaderSize = 8 + 4

// connectHailName is the application identifier both sides exchange during
// the Lidgren-level handshake.
const connectHailName = "Logic World"

// decodeConnectHeader splits a raw Connect system message payload into its
// application name, the (ignored) 64-bit remote id, the (ignored) remote
// protocol-time float, and the trailing hail bytes — which carry a framed
// ConnectionApprovalPacket body. These are Lidgren text/numeric primitives,
// not MessagePack: a varint-length-prefixed UTF-8 string followed by two
// little-endian fixed-width fields.
func decodeConnectHeader(payload []byte) (appName string, hail []byte, err error) {
	appName, n, err := varint.ReadString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("server: connect app name: %w", err)
	}
	rest := payload[n:]
	if len(rest) < connectHeaderSize {
		return "", nil, fmt.Errorf("server: connect header truncated: need %d bytes, have %d", connectHeaderSize, len(rest))
	}
	return appName, rest[connectHeaderSize:], nil
}

// encodeConnectResponse builds the raw ConnectResponse payload: the server's
// application name, its random per-process unique id, and the elapsed time
// since startup — the same three-field shape as the Connect message it
// answers.
func encodeConnectResponse(serverID uint64, elapsed float32) []byte {
	buf := varint.AppendString(nil, connectHailName)
	buf = varint.AppendUint64(buf, serverID)
	buf = varint.AppendFloat32(buf, elapsed)
	return buf
}

// decodePing validates a Ping system message payload (a single sequence
// byte) and returns it.
func decodePing(payload []byte) (byte, error) {
	if len(payload) != 1 {
		return 0, fmt.Errorf("server: ping payload has %d bytes, want 1", len(payload))
	}
	return payload[0], nil
}

// encodePong builds the Pong reply: the same sequence byte, followed by the
// server's elapsed time float.
func encodePong(seq byte, elapsed float32) []byte {
	buf := []byte{seq}
	return varint.AppendFloat32(buf, elapsed)
}

// decodeDisconnectReason best-effort parses the human-readable reason string
// from a Disconnect system message payload.
func decodeDisconnectReason(payload []byte) string {
	reason, _, err := varint.ReadString(payload)
	if err != nil {
		return ""
	}
	return reason
}
