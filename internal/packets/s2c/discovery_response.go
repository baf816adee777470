// Package s2c implements the server-to-client application packet bodies:
// DiscoveryResponse (server query reply), ExtraDataUpdate, and
// WorldInitialization. Grounded in
// original_source/src/network/packets/s2c/*.rs.
package s2c

import (
	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
)

// DiscoveryResponse answers a DiscoveryRequest with server metadata.
type DiscoveryResponse struct {
	ServerVersion               string
	RequestGUID                 string
	HasDiscoveryInfo            bool
	Challenge                   *string
	MOTD                        string
	PlayersConnectedCount       uint32
	MaxPlayerCapacity           uint32
	ConnectionRequiresPassword  bool
	ServerRunningInVerifiedMode bool
}

// SimpleDiscoveryResponse fills in the fixed fields the original reports for
// every request (version string, discovery info present, no challenge),
// leaving only the per-request/per-server values to the caller.
func SimpleDiscoveryResponse(requestGUID string, maxPlayers uint32, requiresPassword, verifiedMode bool) DiscoveryResponse {
	return DiscoveryResponse{
		ServerVersion:               "0.91.0.485",
		RequestGUID:                 requestGUID,
		HasDiscoveryInfo:            true,
		MOTD:                        "A Logic World server",
		MaxPlayerCapacity:           maxPlayers,
		ConnectionRequiresPassword:  requiresPassword,
		ServerRunningInVerifiedMode: verifiedMode,
	}
}

// Encode serializes r as a DiscoveryResponsePacket payload.
func (r DiscoveryResponse) Encode() []byte {
	w := msgpack.NewWriter()
	w.WriteMapHeader(9)
	w.WriteString("ServerVersion")
	w.WriteString(r.ServerVersion)
	w.WriteString("RequestGuid")
	w.WriteString(r.RequestGUID)
	w.WriteString("HasDiscoveryInfo")
	w.WriteBool(r.HasDiscoveryInfo)
	w.WriteString("Challenge")
	if r.Challenge == nil {
		w.WriteNil()
	} else {
		w.WriteString(*r.Challenge)
	}
	w.WriteString("MOTD")
	w.WriteString(r.MOTD)
	w.WriteString("PlayersConnectedCount")
	w.WriteUint(uint64(r.PlayersConnectedCount))
	w.WriteString("MaxPlayerCapacity")
	w.WriteUint(uint64(r.MaxPlayerCapacity))
	w.WriteString("ConnectionRequiresPassword")
	w.WriteBool(r.ConnectionRequiresPassword)
	w.WriteString("ServerRunningInVerifiedMode")
	w.WriteBool(r.ServerRunningInVerifiedMode)

	return packets.EncodeFramed(packets.DiscoveryResponse, w.Bytes())
}
