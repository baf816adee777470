// Package packets implements the typed application-level packet payloads
// carried inside Lidgren UserReliableOrdered frames (and the Lidgren system
// messages that share their wire shape): a MessagePack unsigned integer
// packet id followed by a MessagePack-encoded body. Grounded in
// original_source/src/network/packets/{packet_ids,c2s,s2c}.rs.
//
// Only the packet kinds this server implements are given ids here; the
// original defines many more (building, chat, RPC, subassemblies) that are
// out of scope per the non-goals around circuit simulation and are not
// wired to anything in this tree.
package packets

// ID identifies an application packet's kind. These ids are sent as the
// first MessagePack value (an unsigned integer) of a reliable-ordered
// payload, ahead of its MessagePack body.
type ID uint32

const (
	ExtraDataRequest      ID = 5
	PlayerPosition        ID = 8
	DiscoveryRequest      ID = 10
	// DiscoveryResponse is wired at 13, matching the literal value
	// original_source/src/network/packets/s2c/discovery_response.rs writes
	// on the wire (write_int_auto(buffer, 13)) rather than the value the
	// source's own PacketIDs enum table lists for it (11). The two
	// disagree in the original; the byte actually placed on the wire is
	// authoritative, and this is also the value spec.md's wire format
	// section specifies.
	DiscoveryResponse     ID = 13
	ConnectionApproval    ID = 16
	ConnectionEstablished ID = 17
	WorldInitialization   ID = 18
	ExtraDataChange       ID = 4
	ExtraDataUpdate       ID = 23
)
