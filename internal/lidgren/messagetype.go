// Package lidgren implements the Lidgren-compatible UDP transport: frame
// headers, the reliable-ordered channel, fragment reassembly, and the
// connectionless/connected server socket loop. Grounded in
// original_source/src/lidgren/{message_type,data_structures,connected_client,
// channel_handler,channel_sender}.rs.
package lidgren

import "fmt"

// MessageType identifies the purpose of a frame, decoded from its leading
// type-id byte. User channel variants carry a channel number in Channel;
// system variants leave Channel at zero.
type MessageType struct {
	kind    messageKind
	Channel uint8
}

type messageKind uint8

const (
	kindUnconnected messageKind = iota
	kindUserUnreliable
	kindUserSequenced
	kindUserReliableUnordered
	kindUserReliableSequenced
	kindUserReliableOrdered
	kindUnused
	kindLibraryError
	kindPing
	kindPong
	kindConnect
	kindConnectResponse
	kindConnectionEstablished
	kindAcknowledge
	kindDisconnect
	kindDiscovery
	kindDiscoveryResponse
	kindNatPunchMessage
	kindNatIntroduction
	kindExpandMTURequest
	kindExpandMTUSuccess
	kindNatIntroductionConfirmRequest
	kindNatIntroductionConfirmed
)

var (
	Unconnected           = MessageType{kind: kindUnconnected}
	UserUnreliable        = MessageType{kind: kindUserUnreliable}
	UserReliableUnordered = MessageType{kind: kindUserReliableUnordered}
	LibraryError          = MessageType{kind: kindLibraryError}
	Ping                  = MessageType{kind: kindPing}
	Pong                  = MessageType{kind: kindPong}
	Connect               = MessageType{kind: kindConnect}
	ConnectResponse       = MessageType{kind: kindConnectResponse}
	ConnectionEstablished = MessageType{kind: kindConnectionEstablished}
	Acknowledge           = MessageType{kind: kindAcknowledge}
	Disconnect            = MessageType{kind: kindDisconnect}
	Discovery             = MessageType{kind: kindDiscovery}
	DiscoveryResponse     = MessageType{kind: kindDiscoveryResponse}
	NatPunchMessage       = MessageType{kind: kindNatPunchMessage}
	NatIntroduction       = MessageType{kind: kindNatIntroduction}
	ExpandMTURequest      = MessageType{kind: kindExpandMTURequest}
	ExpandMTUSuccess      = MessageType{kind: kindExpandMTUSuccess}
)

// UserSequenced returns the UserSequenced variant for the given channel
// (0-31).
func UserSequenced(channel uint8) MessageType {
	return MessageType{kind: kindUserSequenced, Channel: channel}
}

// UserReliableSequenced returns the UserReliableSequenced variant for the
// given channel (0-31).
func UserReliableSequenced(channel uint8) MessageType {
	return MessageType{kind: kindUserReliableSequenced, Channel: channel}
}

// UserReliableOrdered returns the UserReliableOrdered variant for the given
// channel (0-31).
func UserReliableOrdered(channel uint8) MessageType {
	return MessageType{kind: kindUserReliableOrdered, Channel: channel}
}

// Unused returns the Unused variant for the given channel (0-28).
func Unused(channel uint8) MessageType {
	return MessageType{kind: kindUnused, Channel: channel}
}

// FromID decodes the wire type-id byte into a MessageType.
func FromID(id uint8) (MessageType, error) {
	switch {
	case id == 0:
		return Unconnected, nil
	case id == 1:
		return UserUnreliable, nil
	case id >= 2 && id <= 33:
		return UserSequenced(id - 2), nil
	case id == 34:
		return UserReliableUnordered, nil
	case id >= 35 && id <= 66:
		return UserReliableSequenced(id - 35), nil
	case id >= 67 && id <= 98:
		return UserReliableOrdered(id - 67), nil
	case id >= 99 && id <= 127:
		return Unused(id - 99), nil
	case id == 128:
		return LibraryError, nil
	case id == 129:
		return Ping, nil
	case id == 130:
		return Pong, nil
	case id == 131:
		return Connect, nil
	case id == 132:
		return ConnectResponse, nil
	case id == 133:
		return ConnectionEstablished, nil
	case id == 134:
		return Acknowledge, nil
	case id == 135:
		return Disconnect, nil
	case id == 136:
		return Discovery, nil
	case id == 137:
		return DiscoveryResponse, nil
	case id == 138:
		return NatPunchMessage, nil
	case id == 139:
		return NatIntroduction, nil
	case id == 140:
		return ExpandMTURequest, nil
	case id == 141:
		return ExpandMTUSuccess, nil
	case id == 142:
		return MessageType{kind: kindNatIntroductionConfirmRequest}, nil
	case id == 143:
		return MessageType{kind: kindNatIntroductionConfirmed}, nil
	}
	return MessageType{}, fmt.Errorf("lidgren: unknown message type id %d", id)
}

// ID encodes the MessageType back into its wire type-id byte.
func (t MessageType) ID() uint8 {
	switch t.kind {
	case kindUnconnected:
		return 0
	case kindUserUnreliable:
		return 1
	case kindUserSequenced:
		return 2 + t.Channel
	case kindUserReliableUnordered:
		return 34
	case kindUserReliableSequenced:
		return 35 + t.Channel
	case kindUserReliableOrdered:
		return 67 + t.Channel
	case kindUnused:
		return 99 + t.Channel
	case kindLibraryError:
		return 128
	case kindPing:
		return 129
	case kindPong:
		return 130
	case kindConnect:
		return 131
	case kindConnectResponse:
		return 132
	case kindConnectionEstablished:
		return 133
	case kindAcknowledge:
		return 134
	case kindDisconnect:
		return 135
	case kindDiscovery:
		return 136
	case kindDiscoveryResponse:
		return 137
	case kindNatPunchMessage:
		return 138
	case kindNatIntroduction:
		return 139
	case kindExpandMTURequest:
		return 140
	case kindExpandMTUSuccess:
		return 141
	case kindNatIntroductionConfirmRequest:
		return 142
	case kindNatIntroductionConfirmed:
		return 143
	}
	panic(fmt.Sprintf("lidgren: unhandled message kind %d", t.kind))
}

// IsSystem reports whether the message type is a Lidgren library-level
// control message (as opposed to a user channel carrying application data).
func (t MessageType) IsSystem() bool {
	switch t.kind {
	case kindUnconnected, kindUserUnreliable, kindUserSequenced,
		kindUserReliableUnordered, kindUserReliableSequenced,
		kindUserReliableOrdered, kindUnused:
		return false
	default:
		return true
	}
}

// IsReliableOrdered reports whether this type uses the reliable-ordered
// channel handler.
func (t MessageType) IsReliableOrdered() bool {
	return t.kind == kindUserReliableOrdered
}

func (t MessageType) String() string {
	names := map[messageKind]string{
		kindUnconnected: "Unconnected", kindUserUnreliable: "UserUnreliable",
		kindUserSequenced: "UserSequenced", kindUserReliableUnordered: "UserReliableUnordered",
		kindUserReliableSequenced: "UserReliableSequenced", kindUserReliableOrdered: "UserReliableOrdered",
		kindUnused: "Unused", kindLibraryError: "LibraryError", kindPing: "Ping", kindPong: "Pong",
		kindConnect: "Connect", kindConnectResponse: "ConnectResponse",
		kindConnectionEstablished: "ConnectionEstablished", kindAcknowledge: "Acknowledge",
		kindDisconnect: "Disconnect", kindDiscovery: "Discovery", kindDiscoveryResponse: "DiscoveryResponse",
		kindNatPunchMessage: "NatPunchMessage", kindNatIntroduction: "NatIntroduction",
		kindExpandMTURequest: "ExpandMTURequest", kindExpandMTUSuccess: "ExpandMTUSuccess",
		kindNatIntroductionConfirmRequest: "NatIntroductionConfirmRequest",
		kindNatIntroductionConfirmed:      "NatIntroductionConfirmed",
	}
	if t.kind == kindUserSequenced || t.kind == kindUserReliableSequenced ||
		t.kind == kindUserReliableOrdered || t.kind == kindUnused {
		return fmt.Sprintf("%s(%d)", names[t.kind], t.Channel)
	}
	return names[t.kind]
}
