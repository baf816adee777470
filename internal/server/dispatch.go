package server

import (
	"github.com/ecconia/logicworldd/internal/lidgren"
	"github.com/ecconia/logicworldd/internal/lz4wrap"
	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
	"github.com/ecconia/logicworldd/internal/packets/c2s"
	"github.com/ecconia/logicworldd/internal/packets/s2c"
)

// handle is the lidgren.MessageHandler driving every message this server
// understands. System messages (Connect, Discovery, ConnectionEstablished,
// Ping, Disconnect) are handled here directly; application messages arrive
// tagged UserReliableOrdered on channel 0 and are handed to handleData.
func (d *Dispatcher) handle(conn *lidgren.Connection, typ lidgren.MessageType, payload []byte) {
	switch typ {
	case lidgren.Discovery:
		d.handleDiscovery(conn, payload)
	case lidgren.Connect:
		d.handleConnect(conn, payload)
	case lidgren.ConnectionEstablished:
		d.handleConnectionEstablishedSystem(conn, payload)
	case lidgren.Ping:
		d.handlePing(conn, payload)
	case lidgren.Disconnect:
		d.handleDisconnect(conn, payload)
	default:
		if typ.IsReliableOrdered() && typ.Channel == 0 {
			d.handleData(conn, payload)
			return
		}
		d.log.Debug().Stringer("remote", conn.Remote).Stringer("type", typ).Msg("ignoring unhandled message type")
	}
}

func (d *Dispatcher) handleDiscovery(conn *lidgren.Connection, payload []byte) {
	req, err := c2s.DecodeDiscovery(payload)
	if err != nil {
		d.logErr(conn.Remote, "discovery", err)
		return
	}
	resp := s2c.SimpleDiscoveryResponse(req.RequestGUID, d.cfg.MaxPlayers, d.cfg.RequirePassword, d.cfg.VerifiedMode)
	if d.cfg.MOTD != "" {
		resp.MOTD = d.cfg.MOTD
	}
	d.lg.SendUnconnected(conn.Remote, lidgren.DiscoveryResponse, resp.Encode())
}

func (d *Dispatcher) handleConnect(conn *lidgren.Connection, payload []byte) {
	_, hail, err := decodeConnectHeader(payload)
	if err != nil {
		d.logErr(conn.Remote, "connect", err)
		return
	}

	s := d.sessionFor(conn)
	if s == nil {
		s = &session{}
		d.sessions[conn] = s
	}
	if len(hail) > 0 {
		if approval, err := c2s.DecodeConnectionApproval(hail); err == nil {
			s.username = approval.Username
		} else {
			d.log.Debug().Err(err).Stringer("remote", conn.Remote).Msg("connect hail did not carry a valid connection approval")
		}
	}

	d.lg.SendUnconnected(conn.Remote, lidgren.ConnectResponse, encodeConnectResponse(d.serverID, d.elapsed()))
}

func (d *Dispatcher) handleConnectionEstablishedSystem(conn *lidgren.Connection, payload []byte) {
	if len(payload) != 4 {
		d.log.Debug().Stringer("remote", conn.Remote).Int("len", len(payload)).Msg("connection established system message has unexpected length")
	}
	if _, ok := d.sessions[conn]; !ok {
		d.sessions[conn] = &session{}
	}
}

func (d *Dispatcher) handlePing(conn *lidgren.Connection, payload []byte) {
	seq, err := decodePing(payload)
	if err != nil {
		d.logErr(conn.Remote, "ping", err)
		return
	}
	d.lg.SendUnconnected(conn.Remote, lidgren.Pong, encodePong(seq, d.elapsed()))
}

func (d *Dispatcher) handleDisconnect(conn *lidgren.Connection, payload []byte) {
	reason := decodeDisconnectReason(payload)
	d.log.Info().Stringer("remote", conn.Remote).Str("reason", reason).Msg("client disconnected")
	delete(d.sessions, conn)
}

// handleData decodes one Data-tagged application packet: an optional LZ4
// envelope wrapping a MessagePack packet id and body. A connection
// with no live session has already been disconnected (possibly earlier in
// this same read loop) and its Data is dropped rather than silently
// resurrecting a session.
func (d *Dispatcher) handleData(conn *lidgren.Connection, payload []byte) {
	s := d.sessionFor(conn)
	if s == nil {
		d.log.Debug().Stringer("remote", conn.Remote).Msg("dropping data packet for connection with no session")
		return
	}

	body := payload
	if decompressed, err := lz4wrap.Decompress(payload); err == nil {
		body = decompressed
	}

	id, rest, err := packets.DecodeFramed(body)
	if err != nil {
		d.logErr(conn.Remote, "data envelope", err)
		return
	}

	switch id {
	case packets.ConnectionApproval:
		approval, err := c2s.DecodeConnectionApproval(body)
		if err != nil {
			d.logErr(conn.Remote, "connection approval", err)
			return
		}
		s.username = approval.Username

	case packets.ConnectionEstablished:
		if err := c2s.DecodeConnectionEstablished(body); err != nil {
			d.logErr(conn.Remote, "connection established", err)
			return
		}
		s.established = true
		d.sendWorldInitialization(conn, s)

	case packets.PlayerPosition:
		if _, err := c2s.DecodePlayerPosition(body); err != nil {
			d.logErr(conn.Remote, "player position", err)
		}
		// Player movement is not mirrored to other clients: multiplayer
		// presence is out of scope for this server.

	case packets.ExtraDataRequest:
		req, err := c2s.DecodeExtraDataRequest(body)
		if err != nil {
			d.logErr(conn.Remote, "extra data request", err)
			return
		}
		update, ok := d.extraData.HandleRequest(req)
		d.metrics.ExtraDataRequest(ok)
		if ok {
			d.lg.SendReliableOrdered(conn, 0, update.Encode(), maxChunkSize)
		}

	case packets.ExtraDataChange:
		change, err := c2s.DecodeExtraDataChange(body)
		if err != nil {
			d.logErr(conn.Remote, "extra data change", err)
			return
		}
		update, ok := d.extraData.HandleChange(change)
		d.metrics.ExtraDataChange(ok)
		if ok {
			d.lg.SendReliableOrdered(conn, 0, update.Encode(), maxChunkSize)
		}

	default:
		r := msgpack.NewReader(rest)
		v, err := r.ReadValue()
		if err != nil {
			d.log.Debug().Stringer("remote", conn.Remote).Uint32("id", uint32(id)).Msg("unhandled packet id with undecodable body")
			return
		}
		d.log.Debug().Stringer("remote", conn.Remote).Uint32("id", uint32(id)).Interface("body", v).Msg("unhandled packet id")
	}
}

func (d *Dispatcher) sendWorldInitialization(conn *lidgren.Connection, s *session) {
	init := d.buildWorldInitialization(s.username)
	d.lg.SendReliableOrdered(conn, 0, init.Encode(), maxChunkSize)
	s.worldSent = true
}
