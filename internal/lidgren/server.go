package lidgren

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/rs/zerolog"
)

// MaxDatagramSize is the largest UDP datagram this server will read or
// write, matching Lidgren's default MTU before fragmentation kicks in.
const MaxDatagramSize = 1500

// Metrics receives counters for the server's socket loop. Implementations
// are expected to be backed by github.com/VictoriaMetrics/metrics (see
// internal/metrics); the interface here keeps this package from depending on
// a specific metrics backend.
type Metrics interface {
	PacketReceived(bytes int)
	PacketSent(bytes int)
	PacketDropped(reason string)
	FragmentReassembled()
	Retransmit()
}

type noopMetrics struct{}

func (noopMetrics) PacketReceived(int)   {}
func (noopMetrics) PacketSent(int)       {}
func (noopMetrics) PacketDropped(string) {}
func (noopMetrics) FragmentReassembled() {}
func (noopMetrics) Retransmit()          {}

// MessageHandler is invoked once per fully-reassembled, in-order application
// message. System messages (Connect, Discovery, ...) and user messages are
// both delivered through it — the caller switches on typ.
type MessageHandler func(conn *Connection, typ MessageType, payload []byte)

// Server runs the single-threaded Lidgren UDP socket loop: it owns one
// net.UDPConn and a Connection per remote peer, dispatching reassembled
// messages to a MessageHandler and periodically sending queued
// reliable-ordered messages and retransmits. It is deliberately not goroutine-safe —
// PollOnce and Heartbeat must be driven from the same goroutine (see Bind),
// mirroring the original single-threaded event loop (original_source/src/
// lidgren/lidgren_server.rs) — this is a carried-forward simplification,
// not an oversight.
type Server struct {
	log     zerolog.Logger
	metrics Metrics
	handler MessageHandler

	conn        *net.UDPConn
	connections map[netip.AddrPort]*Connection
}

// NewServer returns a Server that dispatches reassembled messages to
// handler. If m is nil, metrics calls are no-ops.
func NewServer(log zerolog.Logger, m Metrics, handler MessageHandler) *Server {
	if m == nil {
		m = noopMetrics{}
	}
	return &Server{
		log:         log,
		metrics:     m,
		handler:     handler,
		connections: make(map[netip.AddrPort]*Connection),
	}
}

// Bind opens the UDP socket addr without blocking, for callers that drive
// their own single-threaded poll/heartbeat loop via PollOnce instead of
// ListenAndServe.
func (s *Server) Bind(addr netip.AddrPort) error {
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(addr))
	if err != nil {
		return fmt.Errorf("lidgren: listen: %w", err)
	}
	s.conn = conn
	s.log.Info().Stringer("addr", addr).Msg("listening")
	return nil
}

// ListenAndServe binds addr and blocks, reading datagrams until the socket
// is closed. Call Close to stop it (typically from a signal handler running
// on another goroutine — the socket close is the one thread-safe escape
// hatch this single-threaded design relies on). Heartbeat is not driven by
// this loop; callers needing both must use Bind and PollOnce instead, so a
// single goroutine interleaves both, exactly as the original single-threaded
// event loop does.
func (s *Server) ListenAndServe(addr netip.AddrPort) error {
	if err := s.Bind(addr); err != nil {
		return err
	}

	buf := make([]byte, MaxDatagramSize)
	for {
		n, raddr, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			return err
		}
		s.metrics.PacketReceived(n)

		raddr = netip.AddrPortFrom(raddr.Addr().Unmap(), raddr.Port())
		if err := s.handleDatagram(raddr, buf[:n], time.Now()); err != nil {
			s.log.Debug().Err(err).Stringer("remote", raddr).Msg("dropping malformed datagram")
			s.metrics.PacketDropped("malformed")
		}
	}
}

// PollOnce reads and handles at most one datagram, waiting up to timeout
// before giving up. ok is false with a nil error when nothing arrived in
// time — the expected outcome of the bounded poll the original single
// threaded loop performs between heartbeats (original_source/src/lidgren/
// lidgren_server.rs). Requires Bind to have been called first.
func (s *Server) PollOnce(timeout time.Duration) (ok bool, err error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, fmt.Errorf("lidgren: set read deadline: %w", err)
	}

	buf := make([]byte, MaxDatagramSize)
	n, raddr, err := s.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return false, nil
		}
		return false, err
	}
	s.metrics.PacketReceived(n)

	raddr = netip.AddrPortFrom(raddr.Addr().Unmap(), raddr.Port())
	if err := s.handleDatagram(raddr, buf[:n], time.Now()); err != nil {
		s.log.Debug().Err(err).Stringer("remote", raddr).Msg("dropping malformed datagram")
		s.metrics.PacketDropped("malformed")
	}
	return true, nil
}

// LocalAddr returns the socket's bound local address. Valid after Bind or
// ListenAndServe has been called.
func (s *Server) LocalAddr() netip.AddrPort {
	return s.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Close shuts down the listening socket, unblocking ListenAndServe.
func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Server) handleDatagram(remote netip.AddrPort, datagram []byte, now time.Time) error {
	h, err := ParseHeader(datagram)
	if err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	payload := datagram[HeaderSize:]
	if len(payload) < h.PayloadLen {
		return fmt.Errorf("truncated payload: header declares %d bytes, got %d", h.PayloadLen, len(payload))
	}
	payload = payload[:h.PayloadLen]

	conn, ok := s.connections[remote]
	if !ok {
		conn = NewConnection(remote, now)
		s.connections[remote] = conn
	}

	delivered, ack, err := conn.HandleFrame(h, payload, now)
	if err != nil {
		return fmt.Errorf("handle frame from %s: %w", remote, err)
	}
	if ack != nil {
		s.sendFrame(remote, Acknowledge, false, 0, ack)
	}

	for _, msg := range delivered {
		if h.Fragment {
			s.metrics.FragmentReassembled()
		}
		s.handler(conn, h.Type, msg)
	}
	return nil
}

// Heartbeat drives every connection's retransmit timers and discards stale
// fragment groups. Acknowledgements are not flushed here — they go out
// immediately as each frame is accepted (see handleDatagram). Call Heartbeat
// on a fixed tick (16ms minimum per the protocol's tick-rate ceiling) from
// the same goroutine driving PollOnce.
func (s *Server) Heartbeat(now time.Time) {
	for remote, conn := range s.connections {
		for channel, sender := range conn.senders {
			for _, f := range sender.SendMessages(now) {
				s.sendFrame(remote, UserReliableOrdered(channel), f.Fragment, f.Sequence, f.Payload)
			}
		}
		conn.CleanupFragments(now)
	}
}

func (s *Server) sendFrame(remote netip.AddrPort, typ MessageType, fragment bool, seq uint16, payload []byte) {
	buf := AppendHeader(make([]byte, 0, HeaderSize+len(payload)), typ, fragment, seq, len(payload))
	buf = append(buf, payload...)
	n, err := s.conn.WriteToUDPAddrPort(buf, remote)
	if err != nil {
		s.log.Debug().Err(err).Stringer("remote", remote).Msg("send failed")
		return
	}
	s.metrics.PacketSent(n)
}

// SendReliableOrdered enqueues data for delivery to conn over the given
// reliable-ordered channel, transparently splitting it into fragments if it
// exceeds maxChunkSize.
func (s *Server) SendReliableOrdered(conn *Connection, channel uint8, data []byte, maxChunkSize int) {
	sender := conn.Sender(channel)
	if len(data) <= maxChunkSize {
		sender.Enqueue(data, false)
		return
	}
	group := conn.NextFragmentGroup()
	for _, chunk := range ChunkFragments(group, data, maxChunkSize) {
		sender.Enqueue(chunk, true)
	}
}

// SendUnconnected writes a single unframed-sequence datagram (sequence 0,
// non-fragment) of the given system message type directly to remote,
// bypassing any Connection — used for Discovery responses sent before a
// Connection is established.
func (s *Server) SendUnconnected(remote netip.AddrPort, typ MessageType, payload []byte) {
	s.sendFrame(remote, typ, false, 0, payload)
}
