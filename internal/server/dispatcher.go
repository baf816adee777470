// Package server implements the application dispatcher sitting on top of
// internal/lidgren: the Connect/Discovery handshake, the Data-channel packet
// switch, world/ExtraData startup loading, and the fixed-tick main loop.
// Grounded in original_source/src/main.rs and
// original_source/src/lidgren/lidgren_server.rs.
package server

import (
	"encoding/binary"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecconia/logicworldd/internal/extradata"
	"github.com/ecconia/logicworldd/internal/lidgren"
	"github.com/ecconia/logicworldd/internal/world"
)

// maxChunkSize is the largest application payload SendReliableOrdered will
// hand to the wire unfragmented; anything larger is split per spec's 1403
// byte threshold (the MTU budget of 1408 minus the 5-byte frame header).
const maxChunkSize = 1403

// Metrics receives application-level counters, layered on top of
// lidgren.Metrics (which the same *metrics.Metrics instance also satisfies).
type Metrics interface {
	ExtraDataRequest(known bool)
	ExtraDataChange(known bool)
}

// Config controls the Dispatcher's advertised server identity.
type Config struct {
	MaxPlayers      uint32
	RequirePassword bool
	VerifiedMode    bool
	MOTD            string
}

// Dispatcher owns the lidgren.Server, the loaded world and ExtraData state,
// and the per-connection session map, and implements the
// lidgren.MessageHandler callback that routes every message kind the
// protocol defines.
type Dispatcher struct {
	log     zerolog.Logger
	cfg     Config
	metrics Metrics

	lg        *lidgren.Server
	extraData *extradata.Manager
	world     world.World

	serverID uint64
	start    time.Time

	sessions map[*lidgren.Connection]*session
}

// session tracks one connection's handshake progress. lidgren.Connection
// itself carries no application state, so the dispatcher keeps this
// alongside it, keyed by the Connection pointer.
type session struct {
	username    string
	established bool
	worldSent   bool
}

// New builds a Dispatcher. world and extraData should already be loaded by
// the caller (see LoadWorld/LoadExtraData in this package) before Run
// is called.
func New(log zerolog.Logger, cfg Config, m Metrics, w world.World, ed *extradata.Manager) *Dispatcher {
	id := uuid.New()
	d := &Dispatcher{
		log:       log,
		cfg:       cfg,
		metrics:   m,
		extraData: ed,
		world:     w,
		serverID:  binary.LittleEndian.Uint64(id[:8]),
		start:     time.Now(),
		sessions:  make(map[*lidgren.Connection]*session),
	}
	lm, _ := m.(lidgren.Metrics)
	d.lg = lidgren.NewServer(log, lm, d.handle)
	return d
}

// pollTimeout bounds how long a single socket read waits before Run loops
// back to check the heartbeat clock and the stop channel, following the
// original single-threaded loop's poll-then-tick structure.
const pollTimeout = 100 * time.Millisecond

// Close shuts down the listening socket, unblocking a call to Run.
func (d *Dispatcher) Close() error {
	return d.lg.Close()
}

// Heartbeat drives queued sends, retransmits, and fragment cleanup. Run
// calls it once per tick; exposed separately so tests can step it without a
// live socket.
func (d *Dispatcher) Heartbeat(now time.Time) {
	d.lg.Heartbeat(now)
}

// Run binds addr and drives the socket-poll/heartbeat loop until stop is
// closed or the socket errors. It runs entirely on the calling goroutine:
// each iteration polls the socket for up to pollTimeout, handling at most one
// datagram if one arrived, then fires Heartbeat once tickInterval (clamped to
// the protocol's 16ms floor) has elapsed since the last tick — interleaving
// the reader and the ticker on one goroutine rather than running them on two,
// matching the original single-threaded event loop.
func (d *Dispatcher) Run(addr netip.AddrPort, tickInterval time.Duration, stop <-chan struct{}) error {
	if tickInterval < 16*time.Millisecond {
		tickInterval = 16 * time.Millisecond
	}
	if err := d.lg.Bind(addr); err != nil {
		return err
	}

	last := time.Now()
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if _, err := d.lg.PollOnce(pollTimeout); err != nil {
			return err
		}

		if now := time.Now(); now.Sub(last) >= tickInterval {
			d.Heartbeat(now)
			last = now
		}
	}
}

func (d *Dispatcher) sessionFor(conn *lidgren.Connection) *session {
	s, ok := d.sessions[conn]
	if !ok {
		return nil
	}
	return s
}

func (d *Dispatcher) elapsed() float32 {
	return float32(time.Since(d.start).Seconds())
}

func (d *Dispatcher) logErr(remote netip.AddrPort, stage string, err error) {
	d.log.Debug().Err(err).Stringer("remote", remote).Str("stage", stage).Msg("dropping malformed packet")
}
