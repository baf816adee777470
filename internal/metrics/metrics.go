// Package metrics implements internal/lidgren.Metrics on top of
// github.com/VictoriaMetrics/metrics, exposing Prometheus-format counters for
// the socket loop, fragment reassembly, and ExtraData traffic. Grounded in
// pkg/metricsx's name-formatting helpers and the metrics wiring in
// cmd/atlas/main.go / pkg/atlas/server.go.
package metrics

import (
	"net/http"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics implements internal/lidgren.Metrics, recording every counter into
// its own metrics.Set so multiple servers in one process (e.g. in tests)
// don't collide in the global registry.
type Metrics struct {
	set *metrics.Set

	packetsReceivedTotal *metrics.Counter
	packetsSentTotal     *metrics.Counter
	bytesReceivedTotal   *metrics.Counter
	bytesSentTotal       *metrics.Counter
	fragmentsReassembled *metrics.Counter
	retransmits          *metrics.Counter
}

// New returns a Metrics instance backed by a fresh metrics.Set.
func New() *Metrics {
	set := metrics.NewSet()
	return &Metrics{
		set:                  set,
		packetsReceivedTotal: set.NewCounter("logicworldd_packets_received_total"),
		packetsSentTotal:     set.NewCounter("logicworldd_packets_sent_total"),
		bytesReceivedTotal:   set.NewCounter("logicworldd_bytes_received_total"),
		bytesSentTotal:       set.NewCounter("logicworldd_bytes_sent_total"),
		fragmentsReassembled: set.NewCounter("logicworldd_fragments_reassembled_total"),
		retransmits:          set.NewCounter("logicworldd_retransmits_total"),
	}
}

// PacketReceived implements internal/lidgren.Metrics.
func (m *Metrics) PacketReceived(n int) {
	m.packetsReceivedTotal.Inc()
	m.bytesReceivedTotal.Add(n)
}

// PacketSent implements internal/lidgren.Metrics.
func (m *Metrics) PacketSent(n int) {
	m.packetsSentTotal.Inc()
	m.bytesSentTotal.Add(n)
}

// PacketDropped implements internal/lidgren.Metrics, tagging the counter
// with reason the way metricsx's formatName composes a "{label="value"}"
// suffix.
func (m *Metrics) PacketDropped(reason string) {
	m.set.GetOrCreateCounter(formatName("logicworldd_packets_dropped_total", "reason", reason)).Inc()
}

// FragmentReassembled implements internal/lidgren.Metrics.
func (m *Metrics) FragmentReassembled() { m.fragmentsReassembled.Inc() }

// Retransmit implements internal/lidgren.Metrics.
func (m *Metrics) Retransmit() { m.retransmits.Inc() }

// ExtraDataRequest and ExtraDataChange count the application-level
// ExtraData traffic the dispatcher handles, split by whether the key was
// recognized.
func (m *Metrics) ExtraDataRequest(known bool) {
	m.set.GetOrCreateCounter(formatName("logicworldd_extradata_requests_total", "known", boolLabel(known))).Inc()
}

func (m *Metrics) ExtraDataChange(known bool) {
	m.set.GetOrCreateCounter(formatName("logicworldd_extradata_changes_total", "known", boolLabel(known))).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatName builds a "name{label=\"value\"}" metric identifier, the same
// shape pkg/metricsx's formatName produces for VictoriaMetrics/metrics'
// curly-brace label syntax.
func formatName(base, label, value string) string {
	return base + "{" + label + "=\"" + value + "\"}"
}

// Handler returns an http.Handler serving this Metrics' counters in
// Prometheus exposition format, suitable for mounting on the debug mux
// alongside pprof (cmd/atlas/main.go's dbg.HandleFunc pattern).
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.set.WritePrometheus(w)
	})
}
