package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/lidgren"
)

func TestMetricsImplementsLidgrenInterface(t *testing.T) {
	var _ lidgren.Metrics = New()
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.PacketReceived(100)
	m.PacketSent(50)
	m.PacketDropped("malformed")
	m.FragmentReassembled()
	m.Retransmit()
	m.ExtraDataRequest(true)
	m.ExtraDataChange(false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	require.Contains(t, body, "logicworldd_packets_received_total")
	require.Contains(t, body, "logicworldd_bytes_received_total")
	require.Contains(t, body, "logicworldd_packets_dropped_total")
	require.True(t, strings.Contains(body, `reason="malformed"`))
	require.Contains(t, body, "logicworldd_extradata_requests_total")
}
