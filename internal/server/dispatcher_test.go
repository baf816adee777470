package server

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/extradata"
	"github.com/ecconia/logicworldd/internal/lidgren"
	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
	"github.com/ecconia/logicworldd/internal/packets/c2s"
	"github.com/ecconia/logicworldd/internal/packets/s2c"
	"github.com/ecconia/logicworldd/internal/varint"
	"github.com/ecconia/logicworldd/internal/world"
)

func newTestDispatcher(t *testing.T, w world.World) *Dispatcher {
	t.Helper()
	d := New(zerolog.Nop(), Config{MaxPlayers: 16, VerifiedMode: true}, noopMetrics{}, w, extradata.NewManager(zerolog.Nop()))
	require.NoError(t, d.lg.Bind(netip.MustParseAddrPort("127.0.0.1:0")))
	t.Cleanup(func() { d.lg.Close() })
	return d
}

// newTestClient opens a loopback UDP socket the dispatcher can be made to
// reply to, returning its AddrPort for building a lidgren.Connection.
func newTestClient(t *testing.T) (*net.UDPConn, netip.AddrPort) {
	t.Helper()
	client, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, client.LocalAddr().(*net.UDPAddr).AddrPort()
}

func readFrame(t *testing.T, client *net.UDPConn) (lidgren.MessageType, []byte) {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, lidgren.MaxDatagramSize)
	n, err := client.Read(buf)
	require.NoError(t, err)
	h, err := lidgren.ParseHeader(buf[:n])
	require.NoError(t, err)
	return h.Type, buf[lidgren.HeaderSize:n][:h.PayloadLen]
}

type noopMetrics struct{}

func (noopMetrics) ExtraDataRequest(bool) {}
func (noopMetrics) ExtraDataChange(bool)  {}

func TestHandleDiscoveryEchoesRequestGUID(t *testing.T) {
	d := newTestDispatcher(t, world.World{})
	client, clientAddr := newTestClient(t)
	conn := lidgren.NewConnection(clientAddr, time.Now())

	payload := c2s.Discovery{ForConnection: false, RequestGUID: "guid-123"}.Encode()
	d.handle(conn, lidgren.Discovery, payload)

	typ, body := readFrame(t, client)
	require.Equal(t, lidgren.DiscoveryResponse, typ)

	id, respBody, err := packets.DecodeFramed(body)
	require.NoError(t, err)
	require.EqualValues(t, packets.DiscoveryResponse, id)

	v, err := msgpack.NewReader(respBody).ReadValue()
	require.NoError(t, err)
	require.Equal(t, "guid-123", mapField(t, v, "RequestGuid").Str)
	require.EqualValues(t, 16, mapField(t, v, "MaxPlayerCapacity").Int)
}

func TestHandleConnectRespondsAndCapturesUsername(t *testing.T) {
	d := newTestDispatcher(t, world.World{})
	client, clientAddr := newTestClient(t)
	conn := lidgren.NewConnection(clientAddr, time.Now())

	hail := c2s.EncodeConnectionApproval(c2s.ConnectHail{Username: "Steve", Version: "0.91.0.485"})
	payload := varint.AppendString(nil, connectHailName)
	payload = varint.AppendUint64(payload, 0)
	payload = varint.AppendFloat32(payload, 0)
	payload = append(payload, hail...)

	d.handle(conn, lidgren.Connect, payload)

	typ, body := readFrame(t, client)
	require.Equal(t, lidgren.ConnectResponse, typ)

	appName, n, err := varint.ReadString(body)
	require.NoError(t, err)
	require.Equal(t, connectHailName, appName)
	require.GreaterOrEqual(t, len(body)-n, connectHeaderSize)

	require.Equal(t, "Steve", d.sessionFor(conn).username)
}

func TestConnectionEstablishedSendsWorldInitialization(t *testing.T) {
	d := newTestDispatcher(t, world.World{})
	conn := lidgren.NewConnection(testRemote(t), time.Now())

	d.handle(conn, lidgren.ConnectionEstablished, []byte{0, 0, 0, 0})
	require.NotNil(t, d.sessionFor(conn))

	appBody := c2s.EncodeConnectionEstablished()
	d.handle(conn, lidgren.UserReliableOrdered(0), appBody)

	require.True(t, d.sessionFor(conn).worldSent)

	frames := conn.Sender(0).SendMessages(time.Now())
	require.NotEmpty(t, frames)

	var payload []byte
	for _, f := range frames {
		payload = append(payload, f.Payload...)
	}
	got, err := s2c.DecodeWorldInitialization(payload)
	require.NoError(t, err)
	require.Equal(t, "MHG.Grasslands", got.WorldTypeID)
}

func TestHandleDataDropsAfterDisconnect(t *testing.T) {
	d := newTestDispatcher(t, world.World{})
	conn := lidgren.NewConnection(testRemote(t), time.Now())

	d.handle(conn, lidgren.ConnectionEstablished, []byte{0, 0, 0, 0})
	require.NotNil(t, d.sessionFor(conn))

	d.handle(conn, lidgren.Disconnect, varint.AppendString(nil, "bye"))
	require.Nil(t, d.sessionFor(conn))

	appBody := c2s.EncodeConnectionEstablished()
	d.handle(conn, lidgren.UserReliableOrdered(0), appBody)
	require.Empty(t, conn.Sender(0).SendMessages(time.Now()))
}

func TestHandleDataExtraDataRoundTrip(t *testing.T) {
	d := newTestDispatcher(t, world.World{})
	conn := lidgren.NewConnection(testRemote(t), time.Now())
	d.sessions[conn] = &session{username: "Steve", established: true}

	w := msgpack.NewWriter()
	w.WriteBool(false)
	req := c2s.ExtraDataEnvelope{Key: "MHG.SimulationPaused", DataType: "System.Boolean", Data: w.Bytes()}
	d.handle(conn, lidgren.UserReliableOrdered(0), c2s.EncodeExtraDataRequest(req))

	frames := conn.Sender(0).SendMessages(time.Now())
	require.Len(t, frames, 1)

	id, _, err := packets.DecodeFramed(frames[0].Payload)
	require.NoError(t, err)
	require.EqualValues(t, packets.ExtraDataUpdate, id)
}

func mapField(t *testing.T, v msgpack.Value, key string) msgpack.Value {
	t.Helper()
	for _, kv := range v.Map {
		if kv.Key.Str == key {
			return kv.Value
		}
	}
	t.Fatalf("map has no field %q", key)
	return msgpack.Value{}
}

func testRemote(t *testing.T) netip.AddrPort {
	t.Helper()
	return netip.MustParseAddrPort("127.0.0.1:54321")
}
