package c2s

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectHailRoundTrip(t *testing.T) {
	payload := "s3cr3t"
	signature := "sig-abc"
	h := ConnectHail{
		Mods:          []string{"Base", "NorthstarAtlas"},
		Username:      "Player1",
		Version:       "0.4.2",
		PasswordHash:  []byte{1, 2, 3, 4},
		HailPayload:   &payload,
		HailSignature: &signature,
	}

	got, err := Decode(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestConnectHailOptionalFieldsNil(t *testing.T) {
	h := ConnectHail{
		Mods:     []string{},
		Username: "Player2",
		Version:  "0.4.2",
	}

	got, err := Decode(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Nil(t, got.PasswordHash)
	require.Nil(t, got.HailPayload)
	require.Nil(t, got.HailSignature)
}

func TestConnectionApprovalRoundTrip(t *testing.T) {
	h := ConnectHail{
		Mods:     []string{"Base"},
		Username: "Player3",
		Version:  "0.4.2",
	}

	got, err := DecodeConnectionApproval(EncodeConnectionApproval(h))
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestConnectionEstablishedRoundTrip(t *testing.T) {
	require.NoError(t, DecodeConnectionEstablished(EncodeConnectionEstablished()))
}

func TestDiscoveryRoundTrip(t *testing.T) {
	d := Discovery{ForConnection: true, RequestGUID: "abcd-1234"}
	got, err := DecodeDiscovery(d.Encode())
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestDiscoveryRequestRoundTrip(t *testing.T) {
	d := Discovery{ForConnection: false, RequestGUID: "guid-xyz"}
	got, err := DecodeDiscoveryRequest(EncodeDiscoveryRequest(d))
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestExtraDataRequestRoundTrip(t *testing.T) {
	e := ExtraDataEnvelope{Key: "MHG.Peg0", DataType: "MHG.SimpleValue", Data: []byte{0xDE, 0xAD}}
	got, err := DecodeExtraDataRequest(EncodeExtraDataRequest(e))
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestExtraDataChangeRoundTrip(t *testing.T) {
	e := ExtraDataEnvelope{Key: "MHG.Peg1", DataType: "MHG.SimpleValue", Data: []byte{}}
	got, err := DecodeExtraDataChange(EncodeExtraDataChange(e))
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestExtraDataRequestRejectsWrongID(t *testing.T) {
	e := ExtraDataEnvelope{Key: "k", DataType: "t", Data: []byte{1}}
	_, err := DecodeExtraDataRequest(EncodeExtraDataChange(e))
	require.Error(t, err)
}

func TestPlayerPositionRoundTrip(t *testing.T) {
	p := PlayerPosition{
		BaseWorldRotation:      Quaternion{X: 0, Y: 0, Z: 0, A: 1},
		FeetPosition:           Vector3{X: 1.5, Y: 2.25, Z: -3.75},
		HeadHorizontalRotation: 90,
		HeadVerticalRotation:   -15.5,
		Scale:                  1,
		Flying:                 true,
		Teleport:               false,
	}

	got, err := DecodePlayerPosition(p.Encode())
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestPlayerPositionRejectsWrongID(t *testing.T) {
	e := ExtraDataEnvelope{Key: "k", DataType: "t"}
	_, err := DecodePlayerPosition(EncodeExtraDataRequest(e))
	require.Error(t, err)
}
