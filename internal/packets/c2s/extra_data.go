package c2s

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
)

// ExtraDataEnvelope is the array-of-3 [key, data_type, bytes] body shared by
// ExtraDataRequestPacket and ExtraDataChangePacket.
type ExtraDataEnvelope struct {
	Key      string
	DataType string
	Data     []byte
}

func decodeExtraDataEnvelope(body []byte) (ExtraDataEnvelope, error) {
	r := msgpack.NewReader(body)
	n, err := r.ExpectArrayHeader()
	if err != nil {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data envelope: %w", err)
	}
	if n != 3 {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data envelope has %d entries, want 3", n)
	}
	key, err := r.ExpectString()
	if err != nil {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data key: %w", err)
	}
	dataType, err := r.ExpectString()
	if err != nil {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data type: %w", err)
	}
	data, err := r.ExpectBinary()
	if err != nil {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data bytes: %w", err)
	}
	return ExtraDataEnvelope{Key: key, DataType: dataType, Data: data}, nil
}

func (e ExtraDataEnvelope) encode() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteString(e.Key)
	w.WriteString(e.DataType)
	w.WriteBinary(e.Data)
	return w.Bytes()
}

// DecodeExtraDataRequest parses an ExtraDataRequestPacket payload.
func DecodeExtraDataRequest(payload []byte) (ExtraDataEnvelope, error) {
	id, body, err := packets.DecodeFramed(payload)
	if err != nil {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data request: %w", err)
	}
	if id != packets.ExtraDataRequest {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data request: wrong packet id %d", id)
	}
	return decodeExtraDataEnvelope(body)
}

// EncodeExtraDataRequest frames e as an ExtraDataRequestPacket payload.
func EncodeExtraDataRequest(e ExtraDataEnvelope) []byte {
	return packets.EncodeFramed(packets.ExtraDataRequest, e.encode())
}

// DecodeExtraDataChange parses an ExtraDataChangePacket payload.
func DecodeExtraDataChange(payload []byte) (ExtraDataEnvelope, error) {
	id, body, err := packets.DecodeFramed(payload)
	if err != nil {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data change: %w", err)
	}
	if id != packets.ExtraDataChange {
		return ExtraDataEnvelope{}, fmt.Errorf("c2s: extra data change: wrong packet id %d", id)
	}
	return decodeExtraDataEnvelope(body)
}

// EncodeExtraDataChange frames e as an ExtraDataChangePacket payload.
func EncodeExtraDataChange(e ExtraDataEnvelope) []byte {
	return packets.EncodeFramed(packets.ExtraDataChange, e.encode())
}
