package s2c

import (
	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
)

// ExtraDataUpdate pushes a changed extra-data entry to a client, mirroring
// the [key, data_type, bytes] shape of the c2s request/change packets.
type ExtraDataUpdate struct {
	Key      string
	DataType string
	Data     []byte
}

// Encode serializes u as an ExtraDataUpdatePacket payload.
func (u ExtraDataUpdate) Encode() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteString(u.Key)
	w.WriteString(u.DataType)
	w.WriteBinary(u.Data)
	return packets.EncodeFramed(packets.ExtraDataUpdate, w.Bytes())
}
