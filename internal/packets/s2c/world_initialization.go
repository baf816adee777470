package s2c

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
	"github.com/ecconia/logicworldd/internal/packets/c2s"
)

// CircuitState is one entry of the flattened circuit-state bit stream sent
// alongside a world snapshot.
type CircuitState struct {
	On bool
}

// ComponentInstance is one placed component: its dictionary-assigned type id
// (resolved against the ComponentIDs map) plus its serialized instance data.
type ComponentInstance struct {
	TypeID uint32
	Data   []byte
}

// Wire is one peg-to-peg connection, keyed by an opaque wire id on the wire
// side (the original keys its Wires map by an address pair; this server
// treats the key as an opaque string understood by internal/world).
type Wire struct {
	Key  string
	Data []byte
}

// WorldInitialization is the full world snapshot sent once a client has
// loaded far enough to receive it.
type WorldInitialization struct {
	CircuitStates  []CircuitState
	ComponentIDs   map[uint32]string
	WorldTypeID    string
	Components     []ComponentInstance
	Wires          []Wire
	PlayerPosition c2s.PlayerPosition
	PlayerHotbar   []byte // nil sends a null hotbar, meaning "use default"
	PlayerName     string
}

// EmptyWorldInitialization reproduces the server's placeholder reply for a
// freshly created world that has no components yet: a single registered peg
// type, no components or wires, and the player spawned flying at (0, 1, 0)
// facing the identity rotation.
func EmptyWorldInitialization(playerName string) WorldInitialization {
	return WorldInitialization{
		ComponentIDs: map[uint32]string{0: "MHG.Peg"},
		WorldTypeID:  "MHG.Grasslands",
		PlayerPosition: c2s.PlayerPosition{
			BaseWorldRotation: c2s.Quaternion{X: 0, Y: 0, Z: 0, A: 1},
			FeetPosition:      c2s.Vector3{X: 0, Y: 1, Z: 0},
			Scale:             1,
			Flying:            true,
		},
		PlayerName: playerName,
	}
}

// Encode serializes w as a WorldInitializationPacket payload.
func (w WorldInitialization) Encode() []byte {
	mp := msgpack.NewWriter()
	mp.WriteArrayHeader(8)

	mp.WriteArrayHeader(len(w.CircuitStates))
	for _, cs := range w.CircuitStates {
		mp.WriteBool(cs.On)
	}

	mp.WriteMapHeader(len(w.ComponentIDs))
	for id, name := range w.ComponentIDs {
		mp.WriteUint(uint64(id))
		mp.WriteString(name)
	}

	mp.WriteString(w.WorldTypeID)

	mp.WriteArrayHeader(len(w.Components))
	for _, c := range w.Components {
		mp.WriteArrayHeader(2)
		mp.WriteUint(uint64(c.TypeID))
		mp.WriteBinary(c.Data)
	}

	mp.WriteMapHeader(len(w.Wires))
	for _, wire := range w.Wires {
		mp.WriteString(wire.Key)
		mp.WriteBinary(wire.Data)
	}

	encodePlayerPosition(mp, w.PlayerPosition)

	if w.PlayerHotbar == nil {
		mp.WriteNil()
	} else {
		mp.WriteBinary(w.PlayerHotbar)
	}

	mp.WriteString(w.PlayerName)

	return packets.EncodeFramed(packets.WorldInitialization, mp.Bytes())
}

// DecodeWorldInitialization parses a WorldInitializationPacket payload. Used
// by tests and offline diagnostic tooling; the client side of this exchange
// is out of scope for this server.
func DecodeWorldInitialization(payload []byte) (WorldInitialization, error) {
	id, body, err := packets.DecodeFramed(payload)
	if err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization: %w", err)
	}
	if id != packets.WorldInitialization {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization: wrong packet id %d", id)
	}

	r := msgpack.NewReader(body)
	if n, err := r.ExpectArrayHeader(); err != nil || n != 8 {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization outer array: n=%d err=%v", n, err)
	}

	var w WorldInitialization

	n, err := r.ExpectArrayHeader()
	if err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization circuit states: %w", err)
	}
	w.CircuitStates = make([]CircuitState, n)
	for i := range w.CircuitStates {
		on, err := r.ExpectBool()
		if err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization circuit state %d: %w", i, err)
		}
		w.CircuitStates[i] = CircuitState{On: on}
	}

	n, err = r.ExpectMapHeader()
	if err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization component ids: %w", err)
	}
	w.ComponentIDs = make(map[uint32]string, n)
	for i := 0; i < n; i++ {
		id, err := r.ExpectUint()
		if err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization component id %d: %w", i, err)
		}
		name, err := r.ExpectString()
		if err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization component name %d: %w", i, err)
		}
		w.ComponentIDs[uint32(id)] = name
	}

	if w.WorldTypeID, err = r.ExpectString(); err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization world type id: %w", err)
	}

	n, err = r.ExpectArrayHeader()
	if err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization components: %w", err)
	}
	w.Components = make([]ComponentInstance, n)
	for i := range w.Components {
		if cn, err := r.ExpectArrayHeader(); err != nil || cn != 2 {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization component %d: n=%d err=%v", i, cn, err)
		}
		typeID, err := r.ExpectUint()
		if err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization component %d type id: %w", i, err)
		}
		data, err := r.ExpectBinary()
		if err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization component %d data: %w", i, err)
		}
		w.Components[i] = ComponentInstance{TypeID: uint32(typeID), Data: data}
	}

	n, err = r.ExpectMapHeader()
	if err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization wires: %w", err)
	}
	w.Wires = make([]Wire, n)
	for i := range w.Wires {
		key, err := r.ExpectString()
		if err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization wire %d key: %w", i, err)
		}
		data, err := r.ExpectBinary()
		if err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization wire %d data: %w", i, err)
		}
		w.Wires[i] = Wire{Key: key, Data: data}
	}

	if w.PlayerPosition, err = decodePlayerPosition(r); err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization player position: %w", err)
	}

	if r.IsNil() {
		r.ExpectNil()
	} else {
		if w.PlayerHotbar, err = r.ExpectBinary(); err != nil {
			return WorldInitialization{}, fmt.Errorf("s2c: world initialization player hotbar: %w", err)
		}
	}

	if w.PlayerName, err = r.ExpectString(); err != nil {
		return WorldInitialization{}, fmt.Errorf("s2c: world initialization player name: %w", err)
	}

	return w, nil
}

func decodePlayerPosition(r *msgpack.Reader) (c2s.PlayerPosition, error) {
	var p c2s.PlayerPosition
	if n, err := r.ExpectArrayHeader(); err != nil || n != 7 {
		return p, fmt.Errorf("data array: n=%d err=%v", n, err)
	}

	var err error
	if n, err := r.ExpectArrayHeader(); err != nil || n != 4 {
		return p, fmt.Errorf("rotation array: n=%d err=%v", n, err)
	}
	if p.BaseWorldRotation.X, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.BaseWorldRotation.Y, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.BaseWorldRotation.Z, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.BaseWorldRotation.A, err = r.ExpectFloat32(); err != nil {
		return p, err
	}

	if n, err := r.ExpectArrayHeader(); err != nil || n != 3 {
		return p, fmt.Errorf("feet array: n=%d err=%v", n, err)
	}
	if p.FeetPosition.X, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.FeetPosition.Y, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.FeetPosition.Z, err = r.ExpectFloat32(); err != nil {
		return p, err
	}

	if p.HeadHorizontalRotation, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.HeadVerticalRotation, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.Scale, err = r.ExpectFloat32(); err != nil {
		return p, err
	}
	if p.Flying, err = r.ExpectBool(); err != nil {
		return p, err
	}
	if p.Teleport, err = r.ExpectBool(); err != nil {
		return p, err
	}

	return p, nil
}

func encodePlayerPosition(mp *msgpack.Writer, p c2s.PlayerPosition) {
	mp.WriteArrayHeader(7)

	mp.WriteArrayHeader(4)
	mp.WriteFloat32(p.BaseWorldRotation.X)
	mp.WriteFloat32(p.BaseWorldRotation.Y)
	mp.WriteFloat32(p.BaseWorldRotation.Z)
	mp.WriteFloat32(p.BaseWorldRotation.A)

	mp.WriteArrayHeader(3)
	mp.WriteFloat32(p.FeetPosition.X)
	mp.WriteFloat32(p.FeetPosition.Y)
	mp.WriteFloat32(p.FeetPosition.Z)

	mp.WriteFloat32(p.HeadHorizontalRotation)
	mp.WriteFloat32(p.HeadVerticalRotation)
	mp.WriteFloat32(p.Scale)
	mp.WriteBool(p.Flying)
	mp.WriteBool(p.Teleport)
}
