package server

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets/c2s"
	"github.com/ecconia/logicworldd/internal/packets/s2c"
	"github.com/ecconia/logicworldd/internal/world"
)

// buildWorldInitialization converts the loaded world into the wire-ready
// WorldInitialization snapshot sent once a client's ConnectionEstablished
// packet arrives. A world with no placed components (freshly created, or no
// save file on disk) answers with the fixed empty-world placeholder instead
// of an empty-but-otherwise-normal snapshot, matching the original server's
// behavior for a brand new world.
func (d *Dispatcher) buildWorldInitialization(playerName string) s2c.WorldInitialization {
	if d.world.Empty() {
		return s2c.EmptyWorldInitialization(playerName)
	}

	componentIDs := make(map[uint32]string, len(d.world.ComponentIDMap))
	for id, name := range d.world.ComponentIDMap {
		componentIDs[uint32(id)] = name
	}

	circuitStates := make([]s2c.CircuitState, len(d.world.CircuitStates))
	for i, on := range d.world.CircuitStates {
		circuitStates[i] = s2c.CircuitState{On: on}
	}

	components := make([]s2c.ComponentInstance, len(d.world.Components))
	for i, c := range d.world.Components {
		components[i] = s2c.ComponentInstance{TypeID: uint32(c.TypeID), Data: encodeComponentData(c)}
	}

	wires := make([]s2c.Wire, len(d.world.Wires))
	for i, wr := range d.world.Wires {
		wires[i] = s2c.Wire{Key: wireKey(wr), Data: encodeWireData(wr)}
	}

	return s2c.WorldInitialization{
		CircuitStates: circuitStates,
		ComponentIDs:  componentIDs,
		WorldTypeID:   "MHG.Grasslands",
		Components:    components,
		Wires:         wires,
		PlayerPosition: c2s.PlayerPosition{
			BaseWorldRotation: c2s.Quaternion{X: 0, Y: 0, Z: 0, A: 1},
			FeetPosition:      c2s.Vector3{X: 0, Y: 1, Z: 0},
			Scale:             1,
			Flying:            true,
		},
		PlayerName: playerName,
	}
}

// encodeComponentData packs everything about a placed component besides its
// type id (which travels alongside it in ComponentInstance) into the opaque
// binary blob the client decodes component-type-specifically: its parent,
// position, rotation, peg circuit state ids, and raw custom data.
func encodeComponentData(c world.Component) []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(6)

	w.WriteArrayHeader(1)
	w.WriteUint(uint64(c.Parent.ID))

	w.WriteArrayHeader(3)
	w.WriteInt(int64(c.Position[0]))
	w.WriteInt(int64(c.Position[1]))
	w.WriteInt(int64(c.Position[2]))

	w.WriteArrayHeader(4)
	w.WriteFloat32(c.Rotation[0])
	w.WriteFloat32(c.Rotation[1])
	w.WriteFloat32(c.Rotation[2])
	w.WriteFloat32(c.Rotation[3])

	w.WriteArrayHeader(len(c.Inputs))
	for _, id := range c.Inputs {
		w.WriteUint(uint64(id))
	}
	w.WriteArrayHeader(len(c.Outputs))
	for _, id := range c.Outputs {
		w.WriteUint(uint64(id))
	}

	w.WriteBinary(c.CustomData)
	return w.Bytes()
}

// wireKey formats a stable address-pair key for a wire, matching the
// original server's address-tuple wire identity.
func wireKey(wr world.Wire) string {
	return fmt.Sprintf("%s-%d:%d->%s-%d:%d",
		pegSide(wr.PegA), wr.PegA.ComponentAddress.ID, wr.PegA.PegIndex,
		pegSide(wr.PegB), wr.PegB.ComponentAddress.ID, wr.PegB.PegIndex)
}

func pegSide(p world.PegAddress) string {
	if p.IsInput {
		return "in"
	}
	return "out"
}

func encodeWireData(wr world.Wire) []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(uint64(wr.CircuitStateID))
	w.WriteFloat32(wr.Rotation)
	return w.Bytes()
}
