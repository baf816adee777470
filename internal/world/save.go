package world

import (
	"fmt"
	"math"

	"github.com/ecconia/logicworldd/internal/varint"
)

const (
	fileHeader = "Logic World save"
	fileFooter = "redstone sux lol"

	minSaveVersion = 5
	maxSaveVersion = 6

	maxComponentDictionaryEntries = 65534
)

// Version is a four-part game/mod version number as stored in a save file.
type Version struct {
	Major, Minor, Patch, Build int32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// ModEntry records one mod's name and version as declared by the save file
// that produced it.
type ModEntry struct {
	Name    string
	Version Version
}

// ParseSave decodes a `.logicworld` save file's raw bytes into a World.
func ParseSave(data []byte) (World, error) {
	c := &cursor{buf: data}

	if c.remaining() < len(fileHeader)+len(fileFooter)+1 {
		return World{}, fmt.Errorf("world: save file too small to hold header, footer and version byte")
	}

	header, err := c.take(len(fileHeader))
	if err != nil {
		return World{}, err
	}
	if string(header) != fileHeader {
		return World{}, fmt.Errorf("world: save file does not start with the expected header")
	}

	footer := data[len(data)-len(fileFooter):]
	if string(footer) != fileFooter {
		return World{}, fmt.Errorf("world: save file does not end with the expected footer")
	}

	version, err := c.u8()
	if err != nil {
		return World{}, err
	}
	if version < minSaveVersion {
		return World{}, fmt.Errorf("world: save format too old: need at least version %d, got %d", minSaveVersion, version)
	}
	if version > maxSaveVersion {
		return World{}, fmt.Errorf("world: save format too new: need at most version %d, got %d", maxSaveVersion, version)
	}
	patchPositions := version == minSaveVersion

	const headerDataLength = (4 + 4 + 4 + 4) + 1 + (4 + 4)
	if c.remaining() < headerDataLength {
		return World{}, fmt.Errorf("world: save file too small to hold basic save information: need %d, have %d", headerDataLength, c.remaining())
	}

	if _, err := c.readVersion(); err != nil {
		return World{}, fmt.Errorf("world: game version: %w", err)
	}

	saveType, err := c.u8()
	if err != nil {
		return World{}, err
	}
	switch saveType {
	case 0:
		return World{}, fmt.Errorf("world: save file does not know its own type (got 0, want 1)")
	case 1:
		// world save, proceed.
	case 2:
		return World{}, fmt.Errorf("world: save file is a subassembly, not a world")
	default:
		return World{}, fmt.Errorf("world: unknown save type %d, want 1 for a world", saveType)
	}

	amountComponents, err := c.readUint32Fixed()
	if err != nil {
		return World{}, fmt.Errorf("world: component count: %w", err)
	}
	amountWires, err := c.readUint32Fixed()
	if err != nil {
		return World{}, fmt.Errorf("world: wire count: %w", err)
	}

	amountMods, err := c.readSemiUnsignedInt()
	if err != nil {
		return World{}, fmt.Errorf("world: mod count: %w", err)
	}
	mods := make([]ModEntry, 0, amountMods)
	for i := uint32(0); i < amountMods; i++ {
		name, err := c.readString()
		if err != nil {
			return World{}, fmt.Errorf("world: mod %d name: %w", i, err)
		}
		ver, err := c.readVersion()
		if err != nil {
			return World{}, fmt.Errorf("world: mod %d version: %w", i, err)
		}
		mods = append(mods, ModEntry{Name: name, Version: ver})
	}

	componentDictCount, err := c.readSemiUnsignedInt()
	if err != nil {
		return World{}, fmt.Errorf("world: component dictionary count: %w", err)
	}
	if componentDictCount > maxComponentDictionaryEntries {
		return World{}, fmt.Errorf("world: component dictionary too large: %d / %d", componentDictCount, maxComponentDictionaryEntries)
	}
	componentDict := make(map[uint16]string, componentDictCount)
	for i := uint32(0); i < componentDictCount; i++ {
		index, err := c.readUint16()
		if err != nil {
			return World{}, fmt.Errorf("world: component dictionary entry %d index: %w", i, err)
		}
		name, err := c.readString()
		if err != nil {
			return World{}, fmt.Errorf("world: component dictionary entry %d name: %w", i, err)
		}
		componentDict[index] = name
	}

	components := make([]Component, 0, amountComponents)
	for i := uint32(0); i < amountComponents; i++ {
		comp, err := c.readComponent(componentDict, patchPositions)
		if err != nil {
			return World{}, fmt.Errorf("world: component %d: %w", i, err)
		}
		components = append(components, comp)
	}

	wires := make([]Wire, 0, amountWires)
	const bytesPerWire = 9 + 9 + 4 + 4
	for i := uint32(0); i < amountWires; i++ {
		if c.remaining() < bytesPerWire {
			return World{}, fmt.Errorf("world: wire %d: ran out of bytes: have %d, need %d", i, c.remaining(), bytesPerWire)
		}
		pegA, err := c.readPegAddress()
		if err != nil {
			return World{}, fmt.Errorf("world: wire %d peg a: %w", i, err)
		}
		pegB, err := c.readPegAddress()
		if err != nil {
			return World{}, fmt.Errorf("world: wire %d peg b: %w", i, err)
		}
		circuitStateID, err := c.readSemiUnsignedInt()
		if err != nil {
			return World{}, fmt.Errorf("world: wire %d circuit state id: %w", i, err)
		}
		rotation, err := c.readFloat32()
		if err != nil {
			return World{}, fmt.Errorf("world: wire %d rotation: %w", i, err)
		}
		wires = append(wires, Wire{PegA: pegA, PegB: pegB, CircuitStateID: circuitStateID, Rotation: rotation})
	}

	amountStateBytes, err := c.readSemiUnsignedInt()
	if err != nil {
		return World{}, fmt.Errorf("world: circuit state byte count: %w", err)
	}
	stateBytes, err := c.take(int(amountStateBytes))
	if err != nil {
		return World{}, fmt.Errorf("world: circuit state bytes: %w", err)
	}
	circuitStates := make([]bool, 0, len(stateBytes)*8)
	for _, b := range stateBytes {
		for bit := 0; bit < 8; bit++ {
			circuitStates = append(circuitStates, b&(1<<bit) != 0)
		}
	}

	if c.remaining() != len(fileFooter) {
		return World{}, fmt.Errorf("world: expected only the footer left after reading the world, have %d / %d bytes remaining", c.remaining(), len(fileFooter))
	}

	return World{
		ComponentIDMap: componentDict,
		Components:     components,
		Wires:          wires,
		CircuitStates:  circuitStates,
	}, nil
}

func (c *cursor) readComponent(dict map[uint16]string, patchPositions bool) (Component, error) {
	address, err := c.readComponentAddress()
	if err != nil {
		return Component{}, fmt.Errorf("address: %w", err)
	}
	parent, err := c.readComponentAddress()
	if err != nil {
		return Component{}, fmt.Errorf("parent address: %w", err)
	}
	typeID, err := c.readUint16()
	if err != nil {
		return Component{}, fmt.Errorf("type id: %w", err)
	}
	if _, ok := dict[typeID]; !ok {
		return Component{}, fmt.Errorf("component type id %d has no dictionary entry", typeID)
	}
	position, err := c.readPosition(patchPositions)
	if err != nil {
		return Component{}, fmt.Errorf("position: %w", err)
	}
	rotation, err := c.readQuaternion()
	if err != nil {
		return Component{}, fmt.Errorf("alignment: %w", err)
	}

	inputCount, err := c.readSemiUnsignedInt()
	if err != nil {
		return Component{}, fmt.Errorf("input count: %w", err)
	}
	inputs := make([]uint32, inputCount)
	for i := range inputs {
		inputs[i], err = c.readSemiUnsignedInt()
		if err != nil {
			return Component{}, fmt.Errorf("input %d: %w", i, err)
		}
	}

	outputCount, err := c.readSemiUnsignedInt()
	if err != nil {
		return Component{}, fmt.Errorf("output count: %w", err)
	}
	outputs := make([]uint32, outputCount)
	for i := range outputs {
		outputs[i], err = c.readSemiUnsignedInt()
		if err != nil {
			return Component{}, fmt.Errorf("output %d: %w", i, err)
		}
	}

	customDataLen, err := c.readInt32()
	if err != nil {
		return Component{}, fmt.Errorf("custom data length: %w", err)
	}
	if customDataLen < -1 {
		return Component{}, fmt.Errorf("custom data length must be -1 or more, got %d", customDataLen)
	}
	var customData []byte
	if customDataLen > 0 {
		customData, err = c.take(int(customDataLen))
		if err != nil {
			return Component{}, fmt.Errorf("custom data: %w", err)
		}
	}

	return Component{
		Address:    address,
		Parent:     parent,
		TypeID:     typeID,
		Position:   position,
		Rotation:   rotation,
		Inputs:     inputs,
		Outputs:    outputs,
		CustomData: customData,
	}, nil
}

func (c *cursor) readComponentAddress() (ComponentAddress, error) {
	id, err := c.readUint32Fixed()
	if err != nil {
		return ComponentAddress{}, err
	}
	return ComponentAddress{ID: id}, nil
}

func (c *cursor) readPegAddress() (PegAddress, error) {
	isInput, err := c.readBool()
	if err != nil {
		return PegAddress{}, fmt.Errorf("is input: %w", err)
	}
	addr, err := c.readComponentAddress()
	if err != nil {
		return PegAddress{}, fmt.Errorf("component address: %w", err)
	}
	index, err := c.readSemiUnsignedInt()
	if err != nil {
		return PegAddress{}, fmt.Errorf("peg index: %w", err)
	}
	return PegAddress{IsInput: isInput, ComponentAddress: addr, PegIndex: index}, nil
}

func (c *cursor) readQuaternion() ([4]float32, error) {
	if c.remaining() < 16 {
		return [4]float32{}, fmt.Errorf("ran out of bytes reading quaternion: %d/16", c.remaining())
	}
	var q [4]float32
	var err error
	for i := range q {
		q[i], err = c.readFloat32()
		if err != nil {
			return [4]float32{}, err
		}
	}
	return q, nil
}

// readPosition reads a component's relative position. Save version 5 stores
// positions as meters in floating point; later versions store millimeters
// directly as a fixed-point integer. Both are normalized to millimeters.
func (c *cursor) readPosition(convertFromFloat bool) ([3]int32, error) {
	if c.remaining() < 12 {
		return [3]int32{}, fmt.Errorf("ran out of bytes reading position: %d/12", c.remaining())
	}
	var p [3]int32
	for i := range p {
		if convertFromFloat {
			f, err := c.readFloat32()
			if err != nil {
				return [3]int32{}, err
			}
			p[i] = int32(math.Round(float64(f) * 1000))
		} else {
			v, err := c.readInt32()
			if err != nil {
				return [3]int32{}, err
			}
			p[i] = v
		}
	}
	return p, nil
}

func (c *cursor) readVersion() (Version, error) {
	if c.remaining() < 16 {
		return Version{}, fmt.Errorf("ran out of bytes reading version: %d/16", c.remaining())
	}
	major, err := c.readInt32()
	if err != nil {
		return Version{}, err
	}
	minor, err := c.readInt32()
	if err != nil {
		return Version{}, err
	}
	patch, err := c.readInt32()
	if err != nil {
		return Version{}, err
	}
	build, err := c.readInt32()
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor, Patch: patch, Build: build}, nil
}

// readSemiUnsignedInt reads a plain little-endian 4-byte signed integer that
// the save format guarantees is non-negative (hence "semi" unsigned — the
// original keeps the signed wire type but rejects negative values).
func (c *cursor) readSemiUnsignedInt() (uint32, error) {
	v, err := c.readInt32()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("expected non-negative integer, got %d", v)
	}
	return uint32(v), nil
}

func (c *cursor) readString() (string, error) {
	n, err := c.readUint32Fixed()
	if err != nil {
		return "", fmt.Errorf("string length: %w", err)
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", fmt.Errorf("string bytes: %w", err)
	}
	return string(b), nil
}

// cursor is a forward-only byte reader over a save file's contents, mirroring
// the original's CustomIterator for this one-shot parse.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("world: ran out of bytes: have %d, need %d", c.remaining(), n)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) u8() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readBool() (bool, error) {
	b, err := c.u8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("expected boolean byte (0 or 1), got %d", b)
}

func (c *cursor) readUint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	v, _, err := varint.ReadUint16(b)
	return v, err
}

func (c *cursor) readUint32Fixed() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	v, _, err := varint.ReadUint32Fixed(b)
	return v, err
}

func (c *cursor) readInt32() (int32, error) {
	v, err := c.readUint32Fixed()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func (c *cursor) readFloat32() (float32, error) {
	v, err := c.readUint32Fixed()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}
