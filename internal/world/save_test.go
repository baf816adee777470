package world

import (
	"testing"

	"github.com/ecconia/logicworldd/internal/varint"
	"github.com/stretchr/testify/require"
)

type saveBuilder struct {
	buf []byte
}

func (b *saveBuilder) bytes(p []byte) *saveBuilder { b.buf = append(b.buf, p...); return b }
func (b *saveBuilder) str(s string) *saveBuilder {
	b.buf = varint.AppendUint32Fixed(b.buf, uint32(len(s)))
	b.buf = append(b.buf, s...)
	return b
}
func (b *saveBuilder) u8(v byte) *saveBuilder    { b.buf = append(b.buf, v); return b }
func (b *saveBuilder) u16(v uint16) *saveBuilder { b.buf = varint.AppendUint16(b.buf, v); return b }
func (b *saveBuilder) u32(v uint32) *saveBuilder { b.buf = varint.AppendUint32Fixed(b.buf, v); return b }
func (b *saveBuilder) i32(v int32) *saveBuilder  { b.buf = varint.AppendInt32(b.buf, v); return b }
func (b *saveBuilder) f32(v float32) *saveBuilder {
	b.buf = varint.AppendFloat32(b.buf, v)
	return b
}
func (b *saveBuilder) version(v Version) *saveBuilder {
	return b.i32(v.Major).i32(v.Minor).i32(v.Patch).i32(v.Build)
}

func minimalSaveHeader(b *saveBuilder, version byte) *saveBuilder {
	b.bytes([]byte(fileHeader))
	b.u8(version)
	b.version(Version{1, 2, 3, 4}) // game version
	b.u8(1)                        // save type: world
	return b
}

func TestParseSaveEmptyWorld(t *testing.T) {
	b := &saveBuilder{}
	minimalSaveHeader(b, 6)
	b.u32(0) // amount components
	b.u32(0) // amount wires
	b.u32(0) // amount mods
	b.u32(0) // component dictionary count
	// no components, no wires
	b.u32(0) // circuit state byte count
	b.bytes([]byte(fileFooter))

	w, err := ParseSave(b.buf)
	require.NoError(t, err)
	require.True(t, w.Empty())
	require.Empty(t, w.Wires)
	require.Empty(t, w.CircuitStates)
}

func TestParseSaveWithComponentAndWire(t *testing.T) {
	b := &saveBuilder{}
	minimalSaveHeader(b, 6)
	b.u32(1) // amount components
	b.u32(1) // amount wires
	b.u32(1) // amount mods
	b.str("ExampleMod").version(Version{1, 0, 0, 0})
	b.u32(1) // component dictionary count
	b.u16(0).str("MHG.Peg")

	// Component: address, parent, type id, position, rotation, inputs, outputs, custom data
	b.u32(1)                      // address id
	b.u32(0)                      // parent id
	b.u16(0)                      // type id
	b.i32(1000).i32(2000).i32(0)  // position mm
	b.f32(0).f32(0).f32(0).f32(1) // rotation quaternion
	b.u32(1).u32(5)                // 1 input, circuit state id 5
	b.u32(0)                       // 0 outputs
	b.i32(-1)                      // no custom data

	// Wire: peg a, peg b, circuit state id, rotation
	b.u8(1).u32(1).u32(0) // peg a: is_input=true, component 1, peg index 0
	b.u8(0).u32(1).u32(1) // peg b: is_input=false, component 1, peg index 1
	b.u32(5)               // circuit state id
	b.f32(0)                // rotation

	b.u32(1)       // 1 circuit state byte
	b.u8(0b00000101) // bits 0 and 2 set
	b.bytes([]byte(fileFooter))

	w, err := ParseSave(b.buf)
	require.NoError(t, err)
	require.False(t, w.Empty())
	require.Len(t, w.Components, 1)
	require.Equal(t, ComponentAddress{ID: 1}, w.Components[0].Address)
	require.Equal(t, [3]int32{1000, 2000, 0}, w.Components[0].Position)
	require.Equal(t, []uint32{5}, w.Components[0].Inputs)
	require.Nil(t, w.Components[0].CustomData)
	require.Len(t, w.Wires, 1)
	require.True(t, w.Wires[0].PegA.IsInput)
	require.False(t, w.Wires[0].PegB.IsInput)
	require.True(t, w.CircuitStates[0])
	require.False(t, w.CircuitStates[1])
	require.True(t, w.CircuitStates[2])
}

func TestParseSaveVersion5ConvertsFloatPositions(t *testing.T) {
	b := &saveBuilder{}
	minimalSaveHeader(b, 5)
	b.u32(1) // amount components
	b.u32(0) // amount wires
	b.u32(0) // amount mods
	b.u32(1) // dictionary count
	b.u16(0).str("MHG.Peg")

	b.u32(1)                      // address
	b.u32(0)                      // parent
	b.u16(0)                      // type id
	b.f32(1.5).f32(-2.0).f32(0.25) // position as meters
	b.f32(0).f32(0).f32(0).f32(1)  // rotation
	b.u32(0)                       // inputs
	b.u32(0)                       // outputs
	b.i32(-1)                      // no custom data

	b.u32(0) // circuit state bytes
	b.bytes([]byte(fileFooter))

	w, err := ParseSave(b.buf)
	require.NoError(t, err)
	require.Equal(t, [3]int32{1500, -2000, 250}, w.Components[0].Position)
}

func TestParseSaveRejectsBadHeader(t *testing.T) {
	b := &saveBuilder{}
	b.bytes([]byte("Not a logic world save!!"))
	b.bytes([]byte(fileFooter))
	_, err := ParseSave(b.buf)
	require.Error(t, err)
}

func TestParseSaveRejectsTooOldVersion(t *testing.T) {
	b := &saveBuilder{}
	minimalSaveHeader(b, 4)
	b.bytes([]byte(fileFooter))
	_, err := ParseSave(b.buf)
	require.Error(t, err)
}

func TestParseSaveRejectsTooNewVersion(t *testing.T) {
	b := &saveBuilder{}
	minimalSaveHeader(b, 7)
	b.bytes([]byte(fileFooter))
	_, err := ParseSave(b.buf)
	require.Error(t, err)
}

func TestParseSaveRejectsUnknownComponentType(t *testing.T) {
	b := &saveBuilder{}
	minimalSaveHeader(b, 6)
	b.u32(1) // amount components
	b.u32(0) // amount wires
	b.u32(0) // amount mods
	b.u32(0) // dictionary count, empty — type id below won't resolve

	b.u32(1)
	b.u32(0)
	b.u16(0) // unresolvable type id
	b.i32(0).i32(0).i32(0)
	b.f32(0).f32(0).f32(0).f32(1)
	b.u32(0)
	b.u32(0)
	b.i32(-1)

	b.u32(0)
	b.bytes([]byte(fileFooter))

	_, err := ParseSave(b.buf)
	require.Error(t, err)
}
