package extradata

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets/c2s"
	"github.com/ecconia/logicworldd/internal/succ"
	"github.com/ecconia/logicworldd/internal/world"
)

func newTestManager() *Manager {
	return NewManager(zerolog.Nop())
}

func TestSimulationPausedRoundTrip(t *testing.T) {
	m := newTestManager()

	w := msgpack.NewWriter()
	w.WriteBool(false)
	req := c2s.ExtraDataEnvelope{Key: simulationPausedKey, DataType: simulationPausedType, Data: w.Bytes()}
	update, ok := m.HandleRequest(req)
	require.True(t, ok)
	require.Equal(t, simulationPausedKey, update.Key)

	w2 := msgpack.NewWriter()
	w2.WriteBool(true)
	change := c2s.ExtraDataEnvelope{Key: simulationPausedKey, DataType: simulationPausedType, Data: w2.Bytes()}
	update2, ok := m.HandleChange(change)
	require.True(t, ok)

	r := msgpack.NewReader(update2.Data)
	v, err := r.ExpectBool()
	require.NoError(t, err)
	require.True(t, v)
}

func TestSimulationSpeedRejectsNegative(t *testing.T) {
	m := newTestManager()
	w := msgpack.NewWriter()
	w.WriteFloat64(-5)
	change := c2s.ExtraDataEnvelope{Key: simulationSpeedKey, DataType: simulationSpeedType, Data: w.Bytes()}
	_, ok := m.HandleChange(change)
	require.False(t, ok)
}

func TestFlagListOrderRejectsNonEmptyDefault(t *testing.T) {
	m := newTestManager()
	w := msgpack.NewWriter()
	w.WriteArrayHeader(1)
	w.WriteArrayHeader(1)
	w.WriteUint(3)
	req := c2s.ExtraDataEnvelope{Key: flagListOrderKey, DataType: flagListOrderType, Data: w.Bytes()}
	_, ok := m.HandleRequest(req)
	require.False(t, ok)
}

func TestFlagListOrderUpdateAndReserialize(t *testing.T) {
	m := newTestManager()
	w := msgpack.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteArrayHeader(1)
	w.WriteUint(1)
	w.WriteArrayHeader(1)
	w.WriteUint(2)
	change := c2s.ExtraDataEnvelope{Key: flagListOrderKey, DataType: flagListOrderType, Data: w.Bytes()}
	update, ok := m.HandleChange(change)
	require.True(t, ok)

	r := msgpack.NewReader(update.Data)
	n, err := r.ExpectArrayHeader()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestWorldTypeDataDefaultsServedOnUnknownQuery(t *testing.T) {
	m := newTestManager()
	entry, ok := m.resolveKey(worldTypeDataKey)
	require.True(t, ok)
	wt := entry.(*WorldTypeDataGridlands)
	require.Equal(t, world.Color24{R: 80, G: 0, B: 0}, wt.ColorA)
	require.Equal(t, world.Color24{R: 0, G: 80, B: 0}, wt.ColorB)
	require.EqualValues(t, 16, wt.SideX)
	require.EqualValues(t, 32, wt.SideZ)
}

func TestWorldTypeDataLoadFromSUCC(t *testing.T) {
	doc := []byte("ColorA: 111111\nColorB: 222222\nBigCellSizeX: 8\nBigCellSizeZ: 8\n")
	tree, err := succ.Parse(doc)
	require.NoError(t, err)

	wt := newWorldTypeDataGridlands()
	require.NoError(t, wt.LoadFromSUCC(tree))
	require.Equal(t, world.Color24{R: 0x11, G: 0x11, B: 0x11}, wt.ColorA)
	require.EqualValues(t, 8, wt.SideX)
}

func TestWorldTypeDataLoadFromSUCCRejectsZeroSide(t *testing.T) {
	doc := []byte("ColorA: 111111\nColorB: 222222\nBigCellSizeX: 0\nBigCellSizeZ: 8\n")
	tree, err := succ.Parse(doc)
	require.NoError(t, err)

	wt := newWorldTypeDataGridlands()
	require.Error(t, wt.LoadFromSUCC(tree))
}

func TestDisplayConfigurationKeyResolution(t *testing.T) {
	m := newTestManager()
	entry, ok := m.resolveKey("MHG.DisplayConfigurations/2_pegs/Configuration3")
	require.True(t, ok)
	dc := entry.(*DisplayConfiguration)
	require.EqualValues(t, 2, dc.PegCount)
	require.EqualValues(t, 3, dc.Index)
}

func TestDisplayConfigurationRejectsWrongColorCount(t *testing.T) {
	m := newTestManager()
	w := msgpack.NewWriter()
	w.WriteArrayHeader(1) // 2 pegs => 4 colors expected, sending only 1
	w.WriteArrayHeader(3)
	w.WriteUint(1)
	w.WriteUint(2)
	w.WriteUint(3)
	req := c2s.ExtraDataEnvelope{Key: "MHG.DisplayConfigurations/2_pegs/Configuration0", DataType: displayConfigurationType, Data: w.Bytes()}
	_, ok := m.HandleRequest(req)
	require.False(t, ok)
}

func TestDisplayConfigurationsOrderKeyResolution(t *testing.T) {
	m := newTestManager()
	entry, ok := m.resolveKey("MHG.DisplayConfigurations/4_pegs/_Order")
	require.True(t, ok)
	order := entry.(*DisplayConfigurationsOrder)
	require.EqualValues(t, 4, order.PegCount)
}

func TestDisplayConfigurationsOrderRoundTrip(t *testing.T) {
	m := newTestManager()
	w := msgpack.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(2)
	w.WriteUint(0)
	w.WriteUint(1)
	change := c2s.ExtraDataEnvelope{Key: "MHG.DisplayConfigurations/1_pegs/_Order", DataType: displayConfigurationsOrderType, Data: w.Bytes()}
	update, ok := m.HandleChange(change)
	require.True(t, ok)

	r := msgpack.NewReader(update.Data)
	n, err := r.ExpectArrayHeader()
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestResolveKeyRejectsMalformedDisplayConfigPrefix(t *testing.T) {
	m := newTestManager()
	_, ok := m.resolveKey("MHG.DisplayConfigurations/not_digits_pegs/_Order")
	require.False(t, ok)
}

func TestResolveKeyRejectsUnknownKey(t *testing.T) {
	m := newTestManager()
	_, ok := m.resolveKey("MHG.DoesNotExist")
	require.False(t, ok)
}

func TestHandleRequestRejectsWrongDataType(t *testing.T) {
	m := newTestManager()
	w := msgpack.NewWriter()
	w.WriteBool(false)
	req := c2s.ExtraDataEnvelope{Key: simulationPausedKey, DataType: "System.Int32", Data: w.Bytes()}
	_, ok := m.HandleRequest(req)
	require.False(t, ok)
}

func TestFlagListOrderLoadFromSUCC(t *testing.T) {
	doc := []byte("Flags:\n  - C-1\n  - C-2\n  - C-3\n")
	tree, err := succ.Parse(doc)
	require.NoError(t, err)
	flagsNode := tree.Map["Flags"]

	f := newFlagListOrder()
	require.NoError(t, f.LoadFromSUCC(flagsNode))
	require.Equal(t, []uint32{1, 2, 3}, f.Flags)
}

func TestEntryResolutionIsStable(t *testing.T) {
	m := newTestManager()
	e1, ok := m.resolveKey(simulationPausedKey)
	require.True(t, ok)
	e2, ok := m.resolveKey(simulationPausedKey)
	require.True(t, ok)
	require.Same(t, e1, e2)
}
