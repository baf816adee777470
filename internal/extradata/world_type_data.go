package extradata

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/succ"
	"github.com/ecconia/logicworldd/internal/world"
)

const (
	worldTypeDataKey  = "MHG.WorldTypeData"
	worldTypeDataType = "LogicWorld.SharedCode.Data.GridlandsWorldData"
)

// WorldTypeDataGridlands is the floor-grid appearance for the one world
// type this server serves: the checkered grass/dirt ground plane.
type WorldTypeDataGridlands struct {
	ColorA, ColorB world.Color24
	SideX, SideZ   uint32
}

func newWorldTypeDataGridlands() *WorldTypeDataGridlands {
	return &WorldTypeDataGridlands{
		ColorA: world.Color24{R: 80, G: 0, B: 0},
		ColorB: world.Color24{R: 0, G: 80, B: 0},
		SideX:  16,
		SideZ:  32,
	}
}

func parseWorldTypeDataGridlands(data []byte) (WorldTypeDataGridlands, error) {
	r := msgpack.NewReader(data)
	readColor := func(label string) (world.Color24, error) {
		n, err := r.ExpectArrayHeader()
		if err != nil {
			return world.Color24{}, fmt.Errorf("%s: %w", label, err)
		}
		if n != 3 {
			return world.Color24{}, fmt.Errorf("%s has %d entries, want 3", label, n)
		}
		var c world.Color24
		for _, ch := range []*uint8{&c.R, &c.G, &c.B} {
			v, err := r.ExpectUint()
			if err != nil {
				return world.Color24{}, fmt.Errorf("%s channel: %w", label, err)
			}
			*ch = uint8(v)
		}
		return c, nil
	}

	n, err := r.ExpectArrayHeader()
	if err != nil {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data: %w", err)
	}
	if n != 4 {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data has %d entries, want 4", n)
	}
	colorA, err := readColor("color a")
	if err != nil {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data: %w", err)
	}
	colorB, err := readColor("color b")
	if err != nil {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data: %w", err)
	}
	sideX, err := r.ExpectInt()
	if err != nil {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data side x: %w", err)
	}
	if sideX < 1 {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data side x must be at least 1, got %d", sideX)
	}
	sideZ, err := r.ExpectInt()
	if err != nil {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data side z: %w", err)
	}
	if sideZ < 1 {
		return WorldTypeDataGridlands{}, fmt.Errorf("extradata: world type data side z must be at least 1, got %d", sideZ)
	}

	return WorldTypeDataGridlands{ColorA: colorA, ColorB: colorB, SideX: uint32(sideX), SideZ: uint32(sideZ)}, nil
}

func (e *WorldTypeDataGridlands) ValidateDefaultBytes(data []byte) bool {
	_, err := parseWorldTypeDataGridlands(data)
	return err == nil
}

func (e *WorldTypeDataGridlands) UpdateBytesIfValid(data []byte) bool {
	v, err := parseWorldTypeDataGridlands(data)
	if err != nil {
		return false
	}
	e.ColorA = v.ColorA
	e.ColorB = v.ColorB
	e.SideX = v.SideX
	e.SideZ = v.SideZ
	return true
}

func (e *WorldTypeDataGridlands) Key() string            { return worldTypeDataKey }
func (e *WorldTypeDataGridlands) DataTypeNetwork() string { return worldTypeDataType }
func (e *WorldTypeDataGridlands) DataTypeFile() string    { return worldTypeDataType }

func (e *WorldTypeDataGridlands) SerializeData() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(4)
	w.WriteArrayHeader(3)
	w.WriteUint(uint64(e.ColorA.R))
	w.WriteUint(uint64(e.ColorA.G))
	w.WriteUint(uint64(e.ColorA.B))
	w.WriteArrayHeader(3)
	w.WriteUint(uint64(e.ColorB.R))
	w.WriteUint(uint64(e.ColorB.G))
	w.WriteUint(uint64(e.ColorB.B))
	w.WriteUint(uint64(e.SideX))
	w.WriteUint(uint64(e.SideZ))
	return w.Bytes()
}

func (e *WorldTypeDataGridlands) LoadFromSUCC(tree succ.Value) error {
	root, err := tree.ExpectMap()
	if err != nil {
		return fmt.Errorf("extradata: world type data: %w", err)
	}

	colorA, ok := root["ColorA"]
	if !ok {
		return fmt.Errorf("extradata: world type data: missing ColorA")
	}
	ca, err := colorA.ExpectColor()
	if err != nil {
		return fmt.Errorf("extradata: world type data ColorA: %w", err)
	}

	colorB, ok := root["ColorB"]
	if !ok {
		return fmt.Errorf("extradata: world type data: missing ColorB")
	}
	cb, err := colorB.ExpectColor()
	if err != nil {
		return fmt.Errorf("extradata: world type data ColorB: %w", err)
	}

	sideX, ok := root["BigCellSizeX"]
	if !ok {
		return fmt.Errorf("extradata: world type data: missing BigCellSizeX")
	}
	sx, err := sideX.ExpectUnsigned()
	if err != nil {
		return fmt.Errorf("extradata: world type data BigCellSizeX: %w", err)
	}
	if sx == 0 {
		return fmt.Errorf("extradata: world type data BigCellSizeX must be bigger than 0")
	}

	sideZ, ok := root["BigCellSizeZ"]
	if !ok {
		return fmt.Errorf("extradata: world type data: missing BigCellSizeZ")
	}
	sz, err := sideZ.ExpectUnsigned()
	if err != nil {
		return fmt.Errorf("extradata: world type data BigCellSizeZ: %w", err)
	}
	if sz == 0 {
		return fmt.Errorf("extradata: world type data BigCellSizeZ must be bigger than 0")
	}

	e.ColorA = ca
	e.ColorB = cb
	e.SideX = sx
	e.SideZ = sz
	return nil
}
