package extradata

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/succ"
	"github.com/ecconia/logicworldd/internal/world"
)

const displayConfigurationType = "JimmysUnityUtilities.Color24[]"

// DisplayConfiguration is one saved color palette for a display component
// with PegCount address pegs, identified among that peg count's palettes by
// Index. The client is currently the sole source of truth for palette
// contents — there is no persisted default — so the first validated or
// applied value becomes the entry's value.
type DisplayConfiguration struct {
	PegCount uint32
	Index    uint32
	Colors   []world.Color24
	HasData  bool
}

func newDisplayConfiguration(pegCount, index uint32) *DisplayConfiguration {
	return &DisplayConfiguration{PegCount: pegCount, Index: index}
}

func parseDisplayConfigurationColors(data []byte) ([]world.Color24, error) {
	r := msgpack.NewReader(data)
	count, err := r.ExpectArrayHeader()
	if err != nil {
		return nil, fmt.Errorf("extradata: display configuration color count: %w", err)
	}
	colors := make([]world.Color24, 0, count)
	for i := 0; i < count; i++ {
		n, err := r.ExpectArrayHeader()
		if err != nil {
			return nil, fmt.Errorf("extradata: display configuration color %d: %w", i, err)
		}
		if n != 3 {
			return nil, fmt.Errorf("extradata: display configuration color %d has %d channels, want 3", i, n)
		}
		var c world.Color24
		for _, ch := range []*uint8{&c.R, &c.G, &c.B} {
			v, err := r.ExpectUint()
			if err != nil {
				return nil, fmt.Errorf("extradata: display configuration color %d channel: %w", i, err)
			}
			*ch = uint8(v)
		}
		colors = append(colors, c)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("extradata: display configuration has trailing bytes after colors")
	}
	return colors, nil
}

func (e *DisplayConfiguration) expectedColorCount() int {
	return 1 << e.PegCount
}

func (e *DisplayConfiguration) ValidateDefaultBytes(data []byte) bool {
	colors, err := parseDisplayConfigurationColors(data)
	if err != nil {
		return false
	}
	if len(colors) != e.expectedColorCount() {
		return false
	}
	// The protocol has no server-side default for this entry yet: accept
	// whatever the client first suggests.
	if !e.HasData {
		e.Colors = colors
		e.HasData = true
	}
	return true
}

func (e *DisplayConfiguration) UpdateBytesIfValid(data []byte) bool {
	colors, err := parseDisplayConfigurationColors(data)
	if err != nil {
		return false
	}
	if len(colors) != e.expectedColorCount() {
		return false
	}
	e.Colors = colors
	e.HasData = true
	return true
}

func (e *DisplayConfiguration) Key() string {
	return fmt.Sprintf("%s%d_pegs/Configuration%d", displayConfigPrefix, e.PegCount, e.Index)
}

func (e *DisplayConfiguration) DataTypeNetwork() string { return displayConfigurationType }
func (e *DisplayConfiguration) DataTypeFile() string    { return displayConfigurationType }

func (e *DisplayConfiguration) SerializeData() []byte {
	w := msgpack.NewWriter()
	// Not yet primed means there is nothing sensible to send; an empty
	// palette is the closest honest answer rather than refusing to encode.
	w.WriteArrayHeader(len(e.Colors))
	for _, c := range e.Colors {
		w.WriteArrayHeader(3)
		w.WriteUint(uint64(c.R))
		w.WriteUint(uint64(c.G))
		w.WriteUint(uint64(c.B))
	}
	return w.Bytes()
}

func (e *DisplayConfiguration) LoadFromSUCC(succ.Value) error {
	return errLoadUnsupported(e.Key())
}
