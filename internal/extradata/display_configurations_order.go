package extradata

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/succ"
)

const displayConfigurationsOrderType = "System.Int32[]"

// DisplayConfigurationsOrder is the display ordering of a peg count's saved
// DisplayConfiguration palettes, as chosen by the client UI.
type DisplayConfigurationsOrder struct {
	PegCount uint32
	List     []uint32
	HasData  bool
}

func newDisplayConfigurationsOrder(pegCount uint32) *DisplayConfigurationsOrder {
	return &DisplayConfigurationsOrder{PegCount: pegCount}
}

func parseDisplayConfigurationsOrder(data []byte) ([]uint32, error) {
	r := msgpack.NewReader(data)
	count, err := r.ExpectArrayHeader()
	if err != nil {
		return nil, fmt.Errorf("extradata: display configuration order entry count: %w", err)
	}
	list := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		v, err := r.ExpectInt()
		if err != nil {
			return nil, fmt.Errorf("extradata: display configuration order entry %d: %w", i, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("extradata: display configuration order index must not be negative, got %d", v)
		}
		list = append(list, uint32(v))
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("extradata: display configuration order has trailing bytes")
	}
	return list, nil
}

func (e *DisplayConfigurationsOrder) ValidateDefaultBytes(data []byte) bool {
	list, err := parseDisplayConfigurationsOrder(data)
	if err != nil {
		return false
	}
	// No server-side default exists yet: trust the client's first answer.
	if !e.HasData {
		e.List = list
		e.HasData = true
	}
	return true
}

func (e *DisplayConfigurationsOrder) UpdateBytesIfValid(data []byte) bool {
	list, err := parseDisplayConfigurationsOrder(data)
	if err != nil {
		return false
	}
	e.List = list
	e.HasData = true
	return true
}

func (e *DisplayConfigurationsOrder) Key() string {
	return fmt.Sprintf("%s%d_pegs/_Order", displayConfigPrefix, e.PegCount)
}

func (e *DisplayConfigurationsOrder) DataTypeNetwork() string { return displayConfigurationsOrderType }
func (e *DisplayConfigurationsOrder) DataTypeFile() string    { return displayConfigurationsOrderType }

func (e *DisplayConfigurationsOrder) SerializeData() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(len(e.List))
	for _, v := range e.List {
		w.WriteUint(uint64(v))
	}
	return w.Bytes()
}

func (e *DisplayConfigurationsOrder) LoadFromSUCC(succ.Value) error {
	return errLoadUnsupported(e.Key())
}
