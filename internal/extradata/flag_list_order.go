package extradata

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/succ"
)

const (
	flagListOrderKey      = "MHG.FlagListOrder"
	flagListOrderType     = "System.Collections.Generic.List`1[[LogicAPI.Data.ComponentAddress, LogicAPI, Version=1.0.0.0, Culture=neutral, PublicKeyToken=null]]"
	flagListOrderFileType = "System.Collections.Generic.List<LogicAPI.Data.ComponentAddress>"
)

// FlagListOrder is the server-authoritative ordering of flag components
// shown in the client's flag list UI.
type FlagListOrder struct {
	Flags []uint32
}

func newFlagListOrder() *FlagListOrder { return &FlagListOrder{} }

func parseFlagListOrder(data []byte) ([]uint32, error) {
	r := msgpack.NewReader(data)
	count, err := r.ExpectArrayHeader()
	if err != nil {
		return nil, fmt.Errorf("extradata: flag list order entry count: %w", err)
	}
	flags := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		n, err := r.ExpectArrayHeader()
		if err != nil {
			return nil, fmt.Errorf("extradata: flag list order entry %d: %w", i, err)
		}
		if n != 1 {
			return nil, fmt.Errorf("extradata: flag list order entry %d has %d fields, want 1", i, n)
		}
		address, err := r.ExpectInt()
		if err != nil {
			return nil, fmt.Errorf("extradata: flag list order entry %d: %w", i, err)
		}
		if address < 0 {
			return nil, fmt.Errorf("extradata: flag address must not be negative, got %d", address)
		}
		flags = append(flags, uint32(address))
	}
	return flags, nil
}

func (e *FlagListOrder) ValidateDefaultBytes(data []byte) bool {
	flags, err := parseFlagListOrder(data)
	if err != nil {
		return false
	}
	// The client cannot know the server's flags yet, so a non-empty
	// suggested default is always a lie (or an attack).
	return len(flags) == 0
}

func (e *FlagListOrder) UpdateBytesIfValid(data []byte) bool {
	flags, err := parseFlagListOrder(data)
	if err != nil {
		return false
	}
	e.Flags = flags
	return true
}

func (e *FlagListOrder) Key() string            { return flagListOrderKey }
func (e *FlagListOrder) DataTypeNetwork() string { return flagListOrderType }
func (e *FlagListOrder) DataTypeFile() string    { return flagListOrderFileType }

func (e *FlagListOrder) SerializeData() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(len(e.Flags))
	for _, flag := range e.Flags {
		w.WriteArrayHeader(1)
		w.WriteUint(uint64(flag))
	}
	return w.Bytes()
}

func (e *FlagListOrder) LoadFromSUCC(tree succ.Value) error {
	list, err := tree.ExpectList()
	if err != nil {
		return fmt.Errorf("extradata: flag list order: %w", err)
	}
	flags := make([]uint32, 0, len(list))
	for i, entry := range list {
		addr, err := entry.ExpectComponentAddress()
		if err != nil {
			return fmt.Errorf("extradata: flag list order entry %d: %w", i, err)
		}
		flags = append(flags, addr)
	}
	e.Flags = flags
	return nil
}
