package extradata

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/succ"
)

const (
	simulationPausedKey  = "MHG.SimulationPaused"
	simulationPausedType = "System.Boolean"
)

// SimulationPaused tracks whether the simulation clock is stopped.
type SimulationPaused struct {
	Paused bool
}

func newSimulationPaused() *SimulationPaused { return &SimulationPaused{} }

func parseSimulationPaused(data []byte) (bool, error) {
	r := msgpack.NewReader(data)
	v, err := r.ExpectBool()
	if err != nil {
		return false, fmt.Errorf("extradata: simulation paused: %w", err)
	}
	return v, nil
}

func (e *SimulationPaused) ValidateDefaultBytes(data []byte) bool {
	_, err := parseSimulationPaused(data)
	return err == nil
}

func (e *SimulationPaused) UpdateBytesIfValid(data []byte) bool {
	v, err := parseSimulationPaused(data)
	if err != nil {
		return false
	}
	e.Paused = v
	return true
}

func (e *SimulationPaused) Key() string            { return simulationPausedKey }
func (e *SimulationPaused) DataTypeNetwork() string { return simulationPausedType }
func (e *SimulationPaused) DataTypeFile() string    { return simulationPausedType }

func (e *SimulationPaused) SerializeData() []byte {
	w := msgpack.NewWriter()
	w.WriteBool(e.Paused)
	return w.Bytes()
}

func (e *SimulationPaused) LoadFromSUCC(succ.Value) error {
	return errLoadUnsupported(simulationPausedKey)
}
