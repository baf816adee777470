package extradata

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/succ"
)

const (
	simulationSpeedKey  = "MHG.SimulationSpeed"
	simulationSpeedType = "System.Double"
)

// SimulationSpeed is the client-suggested simulation ticks-per-second
// override; 0 means "use the server's normal rate".
type SimulationSpeed struct {
	Speed float64
}

func newSimulationSpeed() *SimulationSpeed { return &SimulationSpeed{} }

func parseSimulationSpeed(data []byte) (float64, error) {
	r := msgpack.NewReader(data)
	v, err := r.ExpectFloat64()
	if err != nil {
		return 0, fmt.Errorf("extradata: simulation speed: %w", err)
	}
	return v, nil
}

func (e *SimulationSpeed) ValidateDefaultBytes(data []byte) bool {
	_, err := parseSimulationSpeed(data)
	return err == nil
}

func (e *SimulationSpeed) UpdateBytesIfValid(data []byte) bool {
	v, err := parseSimulationSpeed(data)
	if err != nil {
		return false
	}
	if v < 0 {
		return false
	}
	e.Speed = v
	return true
}

func (e *SimulationSpeed) Key() string            { return simulationSpeedKey }
func (e *SimulationSpeed) DataTypeNetwork() string { return simulationSpeedType }
func (e *SimulationSpeed) DataTypeFile() string    { return simulationSpeedType }

func (e *SimulationSpeed) SerializeData() []byte {
	w := msgpack.NewWriter()
	w.WriteFloat64(e.Speed)
	return w.Bytes()
}

func (e *SimulationSpeed) LoadFromSUCC(succ.Value) error {
	return errLoadUnsupported(simulationSpeedKey)
}
