// Package extradata implements the ExtraData key/value store: a small set
// of named, typed entries (simulation state, world floor type, flag
// ordering, per-peg display configurations) that clients query and mutate
// over the ExtraDataRequest/ExtraDataChange/ExtraDataUpdate packets.
// Grounded in original_source/src/files/extra_data/{manager,entries/*}.rs.
package extradata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecconia/logicworldd/internal/packets/c2s"
	"github.com/ecconia/logicworldd/internal/packets/s2c"
	"github.com/ecconia/logicworldd/internal/succ"
)

// Entry is one ExtraData value: a self-describing key/type/bytes slot that
// knows how to validate and apply client-suggested changes, and how to load
// its initial value from a world's on-disk SUCC configuration. Every
// concrete entry type implements LoadFromSUCC, even the ones the directory
// scan never actually reaches (it rejects with an error there), so the
// interface stays closed over exactly the six variants the client protocol
// knows about.
type Entry interface {
	// ValidateDefaultBytes reports whether the client-suggested default for
	// a not-yet-known key is well-formed enough to accept.
	ValidateDefaultBytes(data []byte) bool
	// UpdateBytesIfValid applies a client-suggested change if well formed,
	// reporting whether it did.
	UpdateBytesIfValid(data []byte) bool
	// Key is this entry's network/lookup key.
	Key() string
	// DataTypeNetwork is the .NET type name advertised to clients.
	DataTypeNetwork() string
	// DataTypeFile is the type name used when this entry appears in a SUCC
	// configuration file (sometimes differs from the network name).
	DataTypeFile() string
	// SerializeData encodes the current value as MessagePack bytes.
	SerializeData() []byte
	// LoadFromSUCC primes the entry's value from a parsed SUCC tree,
	// returning an error if this entry kind cannot be loaded that way.
	LoadFromSUCC(tree succ.Value) error
}

// Manager resolves ExtraData keys to entries, lazily creating entries (with
// their zero-value defaults) on first access — mirroring the client/server
// protocol's "the key exists the moment anyone asks about it" semantics.
type Manager struct {
	log     zerolog.Logger
	entries map[string]Entry
}

// NewManager returns an empty Manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log, entries: make(map[string]Entry)}
}

const displayConfigPrefix = "MHG.DisplayConfigurations/"

// resolveKey returns the entry for key, creating it with its default value
// on first access. A nil, false result means key does not name a known (or
// well-formed) ExtraData entry.
func (m *Manager) resolveKey(key string) (Entry, bool) {
	if e, ok := m.entries[key]; ok {
		return e, true
	}

	var created Entry
	switch key {
	case simulationPausedKey:
		created = newSimulationPaused()
	case flagListOrderKey:
		created = newFlagListOrder()
	case simulationSpeedKey:
		created = newSimulationSpeed()
	case worldTypeDataKey:
		// Works for the one world type this server knows; a server
		// supporting multiple world types would need to prime this
		// per-world during world load instead of defaulting blind.
		created = newWorldTypeDataGridlands()
	default:
		e, ok := m.resolveDisplayConfigurationKey(key)
		if !ok {
			return nil, false
		}
		created = e
	}

	m.entries[key] = created
	return created, true
}

func (m *Manager) resolveDisplayConfigurationKey(key string) (Entry, bool) {
	rest, ok := strings.CutPrefix(key, displayConfigPrefix)
	if !ok {
		return nil, false
	}

	position := strings.IndexFunc(rest, func(r rune) bool {
		return r > '9' || r < '0'
	})
	if position < 0 {
		return nil, false
	}
	if position == 0 {
		return nil, false // starts with a letter where a digit was required
	}
	pegsStr := rest[:position]
	if len(pegsStr) > 1000 {
		return nil, false // absurdly long digit run, reject outright
	}
	pegs, err := strconv.ParseUint(pegsStr, 10, 32)
	if err != nil {
		return nil, false
	}
	rest = rest[position:]

	if rest == "_pegs/_Order" {
		m.log.Info().Uint64("pegs", pegs).Msg("got the display configuration order extra data")
		return newDisplayConfigurationsOrder(uint32(pegs)), true
	}

	configRest, ok := strings.CutPrefix(rest, "_pegs/Configuration")
	if !ok {
		return nil, false
	}
	if len(configRest) > 1_000_000 {
		return nil, false
	}
	if strings.IndexFunc(configRest, func(r rune) bool { return r > '9' || r < '0' }) >= 0 {
		return nil, false
	}
	index, err := strconv.ParseUint(configRest, 10, 32)
	if err != nil {
		return nil, false
	}
	m.log.Info().Uint64("pegs", pegs).Uint64("index", index).Msg("got a display configuration extra data")
	return newDisplayConfiguration(uint32(pegs), uint32(index)), true
}

// HandleRequest answers an ExtraDataRequestPacket: if key is known (or can
// be created) and the client's claimed default matches the wire type, it
// returns the update to send back. A false result means the packet should
// be silently dropped.
func (m *Manager) HandleRequest(req c2s.ExtraDataEnvelope) (s2c.ExtraDataUpdate, bool) {
	entry, ok := m.resolveKey(req.Key)
	if !ok {
		m.log.Warn().Str("key", req.Key).Str("type", req.DataType).Msg("client queried unknown extra data")
		return s2c.ExtraDataUpdate{}, false
	}
	if entry.DataTypeNetwork() != req.DataType {
		m.log.Warn().Str("key", entry.Key()).Str("got", req.DataType).Str("want", entry.DataTypeNetwork()).
			Msg("client queried extra data with wrong data type")
		return s2c.ExtraDataUpdate{}, false
	}
	if !entry.ValidateDefaultBytes(req.Data) {
		m.log.Warn().Str("key", entry.Key()).Msg("client sent invalid default data for extra data, ignoring")
		return s2c.ExtraDataUpdate{}, false
	}
	return pack(entry), true
}

// HandleChange answers an ExtraDataChangePacket: if the change is
// well-formed and accepted, it returns the update to echo back to the
// client. A false result means the packet should be silently dropped.
func (m *Manager) HandleChange(change c2s.ExtraDataEnvelope) (s2c.ExtraDataUpdate, bool) {
	entry, ok := m.resolveKey(change.Key)
	if !ok {
		m.log.Warn().Str("key", change.Key).Str("type", change.DataType).Msg("client tried to update unknown extra data")
		return s2c.ExtraDataUpdate{}, false
	}
	if entry.DataTypeNetwork() != change.DataType {
		m.log.Warn().Str("key", entry.Key()).Str("got", change.DataType).Str("want", entry.DataTypeNetwork()).
			Msg("client updated extra data with wrong data type, ignoring")
		return s2c.ExtraDataUpdate{}, false
	}
	if !entry.UpdateBytesIfValid(change.Data) {
		return s2c.ExtraDataUpdate{}, false
	}
	return pack(entry), true
}

// LoadFromSUCC primes the entry named by key (creating it with its default
// value if this is the first time it's been seen) from a parsed SUCC
// document, used by the startup directory scan over data/World/ExtraData.
func (m *Manager) LoadFromSUCC(key string, tree succ.Value) error {
	entry, ok := m.resolveKey(key)
	if !ok {
		return fmt.Errorf("extradata: %s does not name a known entry", key)
	}
	return entry.LoadFromSUCC(tree)
}

func pack(e Entry) s2c.ExtraDataUpdate {
	return s2c.ExtraDataUpdate{
		Key:      e.Key(),
		DataType: e.DataTypeNetwork(),
		Data:     e.SerializeData(),
	}
}

// errLoadUnsupported is returned by entries that the on-disk SUCC scan
// never actually reaches (they are always created with a default value
// instead), keeping the Entry interface closed while being explicit about
// which variants this applies to.
func errLoadUnsupported(key string) error {
	return fmt.Errorf("extradata: %s entries are not loaded from a SUCC file", key)
}
