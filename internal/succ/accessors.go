package succ

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecconia/logicworldd/internal/world"
)

// ExpectMap requires v to be map-shaped (Map or Any) and returns its entries.
func (v Value) ExpectMap() (map[string]Value, error) {
	if !v.IsMap() {
		return nil, fmt.Errorf("succ: expected Map, got %s", v.Name())
	}
	return v.Map, nil
}

// ExpectList requires v to be list-shaped (List or Any) and returns its
// entries.
func (v Value) ExpectList() ([]Value, error) {
	if !v.IsList() {
		return nil, fmt.Errorf("succ: expected List, got %s", v.Name())
	}
	return v.List, nil
}

// ExpectString requires v to hold a plain value.
func (v Value) ExpectString() (string, error) {
	if v.Kind != KindValue {
		return "", fmt.Errorf("succ: expected Value, got %s", v.Name())
	}
	return v.Str, nil
}

// ExpectBool parses v's value as a SUCC boolean ("true"/"on"/"yes"/"y" or
// "false"/"off"/"no"/"n").
func (v Value) ExpectBool() (bool, error) {
	s, err := v.ExpectString()
	if err != nil {
		return false, fmt.Errorf("while expecting bool: %w", err)
	}
	switch s {
	case "true", "on", "yes", "y":
		return true, nil
	case "false", "off", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("succ: expected boolean value, got %q", s)
}

// ExpectDouble parses v's value as a floating point number.
func (v Value) ExpectDouble() (float64, error) {
	s, err := v.ExpectString()
	if err != nil {
		return 0, fmt.Errorf("while expecting double: %w", err)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("succ: expected floating point number, got %q", s)
	}
	return f, nil
}

// ExpectColor parses v's value as a 6-hex-digit "RRGGBB" color.
//
// The original implementation validates the string is 6 hex characters but
// then slices one digit per channel ([0..1], [2..3], [4..5]) instead of two
// ([0..2], [2..4], [4..6]) — silently discarding half the precision of every
// color. This reads the full two digits per channel, which is what a 6-digit
// RGB code is supposed to mean.
func (v Value) ExpectColor() (world.Color24, error) {
	s, err := v.ExpectString()
	if err != nil {
		return world.Color24{}, fmt.Errorf("while expecting color: %w", err)
	}
	if len(s) != 6 {
		return world.Color24{}, fmt.Errorf("succ: color code must be exactly 6 characters long, got %q", s)
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'F') {
			return world.Color24{}, fmt.Errorf("succ: color code may only consist of 0-9A-F, got %q", s)
		}
	}
	r, _ := strconv.ParseUint(s[0:2], 16, 8)
	g, _ := strconv.ParseUint(s[2:4], 16, 8)
	b, _ := strconv.ParseUint(s[4:6], 16, 8)
	return world.Color24{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// ExpectUnsigned parses v's value as a non-negative 32-bit integer.
func (v Value) ExpectUnsigned() (uint32, error) {
	s, err := v.ExpectString()
	if err != nil {
		return 0, fmt.Errorf("while expecting unsigned: %w", err)
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("succ: failed to parse unsigned number %q: %w", s, err)
	}
	return uint32(n), nil
}

// ExpectComponentAddress parses v's value as a "C-<id>" component address
// reference.
func (v Value) ExpectComponentAddress() (uint32, error) {
	s, err := v.ExpectString()
	if err != nil {
		return 0, fmt.Errorf("while expecting component address: %w", err)
	}
	rest, ok := strings.CutPrefix(s, "C-")
	if !ok {
		return 0, fmt.Errorf("succ: expected component address to start with \"C-\", got %q", s)
	}
	n, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("succ: failed to parse component address number in %q: %w", s, err)
	}
	return uint32(n), nil
}
