// SPDX-License-Identifier: MIT

// Package band defines the four canonical frequency bands the visual engine
// reacts to and the per-band tables (gain and hue) it is configured with.
package band

import (
	"errors"
	"fmt"
	"strings"
)

// ID identifies one of the canonical bands. The numeric order is the
// canonical scan order used for tie-breaking.
type ID int

const (
	Bass ID = iota
	LowMid
	Mid
	HighMid
)

// Count is the number of canonical bands.
const Count = 4

// All lists the bands in canonical order.
var All = [Count]ID{Bass, LowMid, Mid, HighMid}

// ErrIncompleteTable is returned when a table does not cover every band.
var ErrIncompleteTable = errors.New("band table does not cover all bands")

var names = [Count]string{"bass", "lowMid", "mid", "highMid"}

func (id ID) String() string {
	if id < 0 || int(id) >= Count {
		return fmt.Sprintf("band(%d)", int(id))
	}
	return names[id]
}

// Parse converts a band name (case-insensitive) to its ID.
func Parse(name string) (ID, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown band %q", name)
}

// Frame holds one energy reading per band, indexed by ID.
type Frame [Count]float64

// Setting is the static configuration of a single band.
type Setting struct {
	Weight float64 `yaml:"weight"` // Gain applied before dominant band selection.
	Hue    float64 `yaml:"hue"`    // Display hue in degrees (0-360).
}

// Table maps band names to their settings. It is the shape read from the
// configuration file; Resolve turns it into an indexed form.
type Table map[string]Setting

// Settings is a resolved table, indexed by ID.
type Settings [Count]Setting

// DefaultTable returns the stock gains and hues.
func DefaultTable() Table {
	return Table{
		"bass":    {Weight: 1.9, Hue: 0},
		"lowMid":  {Weight: 1.4, Hue: 15},
		"mid":     {Weight: 1.0, Hue: 30},
		"highMid": {Weight: 1.0, Hue: 45},
	}
}

// Resolve checks that every band is present and returns the indexed
// settings. Unknown keys are rejected as well, since they usually mean a
// misspelt band name.
func (t Table) Resolve() (Settings, error) {
	var out Settings
	var seen [Count]bool
	for name, s := range t {
		id, err := Parse(name)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrIncompleteTable, err)
		}
		out[id] = s
		seen[id] = true
	}
	for _, id := range All {
		if !seen[id] {
			return out, fmt.Errorf("%w: missing %s", ErrIncompleteTable, id)
		}
	}
	return out, nil
}
