// SPDX-License-Identifier: MIT
package engine

import (
	"math"

	"ringviz/internal/band"
	"ringviz/internal/config"
)

// Ring is a growing circle spawned by a burst of energy. Position, growth
// and hue are fixed when the ring is created; only Radius changes.
type Ring struct {
	X, Y   float64
	Radius float64
	Growth float64
	Hue    float64
}

// Emitter spawns rings at most once every period frames, and only when the
// dominant band's raw energy is above the threshold.
type Emitter struct {
	period      uint64
	threshold   float64
	startRadius float64
	energyMin   float64
	energyMax   float64
	growthMin   float64
	growthMax   float64
	bands       band.Settings

	frame uint64
}

// NewEmitter builds an emitter from the ring section of the visual config.
func NewEmitter(rc config.RingConfig, bands band.Settings) *Emitter {
	return &Emitter{
		period:      uint64(rc.SpawnPeriod),
		threshold:   rc.EnergyThreshold,
		startRadius: rc.StartRadius,
		energyMin:   rc.EnergyMin,
		energyMax:   rc.EnergyMax,
		growthMin:   rc.GrowthMin,
		growthMax:   rc.GrowthMax,
		bands:       bands,
	}
}

// Frame returns the number of frames seen so far.
func (e *Emitter) Frame() uint64 {
	return e.frame
}

// Emit appends a new ring centred on (cx, cy) when the gate is open and the
// energy clears the threshold. The frame counter advances on every call.
func (e *Emitter) Emit(rings []Ring, id band.ID, energy, cx, cy float64) []Ring {
	if energy > e.threshold && e.frame%e.period == 0 {
		rings = append(rings, Ring{
			X:      cx,
			Y:      cy,
			Radius: e.startRadius,
			Growth: e.Growth(energy),
			Hue:    e.bands[id].Hue,
		})
	}
	e.frame++
	return rings
}

// Growth maps a raw energy onto the per-frame radius increment. Energies
// outside the configured domain are clamped first.
func (e *Emitter) Growth(energy float64) float64 {
	energy = math.Max(e.energyMin, math.Min(e.energyMax, energy))
	t := (energy - e.energyMin) / (e.energyMax - e.energyMin)
	return e.growthMin + t*(e.growthMax-e.growthMin)
}

// Advance grows every ring by its fixed increment and drops the ones whose
// radius now exceeds the larger canvas extent. The surviving rings keep
// their insertion order and share the input's backing array.
func Advance(rings []Ring, width, height float64) []Ring {
	limit := math.Max(width, height)
	kept := rings[:0]
	for _, r := range rings {
		r.Radius += r.Growth
		if r.Radius > limit {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
