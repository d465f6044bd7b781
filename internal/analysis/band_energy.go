// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"ringviz/internal/band"
)

// BandMeter reduces a byte-scaled spectrum to one energy per band: the mean
// level of the bins whose indices cover the band's frequency range.
type BandMeter struct {
	low, high [band.Count]int // inclusive bin indices
}

// NewBandMeter maps each band's [low, high] Hz range onto bin indices of a
// spectrum with the given number of bins spanning 0 to the Nyquist frequency.
// Both ends are rounded to the nearest bin and the range is inclusive.
func NewBandMeter(ranges [band.Count][2]float64, bins int, sampleRate float64) *BandMeter {
	m := &BandMeter{}
	nyquist := sampleRate / 2
	for _, id := range band.All {
		lo := binIndex(ranges[id][0], nyquist, bins)
		hi := binIndex(ranges[id][1], nyquist, bins)
		m.low[id], m.high[id] = lo, max(lo, hi)
	}
	return m
}

func binIndex(freq, nyquist float64, bins int) int {
	i := int(math.Round(freq / nyquist * float64(bins)))
	return max(0, min(bins-1, i))
}

// Measure returns the band energies of levels, each in [0, 255].
func (m *BandMeter) Measure(levels []float64) band.Frame {
	var out band.Frame
	if len(levels) == 0 {
		return out
	}
	for _, id := range band.All {
		lo, hi := m.low[id], min(m.high[id], len(levels)-1)
		if lo > hi {
			continue
		}
		var total float64
		for i := lo; i <= hi; i++ {
			total += levels[i]
		}
		out[id] = total / float64(hi-lo+1)
	}
	return out
}

// Bins returns the inclusive bin range used for id.
func (m *BandMeter) Bins(id band.ID) (low, high int) {
	return m.low[id], m.high[id]
}
