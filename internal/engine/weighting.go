// SPDX-License-Identifier: MIT
package engine

import "ringviz/internal/band"

// Weight applies the per-band gains to a raw spectral frame.
func Weight(raw band.Frame, settings band.Settings) band.Frame {
	var weighted band.Frame
	for _, id := range band.All {
		weighted[id] = raw[id] * settings[id].Weight
	}
	return weighted
}

// Dominant returns the band with the largest weighted energy together with
// that band's raw energy. Bands are scanned in canonical order and a later
// band only takes the lead when strictly greater, so ties go to the earlier
// band.
func Dominant(raw, weighted band.Frame) (band.ID, float64) {
	leader := band.All[0]
	for _, id := range band.All[1:] {
		if weighted[id] > weighted[leader] {
			leader = id
		}
	}
	return leader, raw[leader]
}
