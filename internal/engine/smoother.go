// SPDX-License-Identifier: MIT
package engine

import (
	"errors"
	"fmt"
	"math"

	"ringviz/internal/config"
	"ringviz/internal/log"
)

// ErrBufferLength is returned when the first waveform buffer does not match
// the configured length.
var ErrBufferLength = errors.New("waveform buffer length mismatch")

// Sample is one eased waveform value. Valid is false until the index has
// seen its first sample.
type Sample struct {
	Value float64
	Valid bool
}

// Smoother is a one-pole exponential filter over the waveform buffer. It
// boosts and clamps every raw sample, then moves the stored value towards it
// by the smoothing factor.
type Smoother struct {
	boost    float64
	clampMin float64
	clampMax float64
	factor   float64
	length   int

	state   []Sample
	started bool
}

// NewSmoother builds a smoother for buffers of wc.Length samples.
func NewSmoother(wc config.WaveformConfig) *Smoother {
	return &Smoother{
		boost:    wc.Boost,
		clampMin: wc.ClampMin,
		clampMax: wc.ClampMax,
		factor:   wc.Smoothing,
		length:   wc.Length,
		state:    make([]Sample, wc.Length),
	}
}

// Apply folds one waveform buffer into the smoothing state.
//
// The first buffer must have the configured length. A later change of
// length discards the whole state and starts again from uninitialised
// samples.
func (s *Smoother) Apply(buffer []float64) error {
	if len(buffer) != len(s.state) {
		if !s.started {
			return fmt.Errorf("%w: got %d samples, want %d", ErrBufferLength, len(buffer), s.length)
		}
		log.Warnf("Engine: waveform length changed %d -> %d, resetting smoothing state", len(s.state), len(buffer))
		s.state = make([]Sample, len(buffer))
	}
	s.started = true

	for i, raw := range buffer {
		boosted := math.Max(s.clampMin, math.Min(s.clampMax, raw*s.boost))
		st := &s.state[i]
		if !st.Valid {
			st.Value = boosted
			st.Valid = true
			continue
		}
		st.Value += (boosted - st.Value) * s.factor
	}
	return nil
}

// Len returns the current state length.
func (s *Smoother) Len() int {
	return len(s.state)
}

// Value returns the eased value at index i; uninitialised samples read as 0.
func (s *Smoother) Value(i int) float64 {
	return s.state[i].Value
}

// State returns the live smoothing state. Callers must not modify it.
func (s *Smoother) State() []Sample {
	return s.state
}
