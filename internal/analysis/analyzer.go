// SPDX-License-Identifier: MIT
/*
Package analysis provides the spectral capability behind the visual engine.

The Analyzer is registered as an audio processor. Every captured buffer is
appended to a history ring; the most recent fftSize samples are run through
a Spectrum and reduced to per-band energies by a BandMeter. The render loop
polls Snapshot once per frame without blocking on the audio thread for
longer than a copy.
*/
package analysis

import (
	"fmt"
	"sync"

	"ringviz/internal/band"
	"ringviz/internal/config"
	"ringviz/internal/engine"
	"ringviz/internal/log"
	"ringviz/pkg/bitint"
)

type Analyzer struct {
	spectrum   *Spectrum
	meter      *BandMeter
	waveLength int

	mu      sync.Mutex
	history []float64 // ring of recent samples in [-1, 1)
	mask    int
	pos     int       // next write index
	block   []float64 // scratch for the spectrum input, oldest first
	bands   band.Frame
	fresh   bool
}

// Compile-time checks for interface implementations.
var _ ClosableProcessor = (*Analyzer)(nil)
var _ SpectrumProvider = (*Analyzer)(nil)
var _ engine.Source = (*Analyzer)(nil)

// NewAnalyzer builds an analyser with ac.Bins frequency bins (an FFT of twice
// that size) that also keeps the last waveLength samples for the waveform.
func NewAnalyzer(ac config.AnalysisConfig, sampleRate float64, waveLength int) (*Analyzer, error) {
	windowType, err := ParseWindowFunc(ac.FFTWindow)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	ranges, err := ac.ResolveRanges(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	if waveLength <= 0 {
		return nil, fmt.Errorf("analysis: waveform length must be positive, got %d", waveLength)
	}

	fftSize := ac.Bins * 2
	spectrum, err := NewSpectrum(fftSize, sampleRate, windowType, ac.Smoothing, ac.MinDecibels, ac.MaxDecibels)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	size := bitint.NextPowerOfTwo(max(fftSize, waveLength))

	log.Infof("Analysis: Initializing Analyzer (FFT: %d, Bins: %d, SampleRate: %.1f Hz, Window: %v, Smoothing: %.2f)",
		fftSize, spectrum.Bins(), sampleRate, windowType, ac.Smoothing)

	meter := NewBandMeter(ranges, spectrum.Bins(), sampleRate)
	for _, id := range band.All {
		lo, hi := meter.Bins(id)
		log.Debugf("Analysis: band %s -> bins [%d, %d]", id, lo, hi)
	}

	return &Analyzer{
		spectrum:   spectrum,
		meter:      meter,
		waveLength: waveLength,
		history:    make([]float64, size),
		mask:       bitint.Mask(size),
		block:      make([]float64, fftSize),
	}, nil
}

// Process appends a mono buffer to the history and refreshes the spectrum
// and band energies. It does not allocate.
func (a *Analyzer) Process(inputBuffer []int32) {
	const normFactor = 1.0 / float64(0x80000000) // int32 to [-1.0, 1.0)

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range inputBuffer {
		a.history[a.pos] = float64(s) * normFactor
		a.pos = (a.pos + 1) & a.mask
	}

	a.latest(a.block)
	a.spectrum.Compute(a.block)
	a.bands = a.meter.Measure(a.spectrum.Levels())
	a.fresh = true
}

// Snapshot implements engine.Source. ok reports whether any buffer was
// processed since the previous call; the snapshot is valid either way.
func (a *Analyzer) Snapshot() (snap engine.Snapshot, ok bool) {
	wave := make([]float64, a.waveLength)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.latest(wave)
	ok = a.fresh
	a.fresh = false
	return engine.Snapshot{Bands: a.bands, Waveform: wave}, ok
}

// latest copies the most recent len(dst) samples into dst, oldest first.
// Caller holds a.mu.
func (a *Analyzer) latest(dst []float64) {
	start := a.pos - len(dst)
	for i := range dst {
		dst[i] = a.history[(start+i)&a.mask]
	}
}

// GetSpectrum returns a copy of the latest byte-scaled spectrum.
func (a *Analyzer) GetSpectrum() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float64, a.spectrum.Bins())
	copy(out, a.spectrum.Levels())
	return out
}

// GetFrequencyForBin returns the centre frequency (Hz) for a given bin index.
func (a *Analyzer) GetFrequencyForBin(binIndex int) float64 {
	return a.spectrum.FrequencyForBin(binIndex) // Immutable after creation, no lock needed.
}

// GetFFTSize returns the configured FFT size (number of points).
func (a *Analyzer) GetFFTSize() int {
	return a.spectrum.fftSize
}

// GetSampleRate returns the configured sample rate (Hz).
func (a *Analyzer) GetSampleRate() float64 {
	return a.spectrum.sampleRate
}

// Close clears the history and smoothing state. The analyser holds no
// external resources.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.history)
	a.spectrum.Reset()
	a.bands = band.Frame{}
	a.fresh = false
	log.Infof("Analysis: Closing Analyzer")
	return nil
}
