// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"ringviz/internal/log"
	"ringviz/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc defines the type for selecting an FFT window function.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

var (
	ErrFFTSize    = errors.New("fft size must be a power of 2")
	ErrSampleRate = errors.New("sample rate must be positive")
	ErrDecibels   = errors.New("min decibels must be below max decibels")
)

// Spectrum turns a block of time-domain samples into a byte-scaled magnitude
// spectrum the way a browser analyser node does: window, FFT, normalise by
// the FFT size, smooth over time, convert to dB and map [minDB, maxDB] onto
// [0, 255].
//
// A Spectrum is not safe for concurrent use; Analyzer serialises access.
type Spectrum struct {
	fftCalculator *fourier.FFT
	fftSize       int
	sampleRate    float64
	smoothing     float64
	minDB, maxDB  float64

	// Pre-allocated workspace.
	window    []float64
	input     []float64
	fftOutput []complex128
	smoothed  []float64 // time-smoothed linear magnitudes
	levels    []float64 // byte-scaled output, fftSize/2 bins
}

// NewSpectrum creates a spectrum calculator for blocks of fftSize samples.
func NewSpectrum(fftSize int, sampleRate float64, windowType WindowFunc, smoothing, minDB, maxDB float64) (*Spectrum, error) {
	if !bitint.IsPowerOfTwo(fftSize) || fftSize < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrFFTSize, fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w, got %f", ErrSampleRate, sampleRate)
	}
	if minDB >= maxDB {
		return nil, fmt.Errorf("%w (%g >= %g)", ErrDecibels, minDB, maxDB)
	}

	windowCoeffs := make([]float64, fftSize)
	applyWindow(windowCoeffs, windowType)

	// FFT output size for real input is N/2 + 1; the Nyquist bin is dropped.
	bins := fftSize / 2

	return &Spectrum{
		fftCalculator: fourier.NewFFT(fftSize),
		fftSize:       fftSize,
		sampleRate:    sampleRate,
		smoothing:     smoothing,
		minDB:         minDB,
		maxDB:         maxDB,
		window:        windowCoeffs,
		input:         make([]float64, fftSize),
		fftOutput:     make([]complex128, bins+1),
		smoothed:      make([]float64, bins),
		levels:        make([]float64, bins),
	}, nil
}

// Compute analyses one block of samples, oldest first. Shorter blocks are
// zero-padded and longer ones truncated.
func (s *Spectrum) Compute(samples []float64) {
	for i := range s.fftSize {
		if i < len(samples) {
			s.input[i] = samples[i] * s.window[i]
		} else {
			s.input[i] = 0
		}
	}

	s.fftCalculator.Coefficients(s.fftOutput, s.input)

	scale := 255 / (s.maxDB - s.minDB)
	norm := 1 / float64(s.fftSize)
	for i := range s.smoothed {
		mag := cmplx.Abs(s.fftOutput[i]) * norm
		v := s.smoothing*s.smoothed[i] + (1-s.smoothing)*mag
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		s.smoothed[i] = v

		// log10(0) is -Inf, which maps below the floor and clamps to 0.
		db := 20 * math.Log10(v)
		s.levels[i] = math.Max(0, math.Min(255, math.Floor(scale*(db-s.minDB))))
	}
}

// Levels returns the byte-scaled spectrum. The slice is owned by s and is
// overwritten by the next Compute.
func (s *Spectrum) Levels() []float64 {
	return s.levels
}

// Bins returns the number of frequency bins in the output.
func (s *Spectrum) Bins() int {
	return len(s.levels)
}

// FrequencyForBin returns the centre frequency (Hz) of bin i, or 0 when i
// is out of range.
func (s *Spectrum) FrequencyForBin(i int) float64 {
	if i < 0 || i >= len(s.levels) {
		return 0
	}
	return float64(i) * s.sampleRate / float64(s.fftSize)
}

// Reset clears the temporal smoothing state.
func (s *Spectrum) Reset() {
	clear(s.smoothed)
	clear(s.levels)
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

func (w WindowFunc) String() string {
	switch w {
	case BartlettHann:
		return "BartlettHann"
	case Blackman:
		return "Blackman"
	case BlackmanNuttall:
		return "BlackmanNuttall"
	case Hann:
		return "Hann"
	case Hamming:
		return "Hamming"
	case Lanczos:
		return "Lanczos"
	case Nuttall:
		return "Nuttall"
	default:
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
}

// applyWindow fills coeffs with the selected window. Unknown types fall back
// to Hann.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	// The gonum window functions scale their input in place.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		log.Warnf("Analysis: Unknown window function type %d, defaulting to Hann", windowType)
		window.Hann(coeffs)
	}
}
