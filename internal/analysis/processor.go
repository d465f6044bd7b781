// SPDX-License-Identifier: MIT
package analysis

// Defines the standard interface for components that process audio buffers.
type AudioProcessor interface {
	// Process analyzes the given mono input buffer. Implementations should be efficient as
	// this is called from within the real-time audio callback.
	Process(inputBuffer []int32)
}

// ClosableProcessor combines AudioProcessor with a Close method for resource cleanup.
type ClosableProcessor interface {
	AudioProcessor
	Close() error // Close releases any resources held by the processor.
}

// SpectrumProvider gives read access to the latest byte-scaled spectrum, for
// consumers such as transports that only need the frequency view.
type SpectrumProvider interface {
	GetSpectrum() []float64                  // GetSpectrum returns a copy of the latest spectrum.
	GetFrequencyForBin(binIndex int) float64 // GetFrequencyForBin returns the centre frequency (Hz) of a bin.
	GetFFTSize() int                         // GetFFTSize returns the size (number of points) of the FFT.
	GetSampleRate() float64                  // GetSampleRate returns the sample rate used for the analysis.
}
