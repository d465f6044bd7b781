// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"sync"
)

// MockSink records everything sent to it instead of transmitting. It
// satisfies the engine's stats sink and the transport interface, and is safe
// for concurrent use.
type MockSink struct {
	mu   sync.Mutex
	sent []any
	Err  error // returned from every Send when set
}

// Send stores the data for later inspection.
func (m *MockSink) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return m.Err
}

// Sent returns a copy of everything received so far.
func (m *MockSink) Sent() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.sent))
	copy(out, m.sent)
	return out
}

// Last returns the most recent value, or nil when nothing was sent.
func (m *MockSink) Last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return m.sent[len(m.sent)-1]
}

func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * 0.9)
	}
	return buffer
}

// Interleave repeats every mono sample across channels, the layout PortAudio
// hands to a multi-channel input callback.
func Interleave(mono []int32, channels int) []int32 {
	out := make([]int32, len(mono)*channels)
	for i, s := range mono {
		for c := range channels {
			out[i*channels+c] = s
		}
	}
	return out
}

// Normalize converts int32 samples to floats in [-1.0, 1.0).
func Normalize(in []int32) []float64 {
	out := make([]float64, len(in))
	for i, s := range in {
		out[i] = float64(s) / float64(0x80000000)
	}
	return out
}

func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
