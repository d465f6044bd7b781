// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"ringviz/pkg/bitint"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrWindowEmpty = errors.New("capture window holds no audio")

// Window keeps the most recent mono samples of the input stream so that a
// slower consumer, such as song recognition, can take a clip without
// touching the audio callback's buffers.
type Window struct {
	mu         sync.Mutex
	samples    []int32
	mask       int
	pos        int // next write index
	filled     int
	sampleRate int
}

// NewWindow creates a window holding at least seconds of audio.
func NewWindow(sampleRate, seconds float64) *Window {
	size := bitint.NextPowerOfTwo(int(sampleRate * seconds))
	return &Window{
		samples:    make([]int32, size),
		mask:       bitint.Mask(size),
		sampleRate: int(sampleRate),
	}
}

// Write appends mono samples, overwriting the oldest. It does not allocate.
func (w *Window) Write(in []int32) {
	w.mu.Lock()
	for _, s := range in {
		w.samples[w.pos] = s
		w.pos = (w.pos + 1) & w.mask
	}
	w.filled = min(w.filled+len(in), len(w.samples))
	w.mu.Unlock()
}

// Filled returns how many samples have been written, up to the capacity.
func (w *Window) Filled() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filled
}

// Duration returns the seconds of audio currently held.
func (w *Window) Duration() float64 {
	return float64(w.Filled()) / float64(w.sampleRate)
}

// Latest returns a copy of up to n of the most recent samples, oldest first.
func (w *Window) Latest(n int) []int32 {
	w.mu.Lock()
	defer w.mu.Unlock()

	n = min(n, w.filled)
	out := make([]int32, n)
	start := w.pos - n
	for i := range out {
		out[i] = w.samples[(start+i)&w.mask]
	}
	return out
}

// EncodeWAV returns up to the last seconds of audio as a 16-bit mono WAV
// file.
func (w *Window) EncodeWAV(seconds float64) ([]byte, error) {
	clip := w.Latest(int(seconds * float64(w.sampleRate)))
	if len(clip) == 0 {
		return nil, ErrWindowEmpty
	}

	// The WAV encoder needs a seekable writer to patch the header sizes.
	f, err := os.CreateTemp("", "ringviz-clip-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create clip file: %w", err)
	}
	defer os.Remove(f.Name())

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: w.sampleRate},
		Data:           make([]int, len(clip)),
		SourceBitDepth: 16,
	}
	for i, s := range clip {
		buf.Data[i] = int(s >> 16)
	}

	enc := wav.NewEncoder(f, w.sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to encode clip: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to finish clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Name())
}
