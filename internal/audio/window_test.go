// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-audio/wav"
)

func TestWindowLatest(t *testing.T) {
	w := NewWindow(8, 1) // capacity 8 samples

	if got := w.Latest(4); len(got) != 0 {
		t.Errorf("empty window returned %v", got)
	}

	w.Write([]int32{1, 2, 3})
	if got := w.Latest(10); !equalInt32(got, []int32{1, 2, 3}) {
		t.Errorf("Latest(10) = %v, want [1 2 3]", got)
	}

	// Wrap past the capacity.
	w.Write([]int32{4, 5, 6, 7, 8, 9, 10})
	if w.Filled() != 8 {
		t.Errorf("Filled = %d, want 8", w.Filled())
	}
	if got := w.Latest(8); !equalInt32(got, []int32{3, 4, 5, 6, 7, 8, 9, 10}) {
		t.Errorf("Latest(8) = %v, want [3..10]", got)
	}
	if got := w.Latest(2); !equalInt32(got, []int32{9, 10}) {
		t.Errorf("Latest(2) = %v, want [9 10]", got)
	}
	if w.Duration() != 1 {
		t.Errorf("Duration = %g, want 1", w.Duration())
	}
}

func TestWindowEncodeWAV(t *testing.T) {
	w := NewWindow(testSampleRate, 2)
	for range 100 {
		w.Write(loudBuffer)
	}

	data, err := w.EncodeWAV(1)
	if err != nil {
		t.Fatalf("EncodeWAV error: %v", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		t.Fatal("clip is not a valid WAV file")
	}
	if dec.BitDepth != 16 || dec.NumChans != 1 || dec.SampleRate != testSampleRate {
		t.Errorf("format = %d-bit %d ch %d Hz, want 16-bit mono %d Hz", dec.BitDepth, dec.NumChans, dec.SampleRate, testSampleRate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(buf.Data) != testSampleRate {
		t.Errorf("clip has %d samples, want %d", len(buf.Data), testSampleRate)
	}
}

func TestWindowEncodeWAVShortAndEmpty(t *testing.T) {
	w := NewWindow(testSampleRate, 2)

	if _, err := w.EncodeWAV(1); !errors.Is(err, ErrWindowEmpty) {
		t.Errorf("empty window error = %v, want ErrWindowEmpty", err)
	}

	// Less audio than asked for yields what there is.
	w.Write(testBuffer)
	data, err := w.EncodeWAV(5)
	if err != nil {
		t.Fatalf("EncodeWAV error: %v", err)
	}
	buf, err := wav.NewDecoder(bytes.NewReader(data)).FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf.Data) != len(testBuffer) {
		t.Errorf("clip has %d samples, want %d", len(buf.Data), len(testBuffer))
	}
}

func TestWindowWriteZeroAllocs(t *testing.T) {
	w := NewWindow(testSampleRate, 1)
	allocs := testing.AllocsPerRun(100, func() {
		w.Write(testBuffer)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Window.Write, got %.1f", allocs)
	}
}

func equalInt32(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
