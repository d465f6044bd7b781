// SPDX-License-Identifier: MIT
package engine

import (
	"errors"
	"math"
	"testing"

	"ringviz/internal/config"
)

func testWaveformConfig(length int) config.WaveformConfig {
	wc := config.DefaultVisual().Waveform
	wc.Length = length
	return wc
}

func TestSmootherFirstFrame(t *testing.T) {
	s := NewSmoother(testWaveformConfig(4))

	for i, st := range s.State() {
		if st.Valid {
			t.Errorf("sample %d should start uninitialised", i)
		}
	}

	if err := s.Apply([]float64{0, 0.2, -0.3, 0.5}); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	// First frame takes the boosted, clamped value directly.
	want := []float64{0, 0.5, -0.75, 1}
	for i, w := range want {
		st := s.State()[i]
		if !st.Valid {
			t.Errorf("sample %d should be initialised", i)
		}
		if absFloat(st.Value-w) > 1e-12 {
			t.Errorf("sample %d = %g, want %g", i, st.Value, w)
		}
	}
}

func TestSmootherBoostThenClamp(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0.5, 1},   // 1.25 clamps to 1
		{-0.9, -1}, // -2.25 clamps to -1
		{0.3, 0.75},
		{2, 1}, // Out-of-range input still clamps
	}

	for _, tt := range tests {
		t.Run(formatFloat(tt.raw), func(t *testing.T) {
			s := NewSmoother(testWaveformConfig(1))
			if err := s.Apply([]float64{tt.raw}); err != nil {
				t.Fatal(err)
			}
			if got := s.Value(0); absFloat(got-tt.want) > 1e-12 {
				t.Errorf("Apply(%g) = %g, want %g", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSmootherLerp(t *testing.T) {
	s := NewSmoother(testWaveformConfig(1))
	_ = s.Apply([]float64{0})
	_ = s.Apply([]float64{0.4}) // boosted to 1

	if got, want := s.Value(0), 0.35; absFloat(got-want) > 1e-12 {
		t.Errorf("after one step = %g, want %g", got, want)
	}
}

// TestSmootherConvergence sustains a constant input and checks the error
// shrinks monotonically within the (1-factor)^n bound.
func TestSmootherConvergence(t *testing.T) {
	const target = 0.8 // raw 0.32 boosted by 2.5
	s := NewSmoother(testWaveformConfig(1))
	_ = s.Apply([]float64{-0.4}) // initial value -1

	initial := absFloat(s.Value(0) - target)
	prev := initial
	for n := 1; n <= 40; n++ {
		if err := s.Apply([]float64{0.32}); err != nil {
			t.Fatal(err)
		}
		v := s.Value(0)
		diff := absFloat(v - target)
		if diff > prev {
			t.Fatalf("frame %d: error grew from %g to %g", n, prev, diff)
		}
		if v > target+1e-12 {
			t.Fatalf("frame %d: overshoot to %g", n, v)
		}
		if bound := initial * math.Pow(1-0.35, float64(n)); diff > bound+1e-12 {
			t.Fatalf("frame %d: error %g above bound %g", n, diff, bound)
		}
		prev = diff
	}
}

func TestSmootherZeroIsNotUninitialised(t *testing.T) {
	s := NewSmoother(testWaveformConfig(1))
	_ = s.Apply([]float64{0})
	_ = s.Apply([]float64{0.4})

	// A legitimate zero must be eased from, not replaced.
	if got := s.Value(0); got == 1 {
		t.Error("zero sample treated as uninitialised")
	}
}

func TestSmootherLengthMismatch(t *testing.T) {
	s := NewSmoother(testWaveformConfig(8))

	err := s.Apply(make([]float64, 4))
	if !errors.Is(err, ErrBufferLength) {
		t.Fatalf("expected ErrBufferLength on first frame, got %v", err)
	}

	if err := s.Apply([]float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	// A later change of length resets rather than reusing a prefix.
	if err := s.Apply([]float64{0, 0, 0}); err != nil {
		t.Fatalf("Apply after resize error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("state length = %d, want 3", s.Len())
	}
	for i := range 3 {
		if s.Value(i) != 0 {
			t.Errorf("sample %d = %g, want 0 (fresh state)", i, s.Value(i))
		}
	}
}

func TestSmootherApplyZeroAllocs(t *testing.T) {
	s := NewSmoother(testWaveformConfig(256))
	buf := make([]float64, 256)
	for i := range buf {
		buf[i] = math.Sin(float64(i) / 10)
	}
	_ = s.Apply(buf)

	allocs := testing.AllocsPerRun(100, func() {
		_ = s.Apply(buf)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in smoother hot path, got %.1f", allocs)
	}
}
