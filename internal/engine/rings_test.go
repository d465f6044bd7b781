// SPDX-License-Identifier: MIT
package engine

import (
	"testing"

	"ringviz/internal/band"
	"ringviz/internal/config"
)

func newTestEmitter(t testing.TB) *Emitter {
	t.Helper()
	return NewEmitter(config.DefaultVisual().Rings, defaultSettings(t))
}

func TestEmitterGrowth(t *testing.T) {
	tests := []struct {
		energy float64
		want   float64
	}{
		{0, 2},    // Below domain, clamped
		{30, 2},   // Domain start
		{50, 2 + 20.0/225*10},
		{142.5, 7}, // Midpoint
		{255, 12},  // Domain end
		{500, 12},  // Above domain, clamped
	}

	e := newTestEmitter(t)
	for _, tt := range tests {
		t.Run(formatFloat(tt.energy), func(t *testing.T) {
			if got := e.Growth(tt.energy); absFloat(got-tt.want) > 1e-9 {
				t.Errorf("Growth(%g) = %g, want %g", tt.energy, got, tt.want)
			}
		})
	}
}

func TestEmitterSpawnGate(t *testing.T) {
	e := newTestEmitter(t)

	var rings []Ring
	var spawnFrames []uint64
	for range 100 {
		frame := e.Frame()
		before := len(rings)
		rings = e.Emit(rings, band.Bass, 200, 300, 200)
		if len(rings) > before {
			spawnFrames = append(spawnFrames, frame)
		}
	}

	if len(spawnFrames) != 10 {
		t.Fatalf("expected 10 spawns in 100 frames, got %d (%v)", len(spawnFrames), spawnFrames)
	}
	for i := 1; i < len(spawnFrames); i++ {
		if gap := spawnFrames[i] - spawnFrames[i-1]; gap < 10 {
			t.Errorf("spawns at frames %d and %d are closer than the gate period", spawnFrames[i-1], spawnFrames[i])
		}
	}
	if e.Frame() != 100 {
		t.Errorf("frame counter = %d, want 100", e.Frame())
	}
}

func TestEmitterThreshold(t *testing.T) {
	tests := []struct {
		desc   string
		energy float64
		spawn  bool
	}{
		{"At threshold", 30, false},
		{"Below threshold", 12, false},
		{"Just above threshold", 30.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			e := newTestEmitter(t)
			rings := e.Emit(nil, band.Mid, tt.energy, 0, 0)
			if (len(rings) == 1) != tt.spawn {
				t.Errorf("Emit(energy=%g) spawned %d rings, want spawn=%v", tt.energy, len(rings), tt.spawn)
			}
			if e.Frame() != 1 {
				t.Errorf("counter must advance even without a spawn, got %d", e.Frame())
			}
		})
	}
}

func TestEmitterRingAttributes(t *testing.T) {
	e := newTestEmitter(t)
	rings := e.Emit(nil, band.HighMid, 255, 300, 200)
	if len(rings) != 1 {
		t.Fatalf("expected one ring, got %d", len(rings))
	}

	want := Ring{X: 300, Y: 200, Radius: 30, Growth: 12, Hue: 45}
	if rings[0] != want {
		t.Errorf("ring = %+v, want %+v", rings[0], want)
	}
}

func TestAdvanceCull(t *testing.T) {
	rings := []Ring{{Radius: 30, Growth: 2}}

	steps := 0
	for len(rings) > 0 {
		rings = Advance(rings, 800, 600)
		steps++
		if steps > 1000 {
			t.Fatal("ring never culled")
		}
	}

	// 30 + 2*385 = 800 is not beyond the limit; step 386 takes it to 802.
	if steps != 386 {
		t.Errorf("ring culled on step %d, want 386", steps)
	}
}

func TestAdvanceKeepsOrder(t *testing.T) {
	rings := []Ring{
		{Radius: 100, Growth: 1, Hue: 1},
		{Radius: 395, Growth: 10, Hue: 2}, // Culled: 405 > 400
		{Radius: 50, Growth: 5, Hue: 3},
		{Radius: 400, Growth: 0.5, Hue: 4}, // Culled
		{Radius: 30, Growth: 2, Hue: 5},
	}

	got := Advance(rings, 400, 300)
	want := []Ring{
		{Radius: 101, Growth: 1, Hue: 1},
		{Radius: 55, Growth: 5, Hue: 3},
		{Radius: 32, Growth: 2, Hue: 5},
	}

	if len(got) != len(want) {
		t.Fatalf("Advance kept %d rings, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ring %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAdvanceRadiusStrictlyIncreasing(t *testing.T) {
	e := newTestEmitter(t)
	rings := e.Emit(nil, band.Bass, 31, 0, 0)
	growth := rings[0].Growth
	prev := rings[0].Radius
	for len(rings) > 0 {
		rings = Advance(rings, 200, 100)
		if len(rings) == 0 {
			break
		}
		if rings[0].Radius <= prev {
			t.Fatalf("radius went from %g to %g", prev, rings[0].Radius)
		}
		if rings[0].Growth != growth {
			t.Fatalf("growth changed from %g to %g", growth, rings[0].Growth)
		}
		prev = rings[0].Radius
	}
}

func BenchmarkAdvance(b *testing.B) {
	template := make([]Ring, 64)
	for i := range template {
		template[i] = Ring{Radius: float64(i * 5), Growth: 2}
	}
	rings := make([]Ring, len(template))

	b.ReportAllocs()
	for b.Loop() {
		rings = rings[:len(template)]
		copy(rings, template)
		rings = Advance(rings, 800, 600)
	}
}
