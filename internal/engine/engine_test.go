// SPDX-License-Identifier: MIT
package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"ringviz/internal/band"
	"ringviz/internal/config"
)

// scriptedSource hands out its snapshots in order, then reports no new data.
type scriptedSource struct {
	snaps []Snapshot
	next  int
}

func (s *scriptedSource) Snapshot() (Snapshot, bool) {
	if s.next >= len(s.snaps) {
		return Snapshot{}, false
	}
	snap := s.snaps[s.next]
	s.next++
	return snap, true
}

type sinkRecorder struct {
	sent []FrameStats
}

func (s *sinkRecorder) Send(data any) error {
	s.sent = append(s.sent, data.(FrameStats))
	return nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(config.DefaultVisual())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return e
}

func snapshot(bands band.Frame) Snapshot {
	return Snapshot{Bands: bands, Waveform: make([]float64, 256)}
}

func TestEngineEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	sink := &sinkRecorder{}
	e.SetSink(sink)

	src := &scriptedSource{snaps: []Snapshot{snapshot(band.Frame{50, 10, 5, 5})}}
	if err := e.Tick(src); err != nil {
		t.Fatalf("Tick error: %v", err)
	}

	rings := e.Rings()
	if len(rings) != 1 {
		t.Fatalf("expected one ring, got %d", len(rings))
	}
	growth := 2 + 20.0/225*10
	want := Ring{X: 300, Y: 200, Radius: 30 + growth, Growth: growth, Hue: 0}
	if absFloat(rings[0].Growth-want.Growth) > 1e-9 || absFloat(rings[0].Radius-want.Radius) > 1e-9 ||
		rings[0].Hue != want.Hue || rings[0].X != want.X || rings[0].Y != want.Y {
		t.Errorf("ring = %+v, want %+v", rings[0], want)
	}

	stats := e.Stats()
	if stats.Dominant != "bass" || stats.Energy != 50 || !stats.Spawned || stats.Rings != 1 || stats.Frame != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Bands["lowMid"] != 10 {
		t.Errorf("stats bands = %v", stats.Bands)
	}
	if len(sink.sent) != 1 {
		t.Errorf("sink received %d stats, want 1", len(sink.sent))
	}
}

func TestEngineReusesLastSnapshot(t *testing.T) {
	e := newTestEngine(t)
	src := &scriptedSource{snaps: []Snapshot{snapshot(band.Frame{0, 0, 200, 0})}}

	for range 11 {
		if err := e.Tick(src); err != nil {
			t.Fatalf("Tick error: %v", err)
		}
	}

	// Frames 0 and 10 both spawn from the one snapshot.
	rings := e.Rings()
	if len(rings) != 2 {
		t.Fatalf("expected 2 rings from reused data, got %d", len(rings))
	}
	for _, r := range rings {
		if r.Hue != 30 {
			t.Errorf("ring hue = %g, want mid hue 30", r.Hue)
		}
	}

	fresh, stale := e.Counts()
	if fresh != 1 || stale != 10 {
		t.Errorf("counts = (%d, %d), want (1, 10)", fresh, stale)
	}
}

func TestEngineSilentBeforeData(t *testing.T) {
	e := newTestEngine(t)
	for range 20 {
		if err := e.Tick(&scriptedSource{}); err != nil {
			t.Fatalf("Tick error: %v", err)
		}
	}
	if n := len(e.Rings()); n != 0 {
		t.Errorf("expected no rings without data, got %d", n)
	}
	if err := e.Tick(nil); err != nil {
		t.Errorf("Tick(nil) error: %v", err)
	}
}

func TestEngineRingsCulledOverTime(t *testing.T) {
	e := newTestEngine(t)
	src := &scriptedSource{snaps: []Snapshot{snapshot(band.Frame{255, 0, 0, 0})}}
	_ = e.Tick(src)

	silence := &scriptedSource{snaps: []Snapshot{snapshot(band.Frame{})}}
	_ = e.Tick(silence)

	// Radius is 30+12k after k ticks, so the 48th tick takes it past 600.
	for range 45 {
		_ = e.Tick(nil)
	}
	if n := len(e.Rings()); n != 1 {
		t.Fatalf("ring culled early, live = %d", n)
	}
	_ = e.Tick(nil)
	if n := len(e.Rings()); n != 0 {
		t.Errorf("ring should be culled once beyond 600px, live = %d", n)
	}
}

func TestEngineConfigErrors(t *testing.T) {
	t.Run("Incomplete band table", func(t *testing.T) {
		vc := config.DefaultVisual()
		delete(vc.Bands, "highMid")
		_, err := New(vc)
		if !errors.Is(err, band.ErrIncompleteTable) {
			t.Errorf("expected ErrIncompleteTable, got %v", err)
		}
	})

	t.Run("Waveform length on first frame", func(t *testing.T) {
		e := newTestEngine(t)
		src := &scriptedSource{snaps: []Snapshot{{Waveform: make([]float64, 100)}}}
		err := e.Tick(src)
		if !errors.Is(err, ErrBufferLength) {
			t.Errorf("expected ErrBufferLength, got %v", err)
		}
	})
}

func TestEngineRenderIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.Signals().SetStatus("Daft Punk")

	src := &scriptedSource{}
	for i := range 30 {
		wave := make([]float64, 256)
		for j := range wave {
			wave[j] = float64((i+j)%9-4) / 10
		}
		src.snaps = append(src.snaps, Snapshot{Bands: band.Frame{float64(40 + i), 20, 10, 5}, Waveform: wave})
	}
	for range 30 {
		if err := e.Tick(src); err != nil {
			t.Fatal(err)
		}
	}

	first, second := &recorder{}, &recorder{}
	e.Render(first)
	e.Render(second)

	if len(first.cmds) == 0 {
		t.Fatal("no draw calls recorded")
	}
	if strings.Join(first.cmds, "\n") != strings.Join(second.cmds, "\n") {
		t.Error("two renders without a tick produced different draw calls")
	}
	if last := first.cmds[len(first.cmds)-1]; !strings.Contains(last, "Daft Punk") {
		t.Errorf("status line missing, last call = %q", last)
	}
}

func TestSignals(t *testing.T) {
	var s Signals

	if s.Status() != "" {
		t.Errorf("initial status = %q", s.Status())
	}
	if s.TakeResume() {
		t.Error("TakeResume true before any request")
	}

	s.RequestResume()
	s.RequestResume()
	if !s.TakeResume() {
		t.Error("TakeResume false after request")
	}
	if s.TakeResume() {
		t.Error("TakeResume should report true only once")
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetStatus(strings.Repeat("x", i+1))
			s.RequestResume()
		}()
	}
	wg.Wait()
	if n := len(s.Status()); n < 1 || n > 8 {
		t.Errorf("status after concurrent writes = %q", s.Status())
	}
}

func BenchmarkTick(b *testing.B) {
	e, err := New(config.DefaultVisual())
	if err != nil {
		b.Fatal(err)
	}
	snap := snapshot(band.Frame{120, 80, 60, 40})
	src := &scriptedSource{}

	b.ReportAllocs()
	for b.Loop() {
		src.snaps, src.next = append(src.snaps[:0], snap), 0
		_ = e.Tick(src)
	}
}
