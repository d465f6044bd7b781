// SPDX-License-Identifier: MIT
/*
Package engine implements the audio-reactive visual engine: the per-frame
pipeline that turns band energies and waveform samples into rings and a
smoothed curve.

One call to Tick is one frame:

	snapshot -> Weight -> Dominant -> Emitter.Emit -> Advance -> Smoother.Apply

Render draws the result without modifying it.

Thread Safety:
  - Tick and Render are serialised by a single mutex held for the whole call,
    so the rings, the frame counter and the smoothing state have one writer.
  - Signals may be used from any goroutine.
*/
package engine

import (
	"fmt"
	"sync"

	"ringviz/internal/band"
	"ringviz/internal/config"
	"ringviz/internal/log"
)

// Snapshot is the spectral capability's output for one frame: raw band
// energies in [0, 255] and the raw waveform in [-1, 1].
type Snapshot struct {
	Bands    band.Frame
	Waveform []float64
}

// Source provides the latest snapshot without blocking. ok is false when no
// new data arrived since the previous call.
type Source interface {
	Snapshot() (snap Snapshot, ok bool)
}

// StatsSink receives per-frame statistics. Implementations must not block;
// the transport package's Send methods satisfy this.
type StatsSink interface {
	Send(data any) error
}

// FrameStats summarises one tick for transports and logs.
type FrameStats struct {
	Type     string             `json:"type"`
	Frame    uint64             `json:"frame"`
	Bands    map[string]float64 `json:"bands"`
	Dominant string             `json:"dominant"`
	Energy   float64            `json:"energy"`
	Rings    int                `json:"rings"`
	Spawned  bool               `json:"spawned"`
}

type Engine struct {
	mu sync.Mutex

	width, height float64
	bands         band.Settings

	emitter  *Emitter
	smoother *Smoother
	renderer *Renderer
	signals  *Signals
	sink     StatsSink

	rings []Ring
	last  Snapshot
	fresh uint64 // ticks that received new data
	stale uint64 // ticks that reused the last snapshot
	stats FrameStats
}

// New validates the visual configuration and builds an engine. A band table
// that does not cover every band is rejected here, before the first frame.
func New(vc config.VisualConfig) (*Engine, error) {
	settings, err := vc.Bands.Resolve()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if err := vc.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	log.Infof("Engine: Initializing (Canvas: %dx%d, Gate: %d frames, Threshold: %.0f, Waveform: %d samples)",
		vc.Width, vc.Height, vc.Rings.SpawnPeriod, vc.Rings.EnergyThreshold, vc.Waveform.Length)

	return &Engine{
		width:    float64(vc.Width),
		height:   float64(vc.Height),
		bands:    settings,
		emitter:  NewEmitter(vc.Rings, settings),
		smoother: NewSmoother(vc.Waveform),
		renderer: NewRenderer(vc),
		signals:  &Signals{},
		last: Snapshot{
			Waveform: make([]float64, vc.Waveform.Length),
		},
	}, nil
}

// Signals returns the engine's cross-task notification slots.
func (e *Engine) Signals() *Signals {
	return e.signals
}

// SetSink installs a receiver for per-frame statistics. nil disables it.
func (e *Engine) SetSink(sink StatsSink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// Tick advances the engine by one frame using the latest data from src.
// When src has nothing new the previous snapshot is reused.
func (e *Engine) Tick(src Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if src != nil {
		if snap, ok := src.Snapshot(); ok {
			e.last = snap
			e.fresh++
		} else {
			e.stale++
		}
	}

	weighted := Weight(e.last.Bands, e.bands)
	id, energy := Dominant(e.last.Bands, weighted)

	frame := e.emitter.Frame()
	before := len(e.rings)
	e.rings = e.emitter.Emit(e.rings, id, energy, e.width/2, e.height/2)
	spawned := len(e.rings) > before
	e.rings = Advance(e.rings, e.width, e.height)

	if err := e.smoother.Apply(e.last.Waveform); err != nil {
		return err
	}

	e.stats = FrameStats{
		Type:     "frame",
		Frame:    frame,
		Bands:    bandMap(e.last.Bands),
		Dominant: id.String(),
		Energy:   energy,
		Rings:    len(e.rings),
		Spawned:  spawned,
	}
	if spawned {
		log.Debugf("Engine: frame %d spawned ring (band: %s, energy: %.1f, live: %d)", frame, id, energy, len(e.rings))
	}

	if e.sink != nil {
		if err := e.sink.Send(e.stats); err != nil {
			log.Warnf("Engine: Error sending frame stats: %v", err)
		}
	}
	return nil
}

// Render draws the current state onto c.
func (e *Engine) Render(c Canvas) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.renderer.Render(c, e.rings, e.smoother.State(), e.signals.Status())
}

// Stats returns the statistics of the most recent tick.
func (e *Engine) Stats() FrameStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Rings returns a copy of the live rings, oldest first.
func (e *Engine) Rings() []Ring {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Ring, len(e.rings))
	copy(out, e.rings)
	return out
}

// Counts returns how many ticks received fresh data and how many reused the
// previous snapshot.
func (e *Engine) Counts() (fresh, stale uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fresh, e.stale
}

func bandMap(f band.Frame) map[string]float64 {
	m := make(map[string]float64, band.Count)
	for _, id := range band.All {
		m[id.String()] = f[id]
	}
	return m
}
