// SPDX-License-Identifier: MIT
/*
Package audio implements real-time capture for the visualiser with:
- PortAudio input stream, opened suspended and resumed once on request
- Noise gate with branchless implementation
- Fan-out of the first channel to the registered analysis processors
- A capture window of recent audio for song recognition
- WAV recording with atomic state management

Thread Safety:
- Uses atomic operations for state management
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"ringviz/internal/analysis"
	"ringviz/internal/config"
	"ringviz/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

var ErrClosed = errors.New("audio engine closed")

type Engine struct {
	// Core configuration.
	config    config.AudioConfig
	recording config.RecordingConfig

	// Audio input handling.
	inputBuffer  []int32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Analysis fan-out; processors receive the first channel only.
	processors []analysis.AudioProcessor
	monoInput  []int32
	window     *Window

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0-2147483647)

	// Resume state: the stream is opened at most once.
	resumeOnce sync.Once
	resumeErr  error
	started    chan struct{}
	closed     atomic.Bool

	// Test hook replacing the PortAudio stream.
	openStream func() error

	// Recording state and buffers.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine resolves the input device and prepares the buffers. PortAudio
// must already be initialised. Nothing is captured until Resume.
func NewEngine(cfg *config.Config, processors ...analysis.AudioProcessor) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	e := newEngine(cfg.Audio, cfg.Recording, processors...)
	e.inputDevice = inputDevice
	if e.config.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	log.Infof("Audio: Using input device '%s' (Channels: %d, SampleRate: %.0f Hz, Buffer: %d frames, Latency: %v)",
		inputDevice.Name, e.config.InputChannels, e.config.SampleRate, e.config.FramesPerBuffer, e.inputLatency)

	return e, nil
}

func newEngine(ac config.AudioConfig, rc config.RecordingConfig, processors ...analysis.AudioProcessor) *Engine {
	e := &Engine{
		config:      ac,
		recording:   rc,
		inputBuffer: make([]int32, ac.FramesPerBuffer*ac.InputChannels),
		processors:  processors,
		monoInput:   make([]int32, ac.FramesPerBuffer),
		window:      NewWindow(ac.SampleRate, ac.WindowSeconds),
		gateEnabled: ac.GateEnabled,
		started:     make(chan struct{}),
	}
	e.SetGateThreshold(ac.GateThreshold)
	e.openStream = e.startInputStream
	return e
}

// Window returns the capture window fed by the input stream.
func (e *Engine) Window() *Window {
	return e.window
}

// Start begins capturing immediately unless the engine is configured to
// start suspended, in which case it waits for Resume.
func (e *Engine) Start() error {
	if e.config.StartSuspended {
		log.Infof("Audio: Capture suspended until resumed")
		return nil
	}
	return e.Resume()
}

// Resume opens and starts the input stream. Only the first call does any
// work; later calls return the first call's result.
func (e *Engine) Resume() error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.resumeOnce.Do(func() {
		if err := e.openStream(); err != nil {
			e.resumeErr = fmt.Errorf("failed to start input stream: %w", err)
			return
		}
		log.Infof("Audio: Capture resumed")
		close(e.started)
	})
	return e.resumeErr
}

// Running reports whether the input stream has been started.
func (e *Engine) Running() bool {
	select {
	case <-e.started:
		return !e.closed.Load()
	default:
		return false
	}
}

// Started is closed once the input stream is running.
func (e *Engine) Started() <-chan struct{} {
	return e.started
}

// EncodeWAV returns up to the last seconds of captured audio as a WAV file.
func (e *Engine) EncodeWAV(seconds float64) ([]byte, error) {
	return e.window.EncodeWAV(seconds)
}

func (e *Engine) startInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.InputChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return err
	}

	return nil
}

func (e *Engine) stopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer[:n])
	e.writeRecording(e.inputBuffer[:n])
}

// processBuffer extracts the first channel, feeds the capture window and,
// when the gate is open, every processor.
// Performance Critical (Hot Path):
// - No allocations
// - Branchless noise gate implementation
func (e *Engine) processBuffer(buffer []int32) {
	mono := buffer
	if channels := e.config.InputChannels; channels > 1 {
		frames := min(len(buffer)/channels, len(e.monoInput))
		for i := range frames {
			e.monoInput[i] = buffer[i*channels]
		}
		mono = e.monoInput[:frames]
	}

	e.window.Write(mono)

	if !e.gateOpen(mono) {
		return
	}
	for _, p := range e.processors {
		p.Process(mono)
	}
}

// Close stops recording and the input stream, then closes any processors
// that hold resources.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if atomic.LoadInt32(&e.isRecording) == 1 {
		errs = append(errs, e.StopRecording())
	}
	errs = append(errs, e.stopInputStream())
	for _, p := range e.processors {
		if c, ok := p.(analysis.ClosableProcessor); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
