// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"ringviz/internal/band"
)

// Core configuration constants that define the boundaries and defaults
// for the capture, analysis and visual engine.
const (
	// Audio capture defaults
	DefaultDeviceID        = MinDeviceID // Default to system default device
	DefaultChannels        = 1           // Mono audio
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultWindowSeconds   = 10          // Seconds of audio kept for recognition

	// Analysis defaults, matching a 64 bin analyser with heavy smoothing
	DefaultBins        = 64
	DefaultSmoothing   = 0.9
	DefaultMinDecibels = -100
	DefaultMaxDecibels = -30
	DefaultFFTWindow   = "Blackman"

	// Canvas defaults
	DefaultWidth  = 600
	DefaultHeight = 400

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
	MaxBins         = 16384  // Largest analyser (fft size 32768)

	// Recognition
	DefaultFallbackStatus = "Song not recognized"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug       bool              `yaml:"debug"`             // Enable debug mode (forces DEBUG logging).
	LogLevel    string            `yaml:"log_level"`         // Logging level (e.g., "debug", "info", "warn", "error").
	Command     string            `yaml:"command,omitempty"` // A one-off command to execute instead of running the visualiser.
	Audio       AudioConfig       `yaml:"audio"`             // Audio capture settings.
	Analysis    AnalysisConfig    `yaml:"analysis"`          // Spectral analysis settings.
	Visual      VisualConfig      `yaml:"visual"`            // Visual engine settings.
	Recording   RecordingConfig   `yaml:"recording"`         // Audio recording settings.
	Transport   TransportConfig   `yaml:"transport"`         // Frame stats transport settings.
	Recognition RecognitionConfig `yaml:"recognition"`       // Song recognition settings.
}

// AudioConfig holds settings related to audio input.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Number of audio frames per callback buffer.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	InputChannels   int     `yaml:"input_channels"`    // Number of input channels to capture (first channel is analysed).
	StartSuspended  bool    `yaml:"start_suspended"`   // Wait for a click (or a resume request) before capturing.
	GateEnabled     bool    `yaml:"gate_enabled"`      // Skip analysis of buffers below the gate threshold.
	GateThreshold   float64 `yaml:"gate_threshold"`    // Gate threshold, 0.0-1.0 of full scale.
	WindowSeconds   float64 `yaml:"window_seconds"`    // Seconds of recent audio kept for recognition.
}

// AnalysisConfig holds settings for the spectral capability.
type AnalysisConfig struct {
	Bins        int                   `yaml:"bins"`         // Number of frequency bins (fft size is twice this, power of 2).
	Smoothing   float64               `yaml:"smoothing"`    // Temporal smoothing of magnitudes (0-1).
	MinDecibels float64               `yaml:"min_decibels"` // Level mapped to energy 0.
	MaxDecibels float64               `yaml:"max_decibels"` // Level mapped to energy 255.
	FFTWindow   string                `yaml:"fft_window"`   // Name of the window function (e.g., "Blackman", "Hann").
	Ranges      map[string][2]float64 `yaml:"ranges"`       // Band name to [low, high] frequency range in Hz.
}

// VisualConfig holds every constant of the visual engine.
type VisualConfig struct {
	Width    int            `yaml:"width"`    // Canvas width in pixels.
	Height   int            `yaml:"height"`   // Canvas height in pixels.
	Bands    band.Table     `yaml:"bands"`    // Per-band gain and hue.
	Rings    RingConfig     `yaml:"rings"`    // Ring spawning.
	Waveform WaveformConfig `yaml:"waveform"` // Waveform smoothing and curve.
	Style    StyleConfig    `yaml:"style"`    // Colours and overlay.
}

// RingConfig holds the ring emitter constants.
type RingConfig struct {
	SpawnPeriod     int     `yaml:"spawn_period"`     // At most one ring per this many frames.
	EnergyThreshold float64 `yaml:"energy_threshold"` // Raw energy must exceed this to spawn.
	StartRadius     float64 `yaml:"start_radius"`     // Radius of a new ring.
	EnergyMin       float64 `yaml:"energy_min"`       // Energy mapped to GrowthMin.
	EnergyMax       float64 `yaml:"energy_max"`       // Energy mapped to GrowthMax.
	GrowthMin       float64 `yaml:"growth_min"`       // Slowest growth, pixels per frame.
	GrowthMax       float64 `yaml:"growth_max"`       // Fastest growth, pixels per frame.
}

// WaveformConfig holds the waveform smoother and curve constants.
type WaveformConfig struct {
	Length    int     `yaml:"length"`    // Samples per waveform buffer.
	Boost     float64 `yaml:"boost"`     // Gain applied before clamping.
	ClampMin  float64 `yaml:"clamp_min"` // Lower clamp bound after boost.
	ClampMax  float64 `yaml:"clamp_max"` // Upper clamp bound after boost.
	Smoothing float64 `yaml:"smoothing"` // Fraction of the gap closed per frame (0-1].
	Stride    int     `yaml:"stride"`    // Draw every Stride-th sample.
	Amplitude float64 `yaml:"amplitude"` // Pixels of vertical offset for a full-scale sample.
}

// StyleConfig holds colours and the overlay.
type StyleConfig struct {
	WashAlpha       int     `yaml:"wash_alpha"`       // Alpha (0-255) of the per-frame background wash.
	RingAlpha       float64 `yaml:"ring_alpha"`       // Ring fill opacity (0-1).
	OutlineAlpha    float64 `yaml:"outline_alpha"`    // Ring outline opacity (0-1).
	OutlineWidth    float64 `yaml:"outline_width"`    // Ring outline width in pixels.
	CurveHue        float64 `yaml:"curve_hue"`        // Waveform curve hue (0-360).
	CurveSaturation float64 `yaml:"curve_saturation"` // Waveform curve saturation (0-1).
	CurveAlpha      float64 `yaml:"curve_alpha"`      // Waveform curve opacity (0-1).
	CurveWidth      float64 `yaml:"curve_width"`      // Waveform curve width in pixels.
	Overlay         string  `yaml:"overlay"`          // PNG drawn centred over the canvas ("" for none).
	OverlayScale    float64 `yaml:"overlay_scale"`    // Scale applied to the overlay image.
	ShowStatus      bool    `yaml:"show_status"`      // Print the status line.
}

// RecordingConfig holds settings related to audio recording functionality.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Enable audio recording to file.
	OutputFile string `yaml:"output_file"` // Output file; generated from the time when empty.
	BitDepth   int    `yaml:"bit_depth"`   // Bit depth for recorded audio (16 or 32).
}

// TransportConfig holds settings related to publishing frame stats.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Broadcast frame stats to websocket clients.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the websocket server (e.g., ":8080").
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send band energies over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between sending UDP packets.
}

// RecognitionConfig holds settings for the song recognition service.
type RecognitionConfig struct {
	Enabled        bool          `yaml:"enabled"`         // Periodically identify the captured audio.
	Host           string        `yaml:"host"`            // Service host, e.g. "identify-eu-west-1.acrcloud.com".
	AccessKey      string        `yaml:"access_key"`      // Account access key.
	AccessSecret   string        `yaml:"access_secret"`   // Account secret used to sign requests.
	Interval       time.Duration `yaml:"interval"`        // Time between identification attempts.
	CaptureSeconds float64       `yaml:"capture_seconds"` // Seconds of audio sent per attempt.
	Timeout        time.Duration `yaml:"timeout"`         // HTTP timeout for one attempt.
	AutoResume     bool          `yaml:"auto_resume"`     // Resume capture without waiting for a click.
	Fallback       string        `yaml:"fallback"`        // Status shown when nothing was identified.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
			InputChannels:   DefaultChannels,
			StartSuspended:  true,
			GateEnabled:     false,
			GateThreshold:   0.001,
			WindowSeconds:   DefaultWindowSeconds,
		},
		Analysis: AnalysisConfig{
			Bins:        DefaultBins,
			Smoothing:   DefaultSmoothing,
			MinDecibels: DefaultMinDecibels,
			MaxDecibels: DefaultMaxDecibels,
			FFTWindow:   DefaultFFTWindow,
			Ranges: map[string][2]float64{
				"bass":    {20, 140},
				"lowMid":  {140, 400},
				"mid":     {400, 2600},
				"highMid": {2600, 5200},
			},
		},
		Visual: DefaultVisual(),
		Recording: RecordingConfig{
			Enabled:  false,
			BitDepth: 16,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddress: ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  33 * time.Millisecond, // ~30Hz.
		},
		Recognition: RecognitionConfig{
			Enabled:        false,
			Interval:       20 * time.Second,
			CaptureSeconds: 8,
			Timeout:        10 * time.Second,
			AutoResume:     false,
			Fallback:       DefaultFallbackStatus,
		},
	}
}

// DefaultVisual returns the stock visual engine configuration.
func DefaultVisual() VisualConfig {
	return VisualConfig{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Bands:  band.DefaultTable(),
		Rings: RingConfig{
			SpawnPeriod:     10,
			EnergyThreshold: 30,
			StartRadius:     30,
			EnergyMin:       30,
			EnergyMax:       255,
			GrowthMin:       2,
			GrowthMax:       12,
		},
		Waveform: WaveformConfig{
			Length:    256,
			Boost:     2.5,
			ClampMin:  -1,
			ClampMax:  1,
			Smoothing: 0.35,
			Stride:    4,
			Amplitude: 100,
		},
		Style: StyleConfig{
			WashAlpha:       10,
			RingAlpha:       0.10,
			OutlineAlpha:    0.80,
			OutlineWidth:    8,
			CurveHue:        45,
			CurveSaturation: 0.6,
			CurveAlpha:      0.9,
			CurveWidth:      2,
			Overlay:         "",
			OverlayScale:    1.5,
			ShowStatus:      true,
		},
	}
}
