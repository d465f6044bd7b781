// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ringviz/internal/band"
	"ringviz/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{
			"config.yaml",
			"ringviz.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the whole configuration. Every error found is reported,
// joined, so a bad file can be fixed in one pass.
func (c *Config) Validate() error {
	var errs []error

	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %.0f out of range [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d out of range (0, %d]", c.Audio.FramesPerBuffer, MaxBufferFrames))
	}
	if c.Audio.InputChannels < 1 {
		errs = append(errs, fmt.Errorf("audio.input_channels must be at least 1, got %d", c.Audio.InputChannels))
	}
	if c.Audio.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device %d is invalid", c.Audio.InputDevice))
	}
	if c.Audio.GateThreshold < 0 || c.Audio.GateThreshold > 1 {
		errs = append(errs, fmt.Errorf("audio.gate_threshold must be in [0, 1], got %g", c.Audio.GateThreshold))
	}
	if c.Audio.WindowSeconds < 0 {
		errs = append(errs, fmt.Errorf("audio.window_seconds must not be negative"))
	}

	if err := c.Analysis.Validate(c.Audio.SampleRate); err != nil {
		errs = append(errs, err)
	}
	if err := c.Visual.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Recording.BitDepth != 16 && c.Recording.BitDepth != 32 {
		errs = append(errs, fmt.Errorf("recording.bit_depth must be 16 or 32, got %d", c.Recording.BitDepth))
	}

	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress))
		}
		if c.Transport.UDPSendInterval <= 0 {
			errs = append(errs, fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		errs = append(errs, fmt.Errorf("transport.websocket_address must be set when websocket is enabled"))
	}

	if c.Recognition.Enabled {
		r := c.Recognition
		if r.Host == "" || r.AccessKey == "" || r.AccessSecret == "" {
			errs = append(errs, fmt.Errorf("recognition.host, access_key and access_secret must be set when recognition is enabled"))
		}
		if r.Interval <= 0 || r.CaptureSeconds <= 0 {
			errs = append(errs, fmt.Errorf("recognition.interval and capture_seconds must be positive"))
		}
		if r.CaptureSeconds > c.Audio.WindowSeconds {
			errs = append(errs, fmt.Errorf("recognition.capture_seconds (%g) exceeds audio.window_seconds (%g)", r.CaptureSeconds, c.Audio.WindowSeconds))
		}
	}

	return errors.Join(errs...)
}

// Validate checks the analyser settings against the capture sample rate.
func (a *AnalysisConfig) Validate(sampleRate float64) error {
	var errs []error
	if !bitint.IsPowerOfTwo(a.Bins) || a.Bins > MaxBins {
		errs = append(errs, fmt.Errorf("analysis.bins must be a power of 2 no larger than %d, got %d", MaxBins, a.Bins))
	}
	if a.Smoothing < 0 || a.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("analysis.smoothing must be in [0, 1), got %g", a.Smoothing))
	}
	if a.MinDecibels >= a.MaxDecibels {
		errs = append(errs, fmt.Errorf("analysis.min_decibels must be below max_decibels"))
	}
	if _, err := a.ResolveRanges(sampleRate); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ResolveRanges returns the band frequency ranges indexed by band. Every band
// must be present with 0 <= low < high <= Nyquist.
func (a *AnalysisConfig) ResolveRanges(sampleRate float64) ([band.Count][2]float64, error) {
	var out [band.Count][2]float64
	var seen [band.Count]bool
	for name, r := range a.Ranges {
		id, err := band.Parse(name)
		if err != nil {
			return out, fmt.Errorf("analysis.ranges: %w", err)
		}
		if r[0] < 0 || r[0] >= r[1] || r[1] > sampleRate/2 {
			return out, fmt.Errorf("analysis.ranges.%s: invalid range [%g, %g]", name, r[0], r[1])
		}
		out[id] = r
		seen[id] = true
	}
	for _, id := range band.All {
		if !seen[id] {
			return out, fmt.Errorf("analysis.ranges: %w: missing %s", band.ErrIncompleteTable, id)
		}
	}
	return out, nil
}

// Validate checks the visual engine constants. A band table that does not
// cover all four bands is a configuration error.
func (v *VisualConfig) Validate() error {
	var errs []error
	if v.Width <= 0 || v.Height <= 0 {
		errs = append(errs, fmt.Errorf("visual canvas must be positive, got %dx%d", v.Width, v.Height))
	}
	if _, err := v.Bands.Resolve(); err != nil {
		errs = append(errs, fmt.Errorf("visual.bands: %w", err))
	}

	r := v.Rings
	if r.SpawnPeriod <= 0 {
		errs = append(errs, fmt.Errorf("visual.rings.spawn_period must be positive, got %d", r.SpawnPeriod))
	}
	if r.EnergyMax <= r.EnergyMin {
		errs = append(errs, fmt.Errorf("visual.rings.energy_max must exceed energy_min"))
	}
	if r.GrowthMin <= 0 || r.GrowthMax < r.GrowthMin {
		// Rings must grow strictly, or they would never be culled.
		errs = append(errs, fmt.Errorf("visual.rings growth range must be positive and ordered, got [%g, %g]", r.GrowthMin, r.GrowthMax))
	}
	if r.StartRadius < 0 {
		errs = append(errs, fmt.Errorf("visual.rings.start_radius must not be negative"))
	}

	w := v.Waveform
	if w.Length <= 0 {
		errs = append(errs, fmt.Errorf("visual.waveform.length must be positive, got %d", w.Length))
	}
	if w.ClampMin >= w.ClampMax {
		errs = append(errs, fmt.Errorf("visual.waveform.clamp_min must be below clamp_max"))
	}
	if w.Smoothing <= 0 || w.Smoothing > 1 {
		errs = append(errs, fmt.Errorf("visual.waveform.smoothing must be in (0, 1], got %g", w.Smoothing))
	}
	if w.Stride <= 0 {
		errs = append(errs, fmt.Errorf("visual.waveform.stride must be positive, got %d", w.Stride))
	}

	s := v.Style
	if s.WashAlpha < 0 || s.WashAlpha > 255 {
		errs = append(errs, fmt.Errorf("visual.style.wash_alpha must be in [0, 255], got %d", s.WashAlpha))
	}
	if s.OverlayScale <= 0 {
		errs = append(errs, fmt.Errorf("visual.style.overlay_scale must be positive"))
	}
	return errors.Join(errs...)
}

// applyEnvOverrides lets a handful of settings be changed without editing
// the file. Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
		}
	}

	// ENV_RECOGNITION_{...}
	// Credentials are best kept out of the config file.

	// ENV_RECOGNITION_ACCESS_KEY
	if val, ok := os.LookupEnv("ENV_RECOGNITION_ACCESS_KEY"); ok {
		c.Recognition.AccessKey = val
	}
	// ENV_RECOGNITION_ACCESS_SECRET
	if val, ok := os.LookupEnv("ENV_RECOGNITION_ACCESS_SECRET"); ok {
		c.Recognition.AccessSecret = val
	}
}
