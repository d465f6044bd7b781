// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ringviz/internal/band"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Visual.Width != DefaultWidth || cfg.Visual.Height != DefaultHeight {
		t.Errorf("expected default canvas %dx%d, got %dx%d", DefaultWidth, DefaultHeight, cfg.Visual.Width, cfg.Visual.Height)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_VisualOverrides(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
visual:
  width: 800
  height: 600
  bands:
    bass: {weight: 2.5, hue: 200}
  rings:
    spawn_period: 5
  waveform:
    length: 512
    smoothing: 0.5
transport:
  udp_send_interval: 16ms
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Visual.Width != 800 || cfg.Visual.Height != 600 {
		t.Errorf("canvas = %dx%d, want 800x600", cfg.Visual.Width, cfg.Visual.Height)
	}
	if cfg.Visual.Rings.SpawnPeriod != 5 {
		t.Errorf("spawn_period = %d, want 5", cfg.Visual.Rings.SpawnPeriod)
	}
	// Untouched fields keep their defaults.
	if cfg.Visual.Rings.EnergyThreshold != 30 {
		t.Errorf("energy_threshold = %g, want 30", cfg.Visual.Rings.EnergyThreshold)
	}
	if cfg.Visual.Waveform.Length != 512 || cfg.Visual.Waveform.Smoothing != 0.5 {
		t.Errorf("waveform = %+v", cfg.Visual.Waveform)
	}
	if cfg.Transport.UDPSendInterval != 16*time.Millisecond {
		t.Errorf("udp_send_interval = %s, want 16ms", cfg.Transport.UDPSendInterval)
	}

	settings, err := cfg.Visual.Bands.Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if settings[band.Bass] != (band.Setting{Weight: 2.5, Hue: 200}) {
		t.Errorf("bass = %+v", settings[band.Bass])
	}
	if settings[band.LowMid] != (band.Setting{Weight: 1.4, Hue: 15}) {
		t.Errorf("lowMid should keep its default, got %+v", settings[band.LowMid])
	}
}

func TestLoadConfig_UnknownBand(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
visual:
  bands:
    treble: {weight: 1, hue: 90}
`)
	_, err := LoadConfig(path)
	if !errors.Is(err, band.ErrIncompleteTable) {
		t.Errorf("expected ErrIncompleteTable, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"Sample rate", func(c *Config) { c.Audio.SampleRate = 100 }, "audio.sample_rate"},
		{"Bins not power of two", func(c *Config) { c.Analysis.Bins = 60 }, "analysis.bins"},
		{"Range above Nyquist", func(c *Config) { c.Analysis.Ranges["highMid"] = [2]float64{2600, 30000} }, "analysis.ranges.highMid"},
		{"Zero spawn period", func(c *Config) { c.Visual.Rings.SpawnPeriod = 0 }, "spawn_period"},
		{"Zero growth", func(c *Config) { c.Visual.Rings.GrowthMin = 0 }, "growth range"},
		{"Energy domain", func(c *Config) { c.Visual.Rings.EnergyMax = 30 }, "energy_max"},
		{"Zero waveform", func(c *Config) { c.Visual.Waveform.Length = 0 }, "waveform.length"},
		{"Smoothing", func(c *Config) { c.Visual.Waveform.Smoothing = 1.5 }, "waveform.smoothing"},
		{"Clamp order", func(c *Config) { c.Visual.Waveform.ClampMin = 1 }, "clamp_min"},
		{"Wash alpha", func(c *Config) { c.Visual.Style.WashAlpha = 300 }, "wash_alpha"},
		{"Missing band", func(c *Config) { delete(c.Visual.Bands, "mid") }, "visual.bands"},
		{"Bit depth", func(c *Config) { c.Recording.BitDepth = 8 }, "bit_depth"},
		{"UDP address", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "udp_target_address"},
		{"Recognition credentials", func(c *Config) { c.Recognition.Enabled = true }, "access_key"},
		{"Recognition window", func(c *Config) {
			c.Recognition.Enabled = true
			c.Recognition.Host, c.Recognition.AccessKey, c.Recognition.AccessSecret = "h", "k", "s"
			c.Recognition.CaptureSeconds = 30
		}, "capture_seconds"},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should be valid, got %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "10.0.0.2:7000")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "20ms")
	t.Setenv("ENV_RECOGNITION_ACCESS_KEY", "key")
	t.Setenv("ENV_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.applyEnvOverrides()

	if !cfg.Transport.UDPEnabled {
		t.Error("expected UDP to be enabled from env")
	}
	if cfg.Transport.UDPTargetAddress != "10.0.0.2:7000" {
		t.Errorf("udp target = %q", cfg.Transport.UDPTargetAddress)
	}
	if cfg.Transport.UDPSendInterval != 20*time.Millisecond {
		t.Errorf("udp interval = %s", cfg.Transport.UDPSendInterval)
	}
	if cfg.Recognition.AccessKey != "key" {
		t.Errorf("access key = %q", cfg.Recognition.AccessKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}
