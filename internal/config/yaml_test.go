// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtmf/internal/acquire"
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
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	def := Default()
	assert.Equal(t, &def, cfg)
}

func TestLoadConfig_DiscoversConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: debug\n"), 0644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
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

func TestLoadConfig_Sections(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: warn
state_file: /tmp/state.yaml
audio:
  input_device: 3
  frames_per_buffer: 128
  max_amplitude: 4000
calibration:
  straddle_span: 150
  confirm_debounce_ticks: 80
  auto_confirm: true
pipeline:
  poll_interval: 2ms
  reset_on_overflow: false
recording:
  enabled: true
  output_dir: out
  bit_depth: 24
transport:
  websocket_enabled: true
  websocket_address: 127.0.0.1:0
  udp_enabled: true
  udp_target_address: 127.0.0.1:7000
  udp_send_interval: 100ms
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/state.yaml", cfg.StateFile)
	assert.Equal(t, 3, cfg.Audio.InputDevice)
	assert.Equal(t, 128, cfg.Audio.FramesPerBuffer)
	assert.Equal(t, DefaultRawFullScale, cfg.Audio.RawFullScale, "unset keys keep defaults")
	assert.Equal(t, 2*time.Millisecond, cfg.Pipeline.PollInterval)
	assert.False(t, cfg.Pipeline.ResetOnOverflow)
	assert.Equal(t, 24, cfg.Recording.BitDepth)
	assert.Equal(t, 100*time.Millisecond, cfg.Transport.UDPSendInterval)

	assert.Equal(t, acquire.Settings{
		RawFullScale: 4095,
		MaxAmplitude: 4000,
		StraddleSpan: 150,
		ConfirmTicks: 80,
		AutoConfirm:  true,
	}, cfg.AcquireSettings())

	opts := cfg.PipelineOptions()
	assert.Equal(t, 2*time.Millisecond, opts.PollInterval)
	assert.False(t, opts.ResetOnOverflow)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"device", func(c *Config) { c.Audio.InputDevice = -2 }, "input_device"},
		{"frames", func(c *Config) { c.Audio.FramesPerBuffer = 0 }, "frames_per_buffer"},
		{"frames too large", func(c *Config) { c.Audio.FramesPerBuffer = MaxBufferFrames + 1 }, "frames_per_buffer"},
		{"full scale", func(c *Config) { c.Audio.RawFullScale = 0 }, "audio/calibration"},
		{"full scale too large", func(c *Config) { c.Audio.RawFullScale = acquire.MaxRawFullScale + 1 }, "raw full scale must be at most"},
		{"full scale at limit", func(c *Config) { c.Audio.RawFullScale = acquire.MaxRawFullScale }, ""},
		{"poll", func(c *Config) { c.Pipeline.PollInterval = 0 }, "poll_interval"},
		{"recording dir", func(c *Config) { c.Recording.Enabled = true; c.Recording.OutputDir = "" }, "output_dir"},
		{"bit depth", func(c *Config) { c.Recording.BitDepth = 12 }, "bit_depth"},
		{"websocket", func(c *Config) { c.Transport.WebSocketEnabled = true; c.Transport.WebSocketAddress = "" }, "websocket_address"},
		{"udp target", func(c *Config) { c.Transport.UDPEnabled = true; c.Transport.UDPTargetAddress = "" }, "udp_target_address"},
		{"udp interval", func(c *Config) { c.Transport.UDPEnabled = true; c.Transport.UDPSendInterval = 0 }, "udp_send_interval"},
		{"udp disabled ignores interval", func(c *Config) { c.Transport.UDPSendInterval = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("ENV_LOG_LEVEL", "error")
	t.Setenv("ENV_STATE_FILE", "other.yaml")
	t.Setenv("ENV_INPUT_DEVICE", "2")
	t.Setenv("ENV_WS_ENABLED", "1")
	t.Setenv("ENV_WS_ADDRESS", "0.0.0.0:9000")
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "10.0.0.1:9999")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "1s")

	cfg, err := LoadConfig(writeTempConfig(t, "debug: false\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "other.yaml", cfg.StateFile)
	assert.Equal(t, 2, cfg.Audio.InputDevice)
	assert.True(t, cfg.Transport.WebSocketEnabled)
	assert.Equal(t, "0.0.0.0:9000", cfg.Transport.WebSocketAddress)
	assert.True(t, cfg.Transport.UDPEnabled)
	assert.Equal(t, "10.0.0.1:9999", cfg.Transport.UDPTargetAddress)
	assert.Equal(t, time.Second, cfg.Transport.UDPSendInterval)
}

func TestEnvOverrides_IgnoresMalformed(t *testing.T) {
	t.Setenv("ENV_DEBUG", "maybe")
	t.Setenv("ENV_INPUT_DEVICE", "first")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "soon")

	cfg, err := LoadConfig(writeTempConfig(t, "debug: true\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultDeviceID, cfg.Audio.InputDevice)
	assert.Equal(t, DefaultUDPInterval, cfg.Transport.UDPSendInterval)
}
