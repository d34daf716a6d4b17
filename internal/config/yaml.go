// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"dtmf/internal/log"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug       bool              `yaml:"debug"`       // Enable debug mode (verbose logging).
	LogLevel    string            `yaml:"log_level"`   // Logging level (e.g., "debug", "info", "warn", "error").
	LogFile     string            `yaml:"log_file"`    // Where logs go while the monitor owns the terminal.
	StateFile   string            `yaml:"state_file"`  // Persisted operator state (selected algorithm).
	Audio       AudioConfig       `yaml:"audio"`       // Audio input settings.
	Calibration CalibrationConfig `yaml:"calibration"` // Midpoint calibration settings.
	Pipeline    PipelineConfig    `yaml:"pipeline"`    // Main loop settings.
	Recording   RecordingConfig   `yaml:"recording"`   // Raw input recording settings.
	Transport   TransportConfig   `yaml:"transport"`   // Event and level transports.
}

// AudioConfig holds settings related to audio input. The sample rate is
// fixed by the decoder and not configurable.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per PortAudio callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	RawFullScale    int     `yaml:"raw_full_scale"`    // Largest raw ADC reading.
	MaxAmplitude    float64 `yaml:"max_amplitude"`     // Voltage range mapped onto the raw scale.
}

// CalibrationConfig holds settings of the midpoint calibration.
type CalibrationConfig struct {
	StraddleSpan float64 `yaml:"straddle_span"`          // Zero-crossing window of the straddle check.
	ConfirmTicks int     `yaml:"confirm_debounce_ticks"` // Ticks a confirmation must persist.
	AutoConfirm  bool    `yaml:"auto_confirm"`           // Confirm without operator input.
}

// PipelineConfig holds settings of the main loop.
type PipelineConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`     // Sleep between polls when no Frame is ready.
	ResetOnOverflow bool          `yaml:"reset_on_overflow"` // Clear the sequence after an overflow.
}

// RecordingConfig holds settings related to raw input recording.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`    // Record the input stream to a WAV file.
	OutputDir string `yaml:"output_dir"` // Directory to save recordings.
	BitDepth  int    `yaml:"bit_depth"`  // Bit depth for recorded audio (16, 24 or 32).
}

// TransportConfig holds settings related to sending events and levels.
type TransportConfig struct {
	LogEvents        bool          `yaml:"log_events"`         // Log every event.
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Broadcast events to WebSocket clients.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address of the WebSocket server.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable sending tone levels over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between sending UDP packets.
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Debug:     false,
		LogLevel:  "info",
		StateFile: DefaultStateFile,
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			RawFullScale:    DefaultRawFullScale,
			MaxAmplitude:    DefaultMaxAmplitude,
		},
		Calibration: CalibrationConfig{
			StraddleSpan: DefaultStraddleSpan,
			ConfirmTicks: DefaultConfirmTicks,
		},
		Pipeline: PipelineConfig{
			PollInterval:    DefaultPollInterval,
			ResetOnOverflow: true,
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: DefaultOutputDir,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  DefaultUDPInterval,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{"config.yaml", "dtmf.yaml"}
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
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not a known level", c.LogLevel)
	}

	if c.Audio.InputDevice < MinDeviceID {
		return fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, c.Audio.InputDevice)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer must be in (0, %d], got %d", MaxBufferFrames, c.Audio.FramesPerBuffer)
	}
	if err := c.AcquireSettings().Validate(); err != nil {
		return fmt.Errorf("audio/calibration: %w", err)
	}

	if c.Pipeline.PollInterval <= 0 {
		return errors.New("pipeline.poll_interval must be positive")
	}

	if c.Recording.Enabled && c.Recording.OutputDir == "" {
		return errors.New("recording.output_dir must be set when recording is enabled")
	}
	if !slices.Contains(SupportedBitDepths, c.Recording.BitDepth) {
		return fmt.Errorf("recording.bit_depth must be one of %v, got %d", SupportedBitDepths, c.Recording.BitDepth)
	}

	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		return errors.New("transport.websocket_address must be set when the WebSocket transport is enabled")
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return errors.New("transport.udp_target_address must be set when UDP is enabled")
		}
		if c.Transport.UDPSendInterval <= 0 {
			return errors.New("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of file values. Values
// that fail to parse are ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			log.Debugf("configuration: Overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		log.Debugf("configuration: Overriding log_level from env: %s", val)
	}
	// ENV_STATE_FILE
	if val, ok := os.LookupEnv("ENV_STATE_FILE"); ok {
		cfg.StateFile = val
		log.Debugf("configuration: Overriding state_file from env: %s", val)
	}
	// ENV_INPUT_DEVICE
	if val, ok := os.LookupEnv("ENV_INPUT_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Audio.InputDevice = iVal
			log.Debugf("configuration: Overriding audio.input_device from env: %d", iVal)
		}
	}

	// ENV_WS_{...}
	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
			log.Debugf("configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WebSocketAddress = val
		log.Debugf("configuration: Overriding transport.websocket_address from env: %s", val)
	}

	// ENV_UDP_{...}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			log.Debugf("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		log.Debugf("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
			log.Debugf("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
