// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the decoder.
const (
	// Default values for the audio input
	DefaultDeviceID        = MinDeviceID // Default to system default device
	DefaultFramesPerBuffer = 256         // 32ms at 8kHz
	DefaultLowLatency      = false       // Standard latency mode
	DefaultRawFullScale    = 4095        // 12-bit converter
	DefaultMaxAmplitude    = 8000.0      // Peak-to-peak range mapped onto the raw scale

	// Calibration defaults
	DefaultStraddleSpan = 300.0
	DefaultConfirmTicks = 400 // 50ms at 8kHz

	// Pipeline defaults
	DefaultPollInterval = 4 * time.Millisecond

	// Recording defaults
	DefaultOutputDir = "./recordings"
	DefaultBitDepth  = 16

	// Transport defaults
	DefaultWebSocketAddress = "127.0.0.1:8080"
	DefaultUDPTarget        = "127.0.0.1:9090"
	DefaultUDPInterval      = 50 * time.Millisecond

	// State defaults
	DefaultStateFile = "dtmf-state.yaml"

	// Hardware and processing limits
	MinDeviceID     = -1   // -1 represents system default device
	MaxBufferFrames = 8192 // Maximum frames per buffer
)

// SupportedBitDepths lists the PCM widths the WAV recorder can write.
var SupportedBitDepths = []int{16, 24, 32}
