// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceKind(t *testing.T) {
	tests := []struct {
		in, out int
		want    string
	}{
		{2, 2, "Input/Output"},
		{1, 0, "Input"},
		{0, 2, "Output"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		d := Device{MaxInputChannels: tt.in, MaxOutputChannels: tt.out}
		assert.Equal(t, tt.want, d.Kind())
	}
}

func TestWriteDevices(t *testing.T) {
	var buf bytes.Buffer
	WriteDevices(&buf, []Device{
		{ID: 0, Name: "Built-in Microphone", MaxInputChannels: 1, DefaultSampleRate: 48000, LowInputLatency: 2.5, HighInputLatency: 10, DefaultInput: true},
		{ID: 1, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 44100},
	})

	out := buf.String()
	assert.Contains(t, out, "Available Audio Devices")
	assert.Contains(t, out, "[0] Built-in Microphone (Input) *default input*")
	assert.Contains(t, out, "[1] Speakers (Output)\n")
	assert.Contains(t, out, "Default sample rate: 48000 Hz")
	assert.Contains(t, out, "Latency: Low=2.50ms, High=10.00ms")
}

// setupPortAudio initializes PortAudio or skips the test on hosts without
// an audio backend.
func setupPortAudio(t *testing.T) {
	t.Helper()
	if err := Initialize(); err != nil {
		t.Skipf("PortAudio unavailable: %v", err)
	}
	t.Cleanup(func() { Terminate() })
}

func TestDevicesFromPortAudio(t *testing.T) {
	setupPortAudio(t)

	devices, err := Devices()
	require.NoError(t, err)
	for i, d := range devices {
		assert.Equal(t, i, d.ID)
	}

	_, err = InputDevice(len(devices))
	assert.Error(t, err, "device IDs past the end are rejected")
	_, err = InputDevice(-5)
	assert.Error(t, err)
}
