// SPDX-License-Identifier: MIT
/*
Package audio connects the decoder to sound hardware and files:
- Live capture through PortAudio, one sampler tick per input sample
- Peak level metering with a branchless hot path
- Raw input recording to WAV without blocking the callback
- WAV sources and DTMF test-signal generation for offline decoding

Thread Safety:
- The PortAudio callback is the tick context; it never blocks or allocates
- Recording state is swapped atomically
- Locks OS thread during audio processing
*/
package audio

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"dtmf/internal/acquire"
	"dtmf/internal/config"
	"dtmf/internal/log"
)

// ErrAlreadyRecording is returned by StartRecording while a recording runs.
var ErrAlreadyRecording = errors.New("already recording")

type Engine struct {
	// Core configuration and state.
	config    config.AudioConfig
	recording config.RecordingConfig
	sampler   *acquire.Sampler
	fullScale int

	// Audio input handling.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Metering and recording, read outside the callback.
	peak     atomic.Int32
	buffers  atomic.Uint64
	recorder atomic.Pointer[Recorder]
}

// NewEngine opens no stream yet; it resolves the input device and binds the
// callback to sampler.
func NewEngine(cfg *config.Config, sampler *acquire.Sampler) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	engine := newEngine(cfg, sampler)
	engine.inputDevice = inputDevice

	if engine.config.LowLatency {
		engine.inputLatency = engine.inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = engine.inputDevice.DefaultHighInputLatency
	}

	return engine, nil
}

func newEngine(cfg *config.Config, sampler *acquire.Sampler) *Engine {
	return &Engine{
		config:    cfg.Audio,
		recording: cfg.Recording,
		sampler:   sampler,
		fullScale: sampler.Settings().RawFullScale,
	}
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream on %q: %w", e.inputDevice.Name, err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	log.Infof("Audio: capturing from %q at %d Hz, %d frames per buffer, latency %s",
		e.inputDevice.Name, SampleRate, e.config.FramesPerBuffer, e.inputLatency)
	return nil
}

func (e *Engine) StopInputStream() error {
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

// Buffers returns how many input buffers the callback has processed.
func (e *Engine) Buffers() uint64 {
	return e.buffers.Load()
}

// processInputStream is the PortAudio callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.processBuffer(in)

	if rec := e.recorder.Load(); rec != nil {
		rec.Write(in)
	}
}

// processBuffer meters the buffer and ticks the sampler once per sample.
// Performance Critical (Hot Path):
// - No allocations
// - Branchless peak detection
func (e *Engine) processBuffer(buffer []int32) {
	e.peak.Store(peakAmplitude(buffer))

	for _, sample := range buffer {
		e.sampler.Tick(RawFromPCM(sample, e.fullScale))
	}

	e.buffers.Add(1)
}
