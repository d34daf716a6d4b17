// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"dtmf/internal/log"
)

// recorderQueue is the number of input buffers that may wait for the disk.
const recorderQueue = 32

// Recorder writes input buffers to a mono WAV file at SampleRate. Write
// copies into a pre-allocated buffer and hands it to a writer goroutine,
// so the caller never waits on the disk; buffers arriving while the queue
// is full are dropped and counted.
type Recorder struct {
	path       string
	file       *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *audio.IntBuffer // Reusable buffer for format conversion
	bitDepth   int

	free chan []int32
	full chan []int32
	stop chan struct{}
	done chan struct{}

	closed    atomic.Bool
	dropped   atomic.Uint64
	written   atomic.Uint64
	err       error
	closeOnce sync.Once
}

// NewRecorder creates path and starts the writer goroutine. Buffers longer
// than framesPerBuffer are truncated.
func NewRecorder(path string, bitDepth, framesPerBuffer int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	r := &Recorder{
		path:       path,
		file:       file,
		wavEncoder: wav.NewEncoder(file, SampleRate, bitDepth, Channels, 1),
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: Channels,
				SampleRate:  SampleRate,
			},
			Data:           make([]int, framesPerBuffer),
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
		free:     make(chan []int32, recorderQueue),
		full:     make(chan []int32, recorderQueue),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for range recorderQueue {
		r.free <- make([]int32, framesPerBuffer)
	}

	go r.loop()
	return r, nil
}

func (r *Recorder) Path() string {
	return r.path
}

// Write queues a copy of samples and reports whether it was accepted.
func (r *Recorder) Write(samples []int32) bool {
	if r.closed.Load() {
		return false
	}

	var buf []int32
	select {
	case buf = <-r.free:
	default:
		r.dropped.Add(1)
		return false
	}

	buf = buf[:copy(buf[:cap(buf)], samples)]
	select {
	case r.full <- buf:
		return true
	default:
		r.free <- buf
		r.dropped.Add(1)
		return false
	}
}

// Dropped returns how many buffers were lost to a full queue.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Samples returns how many samples reached the encoder.
func (r *Recorder) Samples() uint64 {
	return r.written.Load()
}

func (r *Recorder) loop() {
	defer close(r.done)
	for {
		select {
		case buf := <-r.full:
			r.encode(buf)
		case <-r.stop:
			for {
				select {
				case buf := <-r.full:
					r.encode(buf)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) encode(buf []int32) {
	defer func() { r.free <- buf }()
	if r.err != nil {
		return
	}

	data := r.sampleBuf.Data[:len(buf)]
	for i, sample := range buf {
		data[i] = narrow(sample, r.bitDepth)
	}
	r.sampleBuf.Data = data

	if err := r.wavEncoder.Write(r.sampleBuf); err != nil {
		r.err = err
		log.Errorf("Recorder: error writing to %s: %v", r.path, err)
		return
	}
	r.written.Add(uint64(len(buf)))
}

// Close flushes queued buffers and finalizes the WAV header. It is safe to
// call more than once.
func (r *Recorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.stop)
		<-r.done

		err = r.err
		if cerr := r.wavEncoder.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if cerr := r.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if dropped := r.Dropped(); dropped > 0 {
			log.Warnf("Recorder: %d buffers dropped while writing %s", dropped, r.path)
		}
	})
	return err
}

// RecordingPath returns a timestamped file name inside dir.
func RecordingPath(dir string, now time.Time) string {
	return filepath.Join(dir, "dtmf-"+now.Format("20060102-150405")+".wav")
}

// StartRecording records the raw input stream to filename. An empty
// filename picks a timestamped one in the configured output directory.
func (e *Engine) StartRecording(filename string) (string, error) {
	if e.recorder.Load() != nil {
		return "", ErrAlreadyRecording
	}

	if filename == "" {
		if err := os.MkdirAll(e.recording.OutputDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
		filename = RecordingPath(e.recording.OutputDir, time.Now())
	}

	rec, err := NewRecorder(filename, e.recording.BitDepth, e.config.FramesPerBuffer)
	if err != nil {
		return "", err
	}
	if !e.recorder.CompareAndSwap(nil, rec) {
		rec.Close()
		os.Remove(filename)
		return "", ErrAlreadyRecording
	}

	log.Infof("Audio: recording input to %s (%d-bit)", filename, e.recording.BitDepth)
	return filename, nil
}

func (e *Engine) StopRecording() error {
	rec := e.recorder.Swap(nil)
	if rec == nil {
		return nil
	}
	return rec.Close()
}

// Recording reports whether the input is being recorded.
func (e *Engine) Recording() bool {
	return e.recorder.Load() != nil
}

func (e *Engine) Close() error {
	if err := e.StopInputStream(); err != nil {
		return err
	}

	if err := e.StopRecording(); err != nil {
		return err
	}

	return nil
}
