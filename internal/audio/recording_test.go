// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderWritesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.wav")
	rec, err := NewRecorder(path, 16, 4)
	require.NoError(t, err)
	assert.Equal(t, path, rec.Path())

	want := []int{0, 2048, 4095, 100, 2000, 3000, 4000, 17}
	pcm := make([]int32, len(want))
	for i, raw := range want {
		pcm[i] = PCMFromRaw(raw, 4095)
	}
	require.True(t, rec.Write(pcm[:4]))
	require.True(t, rec.Write(pcm[4:]))
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close(), "Close is idempotent")

	assert.False(t, rec.Write(pcm), "writes after Close are refused")
	assert.Equal(t, uint64(len(want)), rec.Samples())
	assert.Zero(t, rec.Dropped())

	got, err := ReadRawFile(path, 4095)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecorderDropsWhenQueueFull(t *testing.T) {
	rec := &Recorder{
		free: make(chan []int32, 1),
		full: make(chan []int32, 1),
	}
	rec.free <- make([]int32, 2)

	assert.True(t, rec.Write([]int32{1, 2}))
	assert.False(t, rec.Write([]int32{3, 4}), "no free buffer left")
	assert.Equal(t, uint64(1), rec.Dropped())

	queued := <-rec.full
	assert.Equal(t, []int32{1, 2}, queued)
}

// TestRecorderWriteHotPath verifies queueing a buffer does not allocate.
func TestRecorderWriteHotPath(t *testing.T) {
	rec := &Recorder{
		free: make(chan []int32, 1),
		full: make(chan []int32, 1),
	}
	rec.free <- make([]int32, 256)
	buffer := make([]int32, 256)

	allocs := testing.AllocsPerRun(100, func() {
		rec.Write(buffer)
		rec.free <- <-rec.full
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Recorder.Write, got %.1f", allocs)
	}
}

func TestEngineRecording(t *testing.T) {
	engine, _ := newTestEngine(t)
	assert.False(t, engine.Recording())

	path, err := engine.StartRecording("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "dtmf-"))
	assert.True(t, engine.Recording())

	_, err = engine.StartRecording(filepath.Join(t.TempDir(), "second.wav"))
	assert.True(t, errors.Is(err, ErrAlreadyRecording))

	pcm := keyPCM(t, '1')[:engine.config.FramesPerBuffer]
	engine.processInputStream(pcm)

	require.NoError(t, engine.StopRecording())
	assert.False(t, engine.Recording())
	require.NoError(t, engine.StopRecording(), "stopping twice is a no-op")

	raws, err := ReadRawFile(path, 4095)
	require.NoError(t, err)
	assert.Len(t, raws, len(pcm))
	assert.Equal(t, RawFromPCM(pcm[10], 4095), raws[10])
}

func TestEngineRecordingBadPath(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.StartRecording(filepath.Join(t.TempDir(), "missing", "x.wav"))
	assert.Error(t, err)
	assert.False(t, engine.Recording())
}

func TestEngineCloseStopsRecording(t *testing.T) {
	engine, _ := newTestEngine(t)
	path, err := engine.StartRecording(filepath.Join(t.TempDir(), "close.wav"))
	require.NoError(t, err)
	engine.processInputStream(keyPCM(t, '2')[:engine.config.FramesPerBuffer])

	require.NoError(t, engine.Close())
	assert.False(t, engine.Recording())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRecordingPath(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	assert.Equal(t, filepath.Join("out", "dtmf-20240309-140506.wav"), RecordingPath("out", now))
}
