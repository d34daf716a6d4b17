// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtmf/internal/acquire"
	"dtmf/internal/detect"
	"dtmf/internal/pipeline"
	"dtmf/pkg/utils"
)

func decode(t *testing.T, raws []int, algo detect.Algorithm) string {
	t.Helper()
	settings := acquire.DefaultSettings()
	settings.AutoConfirm = true
	s := acquire.NewSampler(settings, acquire.NewCalibrator(settings))
	p, err := pipeline.New(s, algo, &utils.RecordingTransport{}, pipeline.DefaultOptions())
	require.NoError(t, err)
	p.Process(raws)
	return p.Sequence()
}

func TestGeneratedSequenceDecodes(t *testing.T) {
	const keys = "0123456789*#ABCD11"
	raws, err := DefaultSequence(keys).Raw(acquire.DefaultSettings())
	require.NoError(t, err)

	for _, algo := range detect.Algorithms {
		t.Run(algo.String(), func(t *testing.T) {
			assert.Equal(t, keys, decode(t, raws, algo))
		})
	}
}

func TestGeneratedSequenceSurvivesWAV(t *testing.T) {
	raws, err := DefaultSequence("147").Raw(acquire.DefaultSettings())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "keys.wav")
	require.NoError(t, WriteRawFile(path, raws, 4095, 16))
	back, err := ReadRawFile(path, 4095)
	require.NoError(t, err)

	assert.Equal(t, "147", decode(t, back, detect.FFT))
}

func TestSequenceLength(t *testing.T) {
	seq := Sequence{Keys: "12", Tone: 100 * time.Millisecond, Gap: 200 * time.Millisecond, LeadIn: 50 * time.Millisecond, Amplitude: 500}
	raws, err := seq.Raw(acquire.DefaultSettings())
	require.NoError(t, err)
	assert.Len(t, raws, 400+2*(800+1600))
	assert.Equal(t, 2048, raws[0])
}

func TestSequenceValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Sequence)
		is     error
	}{
		{"gap", func(s *Sequence) { s.Gap = MinGap - time.Millisecond }, ErrGapTooShort},
		{"tone", func(s *Sequence) { s.Tone = 0 }, nil},
		{"lead-in", func(s *Sequence) { s.LeadIn = -time.Second }, nil},
		{"amplitude", func(s *Sequence) { s.Amplitude = 3000 }, nil},
		{"key", func(s *Sequence) { s.Keys = "12E" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := DefaultSequence("123")
			tt.mutate(&seq)
			_, err := seq.Raw(acquire.DefaultSettings())
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestMinGap(t *testing.T) {
	assert.Equal(t, 128*time.Millisecond, MinGap)
}
