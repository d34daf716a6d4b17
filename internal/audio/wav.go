// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrUnsupportedFormat is returned for WAV data the decoder cannot use.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrInvalidWAV is returned when the input is not a WAV file.
	ErrInvalidWAV = errors.New("not a valid WAV file")
)

// supportedReadDepths are the PCM widths ReadRaw understands.
var supportedReadDepths = map[int]bool{8: true, 16: true, 24: true, 32: true}

// ReadRaw decodes a WAV stream into raw readings in [0, fullScale]. Only
// the first channel is used. The sample rate must be SampleRate.
func ReadRaw(r io.ReadSeeker, fullScale int) ([]int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if int(dec.SampleRate) != SampleRate {
		return nil, fmt.Errorf("%w: sample rate %d Hz, need %d Hz", ErrUnsupportedFormat, dec.SampleRate, SampleRate)
	}
	bitDepth := int(dec.BitDepth)
	if !supportedReadDepths[bitDepth] {
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV data: %w", err)
	}

	channels := max(buf.Format.NumChannels, 1)
	raws := make([]int, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		raws = append(raws, RawFromPCM(widen(buf.Data[i], bitDepth), fullScale))
	}
	return raws, nil
}

// ReadRawFile is ReadRaw on a file.
func ReadRawFile(path string, fullScale int) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raws, err := ReadRaw(file, fullScale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raws, nil
}

// WriteRaw encodes raw readings as a mono WAV stream at SampleRate.
func WriteRaw(w io.WriteSeeker, raws []int, fullScale, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: Channels,
			SampleRate:  SampleRate,
		},
		Data:           make([]int, len(raws)),
		SourceBitDepth: bitDepth,
	}
	for i, raw := range raws {
		buf.Data[i] = narrow(PCMFromRaw(raw, fullScale), bitDepth)
	}

	enc := wav.NewEncoder(w, SampleRate, bitDepth, Channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	return enc.Close()
}

// WriteRawFile is WriteRaw to a new file.
func WriteRawFile(path string, raws []int, fullScale, bitDepth int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRaw(file, raws, fullScale, bitDepth); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
