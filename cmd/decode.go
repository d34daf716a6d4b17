// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dtmf/internal/acquire"
	"dtmf/internal/audio"
	"dtmf/internal/detect"
	"dtmf/internal/log"
	"dtmf/internal/pipeline"
	"dtmf/internal/transport"
)

// transcript collects what an offline run decoded. Keys are kept across
// overflow resets so the whole recording is reported.
type transcript struct {
	keys   strings.Builder
	counts map[pipeline.EventKind]int
}

func newTranscript() *transcript {
	return &transcript{counts: make(map[pipeline.EventKind]int)}
}

func (t *transcript) Send(data any) error {
	ev, ok := data.(pipeline.Event)
	if !ok {
		return nil
	}
	t.counts[ev.Kind]++
	if ev.Kind == pipeline.EventKey {
		t.keys.WriteString(ev.Key)
	}
	return nil
}

func (t *transcript) Close() error { return nil }

func (t *transcript) summary() string {
	var parts []string
	for _, kind := range []pipeline.EventKind{pipeline.EventMultitone, pipeline.EventOverflow, pipeline.EventStraddle} {
		if n := t.counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	return strings.Join(parts, ", ")
}

func newDecodeCommand(a *app) *cobra.Command {
	var (
		algorithm string
		events    bool
	)

	decodeCmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode DTMF keys from 8 kHz WAV recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algo, _, err := a.algorithm(algorithm, false)
			if err != nil {
				return err
			}

			for _, path := range args {
				result, err := decodeFile(a, path, algo, events)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%s: %s", path, result.keys.String())
				if s := result.summary(); s != "" {
					line += " (" + s + ")"
				}
				fmt.Fprintln(out(cmd), line)
			}
			return nil
		},
	}

	decodeCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "",
		"Detection algorithm (fft or goertzel); defaults to the stored selection")
	decodeCmd.Flags().BoolVar(&events, "events", false,
		"Log every decoder event")

	return decodeCmd
}

// decodeFile runs one recording through a fresh pipeline. Calibration is
// confirmed automatically since nobody is there to confirm it.
func decodeFile(a *app, path string, algo detect.Algorithm, events bool) (*transcript, error) {
	settings := a.cfg.AcquireSettings()
	settings.AutoConfirm = true

	raws, err := audio.ReadRawFile(path, settings.RawFullScale)
	if err != nil {
		return nil, err
	}

	result := newTranscript()
	sinks := transport.Fanout{result}
	if events || a.cfg.Transport.LogEvents {
		sinks = append(sinks, transport.NewLoggingTransport())
	}

	sampler := acquire.NewSampler(settings, acquire.NewCalibrator(settings))
	p, err := pipeline.New(sampler, algo, sinks, a.cfg.PipelineOptions())
	if err != nil {
		return nil, err
	}

	frames := p.Process(raws)
	log.Debugf("Decode: %s: %d samples, %d frames with %s", path, len(raws), frames, algo)
	if !sampler.Calibrator().Calibrated() {
		log.Warnf("Decode: %s never calibrated; the recording needs a quiet lead-in", path)
	}
	return result, nil
}
