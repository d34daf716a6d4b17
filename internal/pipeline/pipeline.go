// SPDX-License-Identifier: MIT
/*
Package pipeline is the main loop of the decoder: it polls the sampler for a
ready Frame, runs the selected detector, feeds the decoder and reports what
happened.

A Pipeline is driven by exactly one goroutine (Run, or repeated Step calls
in offline mode). Other goroutines interact with it only through the
request methods and Snapshot.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dtmf/internal/acquire"
	"dtmf/internal/decoder"
	"dtmf/internal/detect"
	"dtmf/internal/dsp"
	"dtmf/internal/log"
	"dtmf/internal/transport"
)

const noAlgorithm = -1

// Options tunes the main loop.
type Options struct {
	// PollInterval is how long Run sleeps when no Frame is ready.
	PollInterval time.Duration
	// ResetOnOverflow clears the sequence right after an overflow is reported.
	ResetOnOverflow bool
}

func DefaultOptions() Options {
	return Options{
		PollInterval:    4 * time.Millisecond,
		ResetOnOverflow: true,
	}
}

// Snapshot is a consistent copy of the pipeline state for displays.
type Snapshot struct {
	Sequence   string
	Pair       detect.Pair
	Outcome    decoder.Outcome
	Algorithm  detect.Algorithm
	Levels     [dsp.ToneCount]float64
	Frames     uint64
	Dropped    uint64
	Ticks      uint64
	Paused     bool
	Calibrated bool
	Confirming bool
	Band       acquire.Band
	Mask       float64
	LastError  EventKind
	ErrorAt    time.Time
}

// Pipeline connects sampler, detector and decoder.
type Pipeline struct {
	sampler  *acquire.Sampler
	decoder  *decoder.Decoder
	detector detect.Detector
	sink     transport.Transport
	opts     Options
	now      func() time.Time

	resetRequested atomic.Bool
	algoRequested  atomic.Int32

	// Main loop owned.
	holding    bool
	straddles  uint64
	reports    uint64
	calibrated bool

	mu   sync.RWMutex
	snap Snapshot
}

// New builds a pipeline around an existing sampler. The detector for algo is
// created here; sink receives every Event and may be nil.
func New(sampler *acquire.Sampler, algo detect.Algorithm, sink transport.Transport, opts Options) (*Pipeline, error) {
	det, err := detect.New(algo)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}
	if sink == nil {
		sink = transport.Discard{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}

	p := &Pipeline{
		sampler:  sampler,
		decoder:  decoder.New(),
		detector: det,
		sink:     sink,
		opts:     opts,
		now:      time.Now,
	}
	p.algoRequested.Store(noAlgorithm)
	p.snap.Algorithm = algo
	return p, nil
}

// Sampler returns the sampler feeding the pipeline.
func (p *Pipeline) Sampler() *acquire.Sampler {
	return p.sampler
}

// RequestReset asks the main loop to clear the sequence and debounce state
// before the next Frame.
func (p *Pipeline) RequestReset() {
	p.resetRequested.Store(true)
}

// RequestAlgorithm asks the main loop to switch detectors before the next
// Frame.
func (p *Pipeline) RequestAlgorithm(algo detect.Algorithm) error {
	if !algo.Valid() {
		return fmt.Errorf("%w: %d", detect.ErrUnknownAlgorithm, uint8(algo))
	}
	p.algoRequested.Store(int32(algo))
	return nil
}

// Confirm forwards the operator's calibration confirmation.
func (p *Pipeline) Confirm() {
	p.sampler.Calibrator().Confirm()
}

// Run polls for Frames until ctx is done.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		for p.Step() {
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Step performs one main loop iteration and reports whether a Frame was
// consumed.
func (p *Pipeline) Step() bool {
	p.release()
	p.applyRequests()
	p.pollCalibration()

	view, frame, ok := p.sampler.Acquire()
	if !ok {
		return false
	}

	pair := p.detector.Detect(frame)
	if !p.sampler.Release(view) {
		log.Warnf("Pipeline: frame %d released twice", view.Generation)
	}

	outcome, err := p.decoder.Decode(pair)
	p.record(view.Generation, pair, outcome)

	switch {
	case errors.Is(err, decoder.ErrMultitone):
		p.emitError(Event{
			Kind:       EventMultitone,
			Generation: view.Generation,
			Low:        pair.Low.Sentinel(),
			High:       pair.High.Sentinel(),
		})
	case errors.Is(err, decoder.ErrOverflow):
		p.emitError(Event{Kind: EventOverflow, Generation: view.Generation})
		if p.opts.ResetOnOverflow {
			p.reset()
		}
	case outcome == decoder.Accepted:
		seq := p.decoder.Sequence()
		p.emit(Event{
			Kind:       EventKey,
			Generation: view.Generation,
			Key:        string(seq[len(seq)-1:]),
			Sequence:   string(seq),
			Low:        pair.Low.Frequency(),
			High:       pair.High.Frequency(),
		})
	}
	return true
}

// Process feeds recorded readings through the sampler on the calling
// goroutine, stepping the main loop whenever a Frame fills, so no Frame is
// dropped. It returns the number of Frames consumed. A trailing partial
// Frame is not analysed.
func (p *Pipeline) Process(raws []int) int {
	frames := 0
	for _, raw := range raws {
		p.release()
		p.sampler.Tick(raw)
		if p.sampler.Ready() && p.Step() {
			frames++
		}
	}
	for p.Step() {
		frames++
	}
	return frames
}

// Sequence returns a copy of the accepted symbols.
func (p *Pipeline) Sequence() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap.Sequence
}

// Levels copies the tone levels of the last Frame and returns the algorithm
// that measured them.
func (p *Pipeline) Levels(out *[dsp.ToneCount]float64) detect.Algorithm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	*out = p.snap.Levels
	return p.snap.Algorithm
}

// Snapshot returns the current state. Sampler counters are read live.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	s := p.snap
	p.mu.RUnlock()

	cal := p.sampler.Calibrator()
	s.Dropped = p.sampler.Dropped()
	s.Ticks = p.sampler.Ticks()
	s.Paused = p.sampler.Paused()
	s.Calibrated = cal.Calibrated()
	s.Confirming = cal.Confirming()
	s.Band = cal.Band()
	s.Mask = cal.Mask()
	return s
}

func (p *Pipeline) applyRequests() {
	if a := p.algoRequested.Swap(noAlgorithm); a != noAlgorithm {
		p.switchAlgorithm(detect.Algorithm(a))
	}
	if p.resetRequested.Swap(false) {
		p.reset()
	}
}

// hold pauses acquisition until the next Step. Readings arriving meanwhile
// are dropped and the partial Frame is discarded when acquisition resumes.
func (p *Pipeline) hold() {
	p.sampler.Pause()
	p.holding = true
}

func (p *Pipeline) release() {
	if p.holding {
		p.holding = false
		p.sampler.Resume()
	}
}

// switchAlgorithm replaces the detector with acquisition held. A Frame
// already waiting is analysed by the new detector.
func (p *Pipeline) switchAlgorithm(algo detect.Algorithm) {
	if algo == p.detector.Algorithm() {
		return
	}

	det, err := detect.New(algo)
	if err != nil {
		log.Errorf("Pipeline: cannot switch to %s: %v", algo, err)
		return
	}
	p.hold()
	p.detector = det

	p.mu.Lock()
	p.snap.Algorithm = algo
	p.snap.Levels = [dsp.ToneCount]float64{}
	p.mu.Unlock()

	log.Infof("Pipeline: detection algorithm set to %s", algo)
	p.emit(Event{Kind: EventAlgorithm, Algorithm: algo.String()})
}

// reset clears the decoder with acquisition held.
func (p *Pipeline) reset() {
	p.hold()
	p.decoder.Reset()

	p.mu.Lock()
	p.snap.Sequence = ""
	p.mu.Unlock()

	p.emit(Event{Kind: EventReset})
}

// pollCalibration turns calibrator counters into events.
func (p *Pipeline) pollCalibration() {
	if p.calibrated {
		return
	}
	cal := p.sampler.Calibrator()

	if n := cal.Straddles(); n != p.straddles {
		p.straddles = n
		p.emitError(Event{Kind: EventStraddle})
	}
	if n := cal.Reports(); n != p.reports {
		p.reports = n
		p.emit(Event{Kind: EventBand, Band: int(cal.Band()), Mask: finite(cal.Mask())})
	}
	if cal.Calibrated() {
		p.calibrated = true
		log.Infof("Pipeline: calibrated, midpoint mask %.2f", cal.Mask())
		p.emit(Event{Kind: EventCalibrated, Mask: finite(cal.Mask())})
	}
}

func (p *Pipeline) record(gen uint64, pair detect.Pair, outcome decoder.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Pair = pair
	p.snap.Outcome = outcome
	p.snap.Frames++
	p.detector.Levels(&p.snap.Levels)
	if outcome == decoder.Accepted {
		p.snap.Sequence = string(p.decoder.Sequence())
	}
	log.Debug("frame", "generation", gen, "pair", pair, "outcome", outcome)
}

func (p *Pipeline) emitError(ev Event) {
	ev.Time = p.now()
	p.mu.Lock()
	p.snap.LastError = ev.Kind
	p.snap.ErrorAt = ev.Time
	p.mu.Unlock()
	p.send(ev)
}

func (p *Pipeline) emit(ev Event) {
	ev.Time = p.now()
	p.send(ev)
}

func (p *Pipeline) send(ev Event) {
	if err := p.sink.Send(ev); err != nil {
		log.Warnf("Pipeline: failed to send %s event: %v", ev.Kind, err)
	}
}
