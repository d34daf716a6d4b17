// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"dtmf/internal/acquire"
	"dtmf/internal/audio"
	"dtmf/internal/config"
	"dtmf/internal/log"
	"dtmf/internal/pipeline"
	"dtmf/internal/transport"
	"dtmf/internal/transport/udp"
	"dtmf/internal/tui"
)

type runOptions struct {
	device      int
	frames      int
	lowLatency  bool
	record      bool
	output      string
	algorithm   string
	headless    bool
	autoConfirm bool
	pick        bool
	websocket   string
	udpTarget   string
	logFile     string
}

func newRunCommand(a *app) *cobra.Command {
	o := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Decode the live input device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.apply(cmd, a.cfg)
			return runLive(cmd, a, o)
		},
	}

	flags := runCmd.Flags()
	// Audio Device Configuration
	flags.IntVarP(&o.device, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	flags.IntVarP(&o.frames, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	flags.BoolVarP(&o.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")
	flags.BoolVarP(&o.pick, "pick", "p", false,
		"Choose the input device interactively")

	// Recording Configuration
	flags.BoolVarP(&o.record, "record", "r", false,
		"Record the raw input stream to a WAV file")
	flags.StringVarP(&o.output, "output", "o", "",
		"Recording file name (default: timestamped file in the output directory)")

	// Decoder Configuration
	flags.StringVarP(&o.algorithm, "algorithm", "a", "",
		"Detection algorithm (fft or goertzel); saved as the new default")
	flags.BoolVar(&o.autoConfirm, "auto-confirm", false,
		"Confirm calibration without operator input")
	flags.BoolVar(&o.headless, "headless", false,
		"Log events instead of starting the terminal UI")

	// Transports
	flags.StringVar(&o.websocket, "websocket", "",
		"Serve events to WebSocket clients on this address")
	flags.StringVar(&o.udpTarget, "udp", "",
		"Send tone levels over UDP to this address")
	flags.StringVar(&o.logFile, "log-file", "",
		"Write logs to this file while the terminal UI is running")

	return runCmd
}

// apply copies the flags the user set onto the loaded configuration.
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Audio.InputDevice = o.device
	}
	if flags.Changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = o.frames
	}
	if flags.Changed("low-latency") {
		cfg.Audio.LowLatency = o.lowLatency
	}
	if flags.Changed("record") {
		cfg.Recording.Enabled = o.record
	}
	if flags.Changed("auto-confirm") {
		cfg.Calibration.AutoConfirm = o.autoConfirm
	}
	if o.websocket != "" {
		cfg.Transport.WebSocketEnabled = true
		cfg.Transport.WebSocketAddress = o.websocket
	}
	if o.udpTarget != "" {
		cfg.Transport.UDPEnabled = true
		cfg.Transport.UDPTargetAddress = o.udpTarget
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
}

// runLive is the live decoder. The flow is divided into three phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize PortAudio and resolve the input device
//   - Load the persisted algorithm
//   - Build sampler, pipeline and transports
//
// 2. Concurrent Phase (Hot Path):
//   - PortAudio callback ticks the sampler
//   - Main loop drains Frames through detector and decoder
//   - Terminal UI or headless logging consumes events
//
// 3. Shutdown Phase (Cold Path):
//   - Stop input stream and recording
//   - Close transports
func runLive(cmd *cobra.Command, a *app, o *runOptions) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// ==================== STARTUP PHASE (Cold Path) ====================

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the audio callback (time-critical)
	// - One thread for the main loop, UI and I/O
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	if o.pick {
		devices, err := audio.Devices()
		if err != nil {
			return err
		}
		id, ok, err := tui.PickDevice(devices)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		cfg.Audio.InputDevice = id
	}

	algo, store, err := a.algorithm(o.algorithm, true)
	if err != nil {
		return err
	}

	settings := cfg.AcquireSettings()
	sampler := acquire.NewSampler(settings, acquire.NewCalibrator(settings))

	sinks, events, err := buildTransports(cfg, o.headless)
	if err != nil {
		return err
	}
	defer sinks.Close()

	p, err := pipeline.New(sampler, algo, sinks, cfg.PipelineOptions())
	if err != nil {
		return err
	}

	if cfg.Transport.UDPEnabled {
		publisher, err := startPublisher(cfg, p)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	engine, err := audio.NewEngine(cfg, sampler)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Errorf("Error closing audio engine: %v", err)
		}
	}()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// CRITICAL: Start of real-time audio processing
	// The first call to StartInputStream triggers PortAudio to begin
	// calling the callback function, marking the start of the hot path
	if err := engine.StartInputStream(); err != nil {
		return err
	}

	var recording string
	if cfg.Recording.Enabled {
		if recording, err = engine.StartRecording(o.output); err != nil {
			return err
		}
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- p.Run(ctx) }()

	if o.headless {
		log.Infof("Decoder running with %s, press Ctrl+C to stop", algo)
		<-ctx.Done()
	} else {
		restore, err := redirectLogs(cfg.LogFile)
		if err != nil {
			return err
		}
		err = tui.Run(p, tui.Options{Events: events, Store: store, Meter: engine})
		restore()
		if err != nil {
			return err
		}
		stop()
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := <-loopDone; err != nil {
		return err
	}

	// Stop recording if active and save the file
	if recording != "" {
		if err := engine.StopRecording(); err != nil {
			log.Errorf("Error stopping recording: %v", err)
		}
		fmt.Fprintf(out(cmd), "\nRecording saved to: %s\n", recording)
	}
	fmt.Fprintf(out(cmd), "Sequence: %s\n", p.Sequence())
	return nil
}

// buildTransports assembles the event sinks. The returned channel feeds
// the terminal UI and is nil when headless.
func buildTransports(cfg *config.Config, headless bool) (transport.Fanout, <-chan any, error) {
	var sinks transport.Fanout
	var events <-chan any

	if headless || cfg.Transport.LogEvents {
		sinks = append(sinks, transport.NewLoggingTransport())
	}
	if !headless {
		ch := transport.NewChannelTransport(256)
		sinks = append(sinks, ch)
		events = ch.C()
	}
	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err != nil {
			sinks.Close()
			return nil, nil, err
		}
		log.Infof("Transport: WebSocket events on ws://%s%s", ws.Addr(), transport.WebSocketPath)
		sinks = append(sinks, ws)
	}
	return sinks, events, nil
}

// levelCloser stops the publisher and then closes its socket.
type levelCloser struct {
	publisher *udp.UDPPublisher
	sender    *udp.UDPSender
}

func (c levelCloser) Close() error {
	if err := c.publisher.Close(); err != nil {
		return err
	}
	return c.sender.Close()
}

func startPublisher(cfg *config.Config, source udp.LevelSource) (io.Closer, error) {
	sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
	if err != nil {
		return nil, err
	}
	publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender, source)
	if err != nil {
		sender.Close()
		return nil, err
	}
	publisher.Start()
	log.Infof("Transport: tone levels to udp://%s every %s", cfg.Transport.UDPTargetAddress, cfg.Transport.UDPSendInterval)
	return levelCloser{publisher: publisher, sender: sender}, nil
}

// redirectLogs keeps log output off the terminal while the UI owns it.
func redirectLogs(path string) (restore func(), err error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(file)
	return func() {
		log.SetOutput(os.Stderr)
		file.Close()
	}, nil
}
