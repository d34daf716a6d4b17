// SPDX-License-Identifier: MIT
/*
Package tui implements the terminal front ends: the live decoder monitor and
an input device picker. Both are Bubble Tea models; the monitor only talks to
the pipeline through its thread-safe request methods and the event channel.
*/
package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dtmf/internal/acquire"
	"dtmf/internal/decoder"
	"dtmf/internal/detect"
	"dtmf/internal/dsp"
	"dtmf/internal/log"
	"dtmf/internal/pipeline"
)

const (
	// ErrorDisplay is how long an error stays on screen.
	ErrorDisplay = 500 * time.Millisecond
	// RefreshInterval is the redraw period of the live values.
	RefreshInterval = 50 * time.Millisecond
	// eventHistory bounds the event log shown in the viewport.
	eventHistory = 200
	// levelWidth is the width of one level bar.
	levelWidth = 24
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	MonitorScreen ScreenType = iota
	AlgorithmScreen
)

// Controller is the part of the pipeline the monitor drives.
type Controller interface {
	Snapshot() pipeline.Snapshot
	Confirm()
	RequestReset()
	RequestAlgorithm(detect.Algorithm) error
}

// AlgorithmStore persists the operator's algorithm choice.
type AlgorithmStore interface {
	SaveAlgorithm(detect.Algorithm) error
}

// Meter reports the input level.
type Meter interface {
	InputPeakDBFS() float64
}

// Options wires optional collaborators into the monitor.
type Options struct {
	Events <-chan any     // Pipeline events, usually a ChannelTransport
	Store  AlgorithmStore // Nil disables persistence
	Meter  Meter          // Nil hides the input level
}

type tickMsg time.Time

type eventMsg struct {
	event pipeline.Event
}

type eventsClosedMsg struct{}

// Model is the Bubble Tea model of the live monitor.
type Model struct {
	ctrl   Controller
	opts   Options
	keys   keyMap
	help   help.Model
	now    func() time.Time
	snap   pipeline.Snapshot
	screen ScreenType

	scroll    Scroller
	errText   string
	errUntil  time.Time
	algoIndex int

	history  []string
	viewport viewport.Model
	ready    bool
	closed   bool
}

func NewModel(ctrl Controller, opts Options) Model {
	return Model{
		ctrl:   ctrl,
		opts:   opts,
		keys:   defaultKeyMap(),
		help:   help.New(),
		now:    time.Now,
		snap:   ctrl.Snapshot(),
		screen: MonitorScreen,
	}
}

// Init starts the refresh ticker and the event subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForEvent(m.opts.Events))
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent receives the next pipeline event. Payloads of other types
// are skipped.
func waitForEvent(ch <-chan any) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		for v := range ch {
			if ev, ok := v.(pipeline.Event); ok {
				return eventMsg{ev}
			}
		}
		return eventsClosedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-14, 3)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width
		m.refreshHistory()

	case tickMsg:
		m.snap = m.ctrl.Snapshot()
		cmds = append(cmds, tick())

	case eventMsg:
		m.handleEvent(msg.event)
		cmds = append(cmds, waitForEvent(m.opts.Events))

	case eventsClosedMsg:
		m.closed = true

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.screen == MonitorScreen {
			m.handleMonitorKey(msg)
		} else {
			m.handleSelectorKey(msg)
		}
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleMonitorKey(msg tea.KeyMsg) {
	now := m.now()
	length := len(m.snap.Sequence)

	switch {
	case key.Matches(msg, m.keys.Left):
		if err := m.scroll.Left(length, now); errors.Is(err, ErrOutOfBounds) {
			m.showError("OUT BOUNDS!")
		}

	case key.Matches(msg, m.keys.Right):
		if err := m.scroll.Right(length, now); errors.Is(err, ErrOutOfBounds) {
			m.showError("OUT BOUNDS!")
		}

	case key.Matches(msg, m.keys.Confirm):
		m.ctrl.Confirm()
		m.addHistory("calibration confirmed")

	case key.Matches(msg, m.keys.Reset):
		m.ctrl.RequestReset()
		m.scroll.Reset()

	case key.Matches(msg, m.keys.Algorithm):
		m.screen = AlgorithmScreen
		m.algoIndex = 0
		for i, a := range detect.Algorithms {
			if a == m.snap.Algorithm {
				m.algoIndex = i
			}
		}
	}
}

func (m *Model) handleSelectorKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = MonitorScreen

	case key.Matches(msg, m.keys.Up):
		if m.algoIndex > 0 {
			m.algoIndex--
		}

	case key.Matches(msg, m.keys.Down):
		if m.algoIndex < len(detect.Algorithms)-1 {
			m.algoIndex++
		}

	case key.Matches(msg, m.keys.Select):
		algo := detect.Algorithms[m.algoIndex]
		m.screen = MonitorScreen
		if err := m.ctrl.RequestAlgorithm(algo); err != nil {
			log.Errorf("TUI: %v", err)
			m.showError("BAD ALGORITHM!")
			return
		}
		if m.opts.Store != nil {
			if err := m.opts.Store.SaveAlgorithm(algo); err != nil {
				log.Errorf("TUI: failed to save algorithm: %v", err)
				m.showError("SAVE FAILED!")
			}
		}
	}
}

func (m *Model) handleEvent(ev pipeline.Event) {
	switch ev.Kind {
	case pipeline.EventMultitone:
		m.showError("MULTITONE!")
	case pipeline.EventOverflow:
		m.showError("OVERFLOW!")
	case pipeline.EventStraddle:
		m.showError("STOP THE INPUT!")
	case pipeline.EventReset:
		m.scroll.Reset()
	}
	m.addHistory(describe(ev))
}

func (m *Model) showError(text string) {
	m.errText = text
	m.errUntil = m.now().Add(ErrorDisplay)
}

// ErrorText returns the error currently on screen, if any.
func (m Model) ErrorText() string {
	if m.errText == "" || !m.now().Before(m.errUntil) {
		return ""
	}
	return m.errText
}

func (m *Model) addHistory(line string) {
	m.history = append(m.history, m.now().Format("15:04:05.000")+"  "+line)
	if len(m.history) > eventHistory {
		m.history = m.history[len(m.history)-eventHistory:]
	}
	m.refreshHistory()
}

func (m *Model) refreshHistory() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func describe(ev pipeline.Event) string {
	switch ev.Kind {
	case pipeline.EventKey:
		return fmt.Sprintf("key %s (%d+%d Hz)", ev.Key, ev.Low, ev.High)
	case pipeline.EventMultitone:
		return fmt.Sprintf("multitone {%d, %d}", ev.Low, ev.High)
	case pipeline.EventBand:
		return fmt.Sprintf("calibration band %d (mask %.1f)", ev.Band, ev.Mask)
	case pipeline.EventAlgorithm:
		return "algorithm " + ev.Algorithm
	case pipeline.EventCalibrated:
		return fmt.Sprintf("calibrated (mask %.1f)", ev.Mask)
	default:
		return string(ev.Kind)
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var title, body, helpText string
	if m.screen == MonitorScreen {
		title = titleStyle.Render("DTMF Decoder · " + m.snap.Algorithm.String())
		body = m.renderMonitor()
		helpText = m.help.View(monitorHelp(m.keys))
	} else {
		title = titleStyle.Render("Detection Algorithm")
		body = m.renderSelector()
		helpText = m.help.View(selectorHelp(m.keys))
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, helpText)
}

func (m Model) renderMonitor() string {
	var sb strings.Builder
	now := m.now()

	sb.WriteString(m.renderCalibration())
	sb.WriteString("\n")

	window := m.scroll.Window(m.snap.Sequence, now)
	label := fmt.Sprintf("%d/%d", len(m.snap.Sequence), decoder.Capacity)
	if m.scroll.Pinned(now) {
		label += " (scrolled)"
	}
	sb.WriteString(sequenceStyle.Render(fmt.Sprintf("%-*s", ScrollWidth, window)))
	sb.WriteString(" " + dimStyle.Render(label) + "\n")

	if text := m.ErrorText(); text != "" {
		sb.WriteString(errorStyle.Render(text))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.renderLevels())
	sb.WriteString(m.renderStats())
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	return sb.String()
}

func (m Model) renderCalibration() string {
	s := m.snap
	if s.Calibrated {
		return infoStyle.Render(fmt.Sprintf("Calibrated  mask %.1f", s.Mask))
	}

	state := "press c to confirm"
	if s.Confirming {
		state = "confirming, keep the line quiet"
	}
	gauge := "[" + acquire.Indicator(s.Mask) + "]"
	return highlightStyle.Render("Calibrating ") + gauge + " " + dimStyle.Render(state)
}

// renderLevels draws one bar per canonical frequency, scaled so the
// detection threshold sits in the middle of the bar.
func (m Model) renderLevels() string {
	threshold := detect.FFTThreshold
	if m.snap.Algorithm == detect.Goertzel {
		threshold = detect.GoertzelThreshold
	}

	var sb strings.Builder
	for i, freq := range dsp.Frequencies {
		level := m.snap.Levels[i]
		cells := int(math.Min(level/threshold, 2) * levelWidth / 2)
		bar := strings.Repeat("█", cells) + strings.Repeat("·", levelWidth-cells)
		if level > threshold {
			bar = highlightStyle.Render(bar)
		}
		fmt.Fprintf(&sb, "%5d Hz %s\n", freq, bar)
	}
	return sb.String()
}

func (m Model) renderStats() string {
	s := m.snap
	line := fmt.Sprintf("frames %d  dropped %d  ticks %d", s.Frames, s.Dropped, s.Ticks)
	if m.opts.Meter != nil {
		line += fmt.Sprintf("  input %.1f dBFS", m.opts.Meter.InputPeakDBFS())
	}
	if s.Paused {
		line += "  paused"
	}
	if m.closed {
		line += "  events closed"
	}
	return dimStyle.Render(line)
}

func (m Model) renderSelector() string {
	var sb strings.Builder
	sb.WriteString("Select the spectral engine:\n\n")
	for i, algo := range detect.Algorithms {
		line := "    " + strings.ToUpper(algo.String())
		if i == m.algoIndex {
			line = highlightStyle.Render(fmt.Sprintf("  ▶ %s", strings.ToUpper(algo.String())))
		}
		if algo == m.snap.Algorithm {
			line += dimStyle.Render("  (active)")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// Run starts the monitor on the alternate screen and blocks until the
// operator quits.
func Run(ctrl Controller, opts Options) error {
	p := tea.NewProgram(
		NewModel(ctrl, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
