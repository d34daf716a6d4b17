// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dtmf/internal/audio"
)

// DevicePicker is the Bubble Tea model listing input devices for selection.
type DevicePicker struct {
	devices       []audio.Device
	selectedIndex int
	chosen        bool
	viewport      viewport.Model
	ready         bool
	keys          keyMap
}

// NewDevicePicker keeps the devices with at least one input channel and
// preselects the system default.
func NewDevicePicker(devices []audio.Device) DevicePicker {
	var inputs []audio.Device
	selected := 0
	for _, d := range devices {
		if d.MaxInputChannels < audio.Channels {
			continue
		}
		if d.DefaultInput {
			selected = len(inputs)
		}
		inputs = append(inputs, d)
	}

	return DevicePicker{
		devices:       inputs,
		selectedIndex: selected,
		keys:          defaultKeyMap(),
	}
}

func (m DevicePicker) Init() tea.Cmd {
	return nil
}

func (m DevicePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.viewport.SetContent(m.renderDevices())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}

		case key.Matches(msg, m.keys.Down):
			if m.selectedIndex < len(m.devices)-1 {
				m.selectedIndex++
			}

		case key.Matches(msg, m.keys.Select):
			if len(m.devices) > 0 {
				m.chosen = true
				return m, tea.Quit
			}
		}
		m.viewport.SetContent(m.renderDevices())
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// Selected returns the chosen device ID once the operator pressed enter.
func (m DevicePicker) Selected() (int, bool) {
	if !m.chosen {
		return 0, false
	}
	return m.devices[m.selectedIndex].ID, true
}

// View renders the UI
func (m DevicePicker) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render("Input Devices")
	help := infoStyle.Render("↑/↓: Navigate • Enter: Select • q: Quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DevicePicker) renderDevices() string {
	if len(m.devices) == 0 {
		return "No input devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		deviceInfo := fmt.Sprintf("[%d] %s\n", device.ID, device.Name)
		deviceInfo += fmt.Sprintf("    Input channels: %d, default rate %.0f Hz\n",
			device.MaxInputChannels, device.DefaultSampleRate)
		deviceInfo += fmt.Sprintf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.LowInputLatency, device.HighInputLatency)

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PickDevice runs the picker and returns the chosen device ID. ok is false
// when the operator quit without choosing.
func PickDevice(devices []audio.Device) (id int, ok bool, err error) {
	p := tea.NewProgram(
		NewDevicePicker(devices),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return 0, false, err
	}
	id, ok = final.(DevicePicker).Selected()
	return id, ok, nil
}
