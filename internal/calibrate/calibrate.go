// Package calibrate implements the interactive calibration screen.
// Arrow keys steer one needle at a time so gauge faces can be marked or
// trimmed against known actuation values.
package calibrate

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codeberg.org/verkko/gaugectl/internal/errors"
	"codeberg.org/verkko/gaugectl/internal/gauge"
)

// Sink transmits one actuation value to a gauge channel.
type Sink interface {
	Send(ch gauge.Channel, value uint8) error
}

var (
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("215"))
	styleHelp     = lipgloss.NewStyle().Faint(true)
)

// Model is the Bubbletea model for calibration mode. Every target
// adjustment goes through the same smoother the sample loop uses, so
// the needles move exactly as they would in normal operation.
type Model struct {
	selected gauge.Channel
	targets  [gauge.ChannelCount]int
	smoother *gauge.Smoother
	sink     Sink
	err      error
}

// NewModel returns a Model with every target at 1, matching the resting
// value the gauges settle on after the wake sweep.
func NewModel(smoother *gauge.Smoother, sink Sink) Model {
	m := Model{
		smoother: smoother,
		sink:     sink,
	}
	for i := range m.targets {
		m.targets[i] = 1
	}

	return m
}

// Err reports the transport error that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

// Init implements tea.Model. No initial commands are needed.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Left/right select a channel, up/down
// nudge its target by one. A transport failure quits the screen and is
// surfaced through Err.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, keys.PrevChannel):
		m.selected = m.selected.Prev()
	case key.Matches(keyMsg, keys.NextChannel):
		m.selected = m.selected.Next()
	case key.Matches(keyMsg, keys.Up):
		return m.nudge(1)
	case key.Matches(keyMsg, keys.Down):
		return m.nudge(-1)
	}

	return m, nil
}

func (m Model) nudge(delta int) (tea.Model, tea.Cmd) {
	target := clamp(m.targets[m.selected]+delta, 0, 255)
	if target == m.targets[m.selected] {
		return m, nil
	}
	m.targets[m.selected] = target

	value := m.smoother.Move(m.selected, target)
	if err := m.sink.Send(m.selected, value); err != nil {
		errFactory := errors.New()
		m.err = errFactory.Wrap(errors.ErrSendFailed, err)
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Gauge calibration\n\n")

	for _, ch := range gauge.Channels {
		line := fmt.Sprintf("  %-4s %3d", strings.ToUpper(ch.String()), m.targets[ch])
		if ch == m.selected {
			line = styleSelected.Render("> " + line[2:])
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("left/right select gauge, up/down move needle, q quit"))
	b.WriteString("\n")

	return b.String()
}

// Run drives the calibration screen until the user quits or a send
// fails.
func Run(smoother *gauge.Smoother, sink Sink) error {
	program := tea.NewProgram(NewModel(smoother, sink))

	final, err := program.Run()
	if err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	if m, ok := final.(Model); ok {
		return m.Err()
	}

	return nil
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
