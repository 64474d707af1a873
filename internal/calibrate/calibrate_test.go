package calibrate

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/verkko/gaugectl/internal/gauge"
)

type sentFrame struct {
	ch    gauge.Channel
	value uint8
}

type recordingSink struct {
	frames []sentFrame
	err    error
}

func (r *recordingSink) Send(ch gauge.Channel, value uint8) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, sentFrame{ch: ch, value: value})
	return nil
}

func newTestModel(sink Sink) Model {
	smoother := gauge.NewSmoother(32)
	smoother.Reset(1)
	return NewModel(smoother, sink)
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "up", "down", "left", "right":
		types := map[string]tea.KeyType{
			"up":    tea.KeyUp,
			"down":  tea.KeyDown,
			"left":  tea.KeyLeft,
			"right": tea.KeyRight,
		}
		msg = tea.KeyMsg{Type: types[k]}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}

	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNudgeSendsOnSelectedChannel(t *testing.T) {
	sink := &recordingSink{}
	m := newTestModel(sink)

	m, _ = press(m, "up")
	m, _ = press(m, "up")

	require.Len(t, sink.frames, 2)
	assert.Equal(t, sentFrame{ch: gauge.ChannelCPU, value: 2}, sink.frames[0])
	assert.Equal(t, sentFrame{ch: gauge.ChannelCPU, value: 3}, sink.frames[1])

	m, _ = press(m, "down")
	require.Len(t, sink.frames, 3)
	assert.Equal(t, sentFrame{ch: gauge.ChannelCPU, value: 2}, sink.frames[2])
	assert.Nil(t, m.Err())
}

func TestChannelSelectionWraps(t *testing.T) {
	sink := &recordingSink{}
	m := newTestModel(sink)

	m, _ = press(m, "left")
	assert.Equal(t, gauge.ChannelMem, m.selected)

	m, _ = press(m, "right")
	assert.Equal(t, gauge.ChannelCPU, m.selected)

	for range gauge.Channels {
		m, _ = press(m, "right")
	}
	assert.Equal(t, gauge.ChannelCPU, m.selected)
}

func TestSelectionDoesNotSend(t *testing.T) {
	sink := &recordingSink{}
	m := newTestModel(sink)

	m, _ = press(m, "right")
	m, _ = press(m, "left")
	assert.Empty(t, sink.frames)

	// a nudge after switching targets the newly selected channel
	m, _ = press(m, "right")
	_, _ = press(m, "up")
	require.Len(t, sink.frames, 1)
	assert.Equal(t, sentFrame{ch: gauge.ChannelNet, value: 2}, sink.frames[0])
}

func TestTargetClampedToByteRange(t *testing.T) {
	sink := &recordingSink{}
	m := newTestModel(sink)

	m, _ = press(m, "down")
	require.Len(t, sink.frames, 1)
	assert.Equal(t, sentFrame{ch: gauge.ChannelCPU, value: 0}, sink.frames[0])

	// already at the floor, nothing more to send
	m, _ = press(m, "down")
	assert.Len(t, sink.frames, 1)

	for i := 0; i < 300; i++ {
		m, _ = press(m, "up")
	}
	assert.Equal(t, 255, m.targets[gauge.ChannelCPU])
	last := sink.frames[len(sink.frames)-1]
	assert.Equal(t, sentFrame{ch: gauge.ChannelCPU, value: 255}, last)
}

func TestTargetsIndependentPerChannel(t *testing.T) {
	sink := &recordingSink{}
	m := newTestModel(sink)

	m, _ = press(m, "up")
	m, _ = press(m, "right")
	m, _ = press(m, "up")
	m, _ = press(m, "up")

	assert.Equal(t, 2, m.targets[gauge.ChannelCPU])
	assert.Equal(t, 3, m.targets[gauge.ChannelNet])
	assert.Equal(t, 1, m.targets[gauge.ChannelDisk])
}

func TestSendFailureQuits(t *testing.T) {
	sink := &recordingSink{err: fmt.Errorf("device unplugged")}
	m := newTestModel(sink)

	next, cmd := press(m, "up")
	require.NotNil(t, cmd)
	require.Error(t, next.Err())
	assert.Contains(t, next.Err().Error(), "Failed to send gauge command")
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(&recordingSink{})

	_, cmd := press(m, "q")
	assert.NotNil(t, cmd)
}

func TestViewShowsSelection(t *testing.T) {
	m := newTestModel(&recordingSink{})
	m, _ = press(m, "right")

	view := m.View()
	assert.Contains(t, view, "NET")
	assert.Contains(t, view, "Gauge calibration")
}
