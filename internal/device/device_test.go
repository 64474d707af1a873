package device_test

import (
	"bytes"
	"errors"
	"testing"

	"codeberg.org/verkko/gaugectl/internal/device"
	"codeberg.org/verkko/gaugectl/internal/gauge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortWriter accepts fewer bytes than offered.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) - 1, nil
}

// failWriter always reports a transport error.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("device unplugged")
}

func TestSendWritesSingleFrame(t *testing.T) {
	var buf bytes.Buffer
	d := device.NewWithSink(&buf)

	require.NoError(t, d.Send(gauge.ChannelCPU, 188))
	assert.Equal(t, []byte{0xFD, 0x02, 0x30, 188}, buf.Bytes())
}

func TestSendPreservesChannelOrderOnWire(t *testing.T) {
	var buf bytes.Buffer
	d := device.NewWithSink(&buf)

	for i, ch := range gauge.Channels {
		require.NoError(t, d.Send(ch, uint8(i)))
	}

	want := []byte{
		0xFD, 0x02, 0x30, 0,
		0xFD, 0x02, 0x31, 1,
		0xFD, 0x02, 0x32, 2,
		0xFD, 0x02, 0x33, 3,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestSendRejectsInvalidChannelBeforeWriting(t *testing.T) {
	var buf bytes.Buffer
	d := device.NewWithSink(&buf)

	require.Error(t, d.Send(gauge.Channel(9), 10))
	assert.Zero(t, buf.Len(), "no bytes may reach the wire for an invalid channel")
}

func TestSendPropagatesWriteError(t *testing.T) {
	d := device.NewWithSink(failWriter{})
	assert.Error(t, d.Send(gauge.ChannelNet, 1))
}

func TestSendShortWriteIsError(t *testing.T) {
	d := device.NewWithSink(shortWriter{})
	assert.Error(t, d.Send(gauge.ChannelNet, 1))
}

func TestWakeSweepsLeadingChannels(t *testing.T) {
	var buf bytes.Buffer
	d := device.NewWithSink(&buf)
	s := gauge.NewSmoother(255)

	require.NoError(t, d.Wake(s))

	raw := buf.Bytes()
	require.Zero(t, len(raw)%device.FrameSize)

	seen := map[gauge.Channel]bool{}
	for i := 0; i < len(raw); i += device.FrameSize {
		ch, _, err := device.DecodeFrame(raw[i : i+device.FrameSize])
		require.NoError(t, err)
		seen[ch] = true
	}
	assert.True(t, seen[gauge.ChannelCPU])
	assert.True(t, seen[gauge.ChannelNet])
	assert.True(t, seen[gauge.ChannelDisk])
	assert.False(t, seen[gauge.ChannelMem], "the sweep only exercises the first three gauges")

	// last waypoint parks the needles back at zero
	_, last, err := device.DecodeFrame(raw[len(raw)-device.FrameSize:])
	require.NoError(t, err)
	assert.Equal(t, uint8(0), last)
}
