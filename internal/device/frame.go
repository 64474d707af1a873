package device

import (
	"codeberg.org/verkko/gaugectl/internal/errors"
	"codeberg.org/verkko/gaugectl/internal/gauge"
)

// The display unit speaks fixed 4-byte command frames with no checksum
// and no acknowledgment: sync byte, payload length marker, channel
// selector (base offset plus channel ordinal), actuation value.
const (
	FrameSize = 4

	frameSync   = 0xFD
	frameLength = 0x02
	channelBase = 0x30
)

// EncodeFrame builds the command frame for a channel and actuation
// value. The channel is validated here, before any byte reaches the
// wire; the value is a byte and cannot be out of range.
func EncodeFrame(ch gauge.Channel, value uint8) ([FrameSize]byte, error) {
	if !ch.Valid() {
		errFactory := errors.New()
		return [FrameSize]byte{}, errFactory.WithData(ErrInvalidChannel, int(ch))
	}

	return [FrameSize]byte{frameSync, frameLength, channelBase + uint8(ch), value}, nil
}

// DecodeFrame parses a command frame back into channel and value. The
// daemon never reads frames; this exists for diagnostics and tests.
func DecodeFrame(buf []byte) (gauge.Channel, uint8, error) {
	errFactory := errors.New()

	if len(buf) != FrameSize {
		return 0, 0, errFactory.WithData(ErrInvalidFrame, len(buf))
	}
	if buf[0] != frameSync || buf[1] != frameLength {
		return 0, 0, errFactory.WithMessage(ErrInvalidFrame, "bad sync or length byte")
	}

	ch := gauge.Channel(buf[2] - channelBase)
	if buf[2] < channelBase || !ch.Valid() {
		return 0, 0, errFactory.WithData(ErrInvalidChannel, int(buf[2]))
	}

	return ch, buf[3], nil
}
