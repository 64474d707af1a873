// Package device drives the gauge display unit over its serial link.
// The real implementation owns one exclusively held serial port for the
// process lifetime; tests inject any io.Writer as the byte sink.
package device

import (
	"io"
	"time"

	"codeberg.org/verkko/gaugectl/internal/errors"
	"codeberg.org/verkko/gaugectl/internal/gauge"
	"codeberg.org/verkko/gaugectl/internal/logger"
	"go.bug.st/serial"
)

const (
	BaudRate  = 115200
	ioTimeout = 5 * time.Second
)

// Device is the gauge display unit behind a byte sink. There is no
// reconnection logic: a failed write means the unit is gone and the
// error propagates up unretried.
type Device struct {
	sink   io.Writer
	closer io.Closer
	name   string
}

// Open opens the named serial port at 115200 8N1 with no flow control
// and a 5 second I/O timeout.
func Open(portName string) (*Device, error) {
	errFactory := errors.New()

	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, errFactory.Wrap(ErrOpenFailed, err)
	}

	if err := port.SetReadTimeout(ioTimeout); err != nil {
		port.Close()
		return nil, errFactory.Wrap(ErrOpenFailed, err)
	}

	logger.Info().Str("port", portName).Int("baud", BaudRate).Msg("Serial port opened")

	return &Device{sink: port, closer: port, name: portName}, nil
}

// NewWithSink wraps an arbitrary byte sink as a Device.
func NewWithSink(w io.Writer) *Device {
	return &Device{sink: w, name: "sink"}
}

// Name returns the port name the device was opened with.
func (d *Device) Name() string {
	return d.name
}

// Send encodes and transmits one command frame with a single blocking
// write. Frames are never partially sent: a short write is an error.
func (d *Device) Send(ch gauge.Channel, value uint8) error {
	errFactory := errors.New()

	frame, err := EncodeFrame(ch, value)
	if err != nil {
		return err
	}

	n, err := d.sink.Write(frame[:])
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	if n != FrameSize {
		return errFactory.WithData(ErrShortWrite, n)
	}

	return nil
}

// Close releases the serial port.
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}

	if err := d.closer.Close(); err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrCloseFailed, err)
	}

	return nil
}
