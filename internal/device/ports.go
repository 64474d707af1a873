package device

import (
	"fmt"

	"codeberg.org/verkko/gaugectl/internal/errors"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes one serial port available on the host.
type PortInfo struct {
	Name string
	Type string
}

// ListPorts enumerates the serial ports on the host with their name and
// type. Used only by the diagnostic listing mode, which bypasses the
// sampling loop entirely.
func ListPorts() ([]PortInfo, error) {
	errFactory := errors.New()

	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, errFactory.Wrap(ErrEnumerateFailed, err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, p := range details {
		ports = append(ports, PortInfo{Name: p.Name, Type: portType(p)})
	}

	return ports, nil
}

func portType(p *enumerator.PortDetails) string {
	if !p.IsUSB {
		return "native"
	}

	t := fmt.Sprintf("USB %s:%s", p.VID, p.PID)
	if p.SerialNumber != "" {
		t += fmt.Sprintf(" (serial %s)", p.SerialNumber)
	}

	return t
}
