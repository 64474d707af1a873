package device

import (
	"time"

	"codeberg.org/verkko/gaugectl/internal/gauge"
)

const wakeStepDelay = 3 * time.Millisecond

// wakeChannels is how many gauges take part in the startup sweep.
const wakeChannels = 3

// Wake runs the startup self-test sweep: the needles ride the waypoint
// sequence 0→255→128→255→0 in single steps, independent of any sampled
// metric. It goes through the same smoother as live data so the state
// matches what was actually transmitted.
func (d *Device) Wake(s *gauge.Smoother) error {
	for _, v := range wakeSweep() {
		for _, ch := range gauge.Channels[:wakeChannels] {
			if err := d.Send(ch, s.Move(ch, v)); err != nil {
				return err
			}
		}
		time.Sleep(wakeStepDelay)
	}

	return nil
}

func wakeSweep() []int {
	var values []int
	for v := 0; v <= 255; v++ {
		values = append(values, v)
	}
	for v := 255; v >= 128; v-- {
		values = append(values, v)
	}
	for v := 128; v <= 255; v++ {
		values = append(values, v)
	}
	for v := 255; v >= 0; v-- {
		values = append(values, v)
	}

	return values
}
