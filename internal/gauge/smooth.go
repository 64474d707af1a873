package gauge

// Smoother bounds the per-tick movement of each gauge so the needles
// never jump visibly. It keeps the last transmitted value per channel;
// nothing else in the process holds cross-tick state.
type Smoother struct {
	last     [ChannelCount]int
	maxDelta int
}

// NewSmoother creates a Smoother with all channels at zero. maxDelta is
// the maximum permitted change per tick, shared by all channels. A
// maxDelta of zero is valid and freezes every gauge at its initial
// value.
func NewSmoother(maxDelta int) *Smoother {
	if maxDelta < 0 {
		maxDelta = 0
	}

	return &Smoother{maxDelta: maxDelta}
}

// Reset sets every channel's last transmitted value. Calibration mode
// starts the gauges at 1 rather than 0.
func (s *Smoother) Reset(value int) {
	v := clampInt(value, 0, 255)
	for i := range s.last {
		s.last[i] = v
	}
}

// Move advances the channel toward target by at most maxDelta and
// returns the next value to transmit. The channel must be valid.
func (s *Smoother) Move(ch Channel, target int) uint8 {
	target = clampInt(target, 0, 255)

	delta := target - s.last[ch]
	step := minInt(absInt(delta), s.maxDelta)
	if delta < 0 {
		step = -step
	}
	s.last[ch] += step

	return uint8(clampInt(s.last[ch], 0, 255))
}

// Last returns the last transmitted value for the channel.
func (s *Smoother) Last(ch Channel) int {
	return s.last[ch]
}

func clampInt(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
