package gauge

import "math"

// Settings holds the per-channel mapping parameters. All values are
// immutable after program start; Validate on the config side guarantees
// the PWM bounds are within [0,255] and min <= zero <= max.
type Settings struct {
	CPUPWMMin float64
	CPUPWMMax float64

	NetAbsolute    bool
	NetCeilingMbps float64
	NetPWMMin      float64
	NetPWMZero     float64
	NetPWMMax      float64

	DiskCeiling float64
	DiskPWMMin  float64
	DiskPWMMax  float64

	MemPWMMin float64
	MemPWMMax float64
}

// Mapper converts raw channel metrics into PWM values in [0,255].
// All methods are pure; the only state is the precomputed ranges.
type Mapper struct {
	settings Settings

	cpuRange     float64
	netFullRange float64
	netNegRange  float64
	netPosRange  float64
	diskRange    float64
	memRange     float64
}

func NewMapper(settings Settings) *Mapper {
	return &Mapper{
		settings:     settings,
		cpuRange:     settings.CPUPWMMax - settings.CPUPWMMin,
		netFullRange: settings.NetPWMMax - settings.NetPWMMin,
		netNegRange:  settings.NetPWMZero - settings.NetPWMMin,
		netPosRange:  settings.NetPWMMax - settings.NetPWMZero,
		diskRange:    settings.DiskPWMMax - settings.DiskPWMMin,
		memRange:     settings.MemPWMMax - settings.MemPWMMin,
	}
}

// CPU maps per-core utilization percentages, sorted largest first, into
// a PWM value. A plain average underweights a saturated subset of cores
// on multi-core hosts, so the busiest pairs are weighted in tiers.
func (m *Mapper) CPU(rates []float64) float64 {
	gauge := m.CPUGauge(rates)

	return clampValue(m.settings.CPUPWMMin+gauge*m.cpuRange/256.0, 0, 255)
}

// CPUGauge returns the unscaled CPU gauge value in [0,255].
func (m *Mapper) CPUGauge(rates []float64) float64 {
	n := len(rates)
	if n == 0 {
		return 0
	}

	var gauge float64
	if n >= 2 {
		gauge = (rates[0] + rates[1]) / 2.0
	} else {
		gauge = rates[0]
	}

	switch {
	case n >= 6:
		gauge += (rates[2] + rates[3]) / 2.0
		gauge += (rates[4] + rates[5]) / 3.0
	case n >= 4:
		gauge += (rates[2] + rates[3]) * 0.80
	default:
		// rescale a plain percentage into the 0..255 domain
		gauge *= 2.56
	}

	return clampValue(gauge, 0, 255)
}

// Net maps a signed bit-delta into a PWM value. In absolute mode the
// input is pre-rectified and mapped linearly into [min, max]. In
// bidirectional mode a zero delta sits at the configured zero point and
// each sign uses its own half-range, which lets the zero point sit
// off-center.
func (m *Mapper) Net(bits int64) float64 {
	rate := float64(bits)
	if m.settings.NetAbsolute && rate < 0 {
		rate = -rate
	}

	gauge := 256.0 * (rate / 1_000_000.0) / m.settings.NetCeilingMbps
	gauge = clampValue(gauge, -255, 255)

	var pwm float64
	if m.settings.NetAbsolute {
		pwm = m.settings.NetPWMMin + gauge*m.netFullRange/256.0
	} else {
		halfRange := m.netPosRange
		if gauge < 0 {
			halfRange = m.netNegRange
		}
		pwm = m.settings.NetPWMZero + gauge*halfRange/256.0
	}

	return clampValue(pwm, 0, 255)
}

// Disk maps the highest per-device sector-activity delta into a PWM value.
func (m *Mapper) Disk(rate float64) float64 {
	gauge := clampValue(256.0*rate/m.settings.DiskCeiling, 0, 255)

	return clampValue(m.settings.DiskPWMMin+gauge*m.diskRange/256.0, 0, 255)
}

// Mem maps a used-memory percentage in [0,100] into a PWM value.
func (m *Mapper) Mem(percent float64) float64 {
	gauge := clampValue(2.56*percent, 0, 255)

	return clampValue(m.settings.MemPWMMin+gauge*m.memRange/256.0, 0, 255)
}

func clampValue(value, minValue, maxValue float64) float64 {
	// NaN readings collapse to the low bound instead of escaping the domain
	if math.IsNaN(value) || value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
