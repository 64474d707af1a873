package telemetry

import (
	"context"
	"time"

	"codeberg.org/verkko/gaugectl/internal/gauge"
)

// Collector records one snapshot per sample tick.
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot captures what one tick of the pipeline produced, per channel.
type Snapshot struct {
	Timestamp time.Time
	Channels  [gauge.ChannelCount]ChannelSample
}

// ChannelSample holds the pipeline stages for a single channel: the raw
// metric reading, the mapped PWM target, and the smoothed value that
// actually went out on the wire.
type ChannelSample struct {
	Raw  float64
	PWM  int
	Sent uint8
}
