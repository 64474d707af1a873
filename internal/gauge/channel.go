package gauge

// Channel identifies one of the four metric-to-gauge pipelines. The
// ordinal doubles as the wire selector offset, so the values are fixed.
type Channel uint8

const (
	ChannelCPU Channel = iota
	ChannelNet
	ChannelDisk
	ChannelMem
)

// ChannelCount is the number of gauge channels on the display unit.
const ChannelCount = 4

// Channels lists all channels in wire order.
var Channels = [ChannelCount]Channel{ChannelCPU, ChannelNet, ChannelDisk, ChannelMem}

// Valid reports whether c names an existing channel.
func (c Channel) Valid() bool {
	return c < ChannelCount
}

// Next returns the following channel, wrapping after the last one.
func (c Channel) Next() Channel {
	return (c + 1) % ChannelCount
}

// Prev returns the preceding channel, wrapping before the first one.
func (c Channel) Prev() Channel {
	return (c + ChannelCount - 1) % ChannelCount
}

func (c Channel) String() string {
	switch c {
	case ChannelCPU:
		return "cpu"
	case ChannelNet:
		return "net"
	case ChannelDisk:
		return "disk"
	case ChannelMem:
		return "mem"
	default:
		return "unknown"
	}
}
