// Package stats samples the host performance counters feeding the four
// gauge channels. A Sampler owns the refresh cadence state: each call
// to Refresh produces fresh point-in-time readings and the deltas are
// relative to the previous call.
package stats

import (
	"context"
	"math"
	"regexp"
	"sort"

	"codeberg.org/verkko/gaugectl/internal/errors"
	"codeberg.org/verkko/gaugectl/internal/logger"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

const bytesPerSector = 512

// blockDevicePattern matches whole NVMe namespaces and SATA disks,
// skipping partitions and virtual devices (loop, dm, md).
var blockDevicePattern = regexp.MustCompile(`^(nvme\d+n\d+|sd[a-z]+)$`)

type netCounters struct {
	rxBytes uint64
	txBytes uint64
}

type diskCounters struct {
	readBytes  uint64
	writeBytes uint64
}

// NetMode selects how transmit and receive deltas combine into the NET
// channel reading.
type NetMode string

const (
	// NetModeDiff reports rx − tx: the needle shows transfer direction.
	NetModeDiff NetMode = "diff"
	// NetModeTotal reports rx + tx: the needle shows total throughput.
	NetModeTotal NetMode = "total"
)

// Valid reports whether the mode is one of the defined variants.
func (m NetMode) Valid() bool {
	return m == NetModeDiff || m == NetModeTotal
}

// Sampler reads host counters through gopsutil and keeps the previous
// counter values needed for delta readings. It is used by exactly one
// goroutine, the sample loop.
type Sampler struct {
	netMode NetMode

	coreCount int
	cpuRates  []float64
	netBits   int64
	diskRate  float64
	memPct    float64

	prevNet    netCounters
	prevNetOK  bool
	prevDisk   map[string]diskCounters
	prevDiskOK bool
}

// NewSampler primes the counter baselines so the first Refresh already
// yields meaningful deltas.
func NewSampler(ctx context.Context, netMode NetMode) (*Sampler, error) {
	errFactory := errors.New()

	s := &Sampler{
		netMode:  netMode,
		prevDisk: make(map[string]diskCounters),
	}

	// First cpu.Percent call establishes the measurement baseline.
	rates, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}
	s.coreCount = len(rates)
	s.cpuRates = make([]float64, s.coreCount)

	if err := s.refreshNet(ctx); err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}
	if err := s.refreshDisk(ctx); err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}
	if err := s.refreshMem(ctx); err != nil {
		return nil, errFactory.Wrap(ErrInitFailed, err)
	}

	// the baseline pass must not report a delta
	s.netBits = 0
	s.diskRate = 0

	logger.Debug().
		Int("cores", s.coreCount).
		Str("net_mode", string(netMode)).
		Uint64("net_rx_bytes", s.prevNet.rxBytes).
		Uint64("net_tx_bytes", s.prevNet.txBytes).
		Int("block_devices", len(s.prevDisk)).
		Float64("mem_used_pct", s.memPct).
		Msg("Sampler initialized")

	return s, nil
}

// Refresh updates all readings. Each source is refreshed independently:
// a failing source keeps its previous reading and the first error is
// returned after all sources were attempted.
func (s *Sampler) Refresh(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(s.refreshCPU(ctx))
	keep(s.refreshNet(ctx))
	keep(s.refreshDisk(ctx))
	keep(s.refreshMem(ctx))

	return firstErr
}

// CoreCount returns the number of CPU cores being sampled.
func (s *Sampler) CoreCount() int {
	return s.coreCount
}

// CPUCoreUsage returns the per-core utilization percentages from the
// last refresh, sorted largest first. NaN readings order last so the
// sort is a deterministic total order.
func (s *Sampler) CPUCoreUsage() []float64 {
	rates := make([]float64, len(s.cpuRates))
	copy(rates, s.cpuRates)
	sortDescending(rates)

	return rates
}

// NetBitDelta returns the signed number of bits transferred since the
// previous refresh, combined according to the configured net mode.
func (s *Sampler) NetBitDelta() int64 {
	return s.netBits
}

// DiskActivity returns the highest per-device sector delta since the
// previous refresh.
func (s *Sampler) DiskActivity() float64 {
	return s.diskRate
}

// MemoryUsedPercent returns used memory as a percentage in [0,100].
func (s *Sampler) MemoryUsedPercent() float64 {
	return s.memPct
}

func (s *Sampler) refreshCPU(ctx context.Context) error {
	rates, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrCPURefreshFailed, err)
	}
	if len(rates) == 0 {
		// treat a coreless reading as fully idle rather than dividing by zero
		s.cpuRates = s.cpuRates[:0]
		return nil
	}

	s.cpuRates = rates
	s.coreCount = len(rates)

	return nil
}

func (s *Sampler) refreshNet(ctx context.Context) error {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrNetRefreshFailed, err)
	}
	if len(counters) == 0 {
		s.netBits = 0
		return nil
	}

	cur := netCounters{rxBytes: counters[0].BytesRecv, txBytes: counters[0].BytesSent}
	if s.prevNetOK {
		rx := counterDelta(cur.rxBytes, s.prevNet.rxBytes)
		tx := counterDelta(cur.txBytes, s.prevNet.txBytes)
		s.netBits = combineNet(s.netMode, rx, tx) * 8
	}
	s.prevNet = cur
	s.prevNetOK = true

	return nil
}

func (s *Sampler) refreshDisk(ctx context.Context) error {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrDiskRefreshFailed, err)
	}

	var maxSectors float64
	current := make(map[string]diskCounters, len(counters))
	for name, c := range counters {
		if !blockDevicePattern.MatchString(name) {
			continue
		}

		cur := diskCounters{readBytes: c.ReadBytes, writeBytes: c.WriteBytes}
		current[name] = cur

		prev, ok := s.prevDisk[name]
		if !ok || !s.prevDiskOK {
			continue
		}

		deltaBytes := counterDelta(cur.readBytes, prev.readBytes) +
			counterDelta(cur.writeBytes, prev.writeBytes)
		sectors := float64(deltaBytes) / bytesPerSector
		if sectors > maxSectors {
			maxSectors = sectors
		}
	}

	s.diskRate = maxSectors
	s.prevDisk = current
	s.prevDiskOK = true

	return nil
}

func (s *Sampler) refreshMem(ctx context.Context) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrMemRefreshFailed, err)
	}

	if vm.Total == 0 {
		s.memPct = 0
		return nil
	}
	s.memPct = 100.0 * float64(vm.Used) / float64(vm.Total)

	return nil
}

// counterDelta handles kernel counter wraparound by treating a going-
// backwards counter as no traffic for the tick.
func counterDelta(cur, prev uint64) int64 {
	if cur < prev {
		return 0
	}

	d := cur - prev
	if d > math.MaxInt64 {
		return 0
	}

	return int64(d)
}

func combineNet(mode NetMode, rx, tx int64) int64 {
	if mode == NetModeTotal {
		return rx + tx
	}

	return rx - tx
}

// sortDescending orders utilization percentages largest first with a
// deterministic total order: NaN always sorts after any real number.
func sortDescending(vals []float64) {
	sort.Slice(vals, func(i, j int) bool {
		a, b := vals[i], vals[j]
		switch {
		case math.IsNaN(b):
			return !math.IsNaN(a)
		case math.IsNaN(a):
			return false
		default:
			return a > b
		}
	})
}
