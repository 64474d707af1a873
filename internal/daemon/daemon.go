// Package daemon runs the fixed-cadence sample loop: sleep, sample,
// transform, smooth, send. One goroutine owns everything; the loop ends
// on context cancellation or a fatal transport error.
package daemon

import (
	"context"
	"time"

	"codeberg.org/verkko/gaugectl/internal/errors"
	"codeberg.org/verkko/gaugectl/internal/gauge"
	"codeberg.org/verkko/gaugectl/internal/logger"
	"codeberg.org/verkko/gaugectl/internal/telemetry"
)

// Sink transmits one actuation value to a gauge channel.
type Sink interface {
	Send(ch gauge.Channel, value uint8) error
}

// Sampler provides the per-tick host readings.
type Sampler interface {
	Refresh(ctx context.Context) error
	CPUCoreUsage() []float64
	NetBitDelta() int64
	DiskActivity() float64
	MemoryUsedPercent() float64
}

// Loop drives the four gauge channels at a fixed sample rate.
type Loop struct {
	period    time.Duration
	sampler   Sampler
	mapper    *gauge.Mapper
	smoother  *gauge.Smoother
	sink      Sink // nil runs the pipeline without a device
	collector telemetry.Collector
}

func New(sampleRate float64, sampler Sampler, mapper *gauge.Mapper, smoother *gauge.Smoother, sink Sink, collector telemetry.Collector) *Loop {
	return &Loop{
		period:    time.Duration(float64(time.Second) / sampleRate),
		sampler:   sampler,
		mapper:    mapper,
		smoother:  smoother,
		sink:      sink,
		collector: collector,
	}
}

// Run executes the sample loop until the context is canceled or a send
// fails. The time each cycle spends working is subtracted from the next
// sleep so the long-run cadence does not drift.
func (l *Loop) Run(ctx context.Context) error {
	logger.Debug().
		Dur("period", l.period).
		Msg("Starting sample loop")

	var overhead time.Duration
	timer := time.NewTimer(nextSleep(l.period, overhead))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		start := time.Now()
		if err := l.Tick(ctx); err != nil {
			return err
		}
		overhead = time.Since(start)

		timer.Reset(nextSleep(l.period, overhead))
	}
}

// Tick performs one sample cycle: refresh the host readings, then map,
// smooth, and send each channel in the fixed wire order CPU, NET, DISK,
// MEM. A refresh failure is transient and keeps the previous readings;
// a transport failure is fatal and propagates.
func (l *Loop) Tick(ctx context.Context) error {
	errFactory := errors.New()

	if err := l.sampler.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Statistics refresh failed, keeping previous readings")
	}

	cpuRates := l.sampler.CPUCoreUsage()
	netBits := l.sampler.NetBitDelta()
	diskRate := l.sampler.DiskActivity()
	memPct := l.sampler.MemoryUsedPercent()

	var raws, pwms [gauge.ChannelCount]float64
	if len(cpuRates) > 0 {
		raws[gauge.ChannelCPU] = cpuRates[0]
	}
	raws[gauge.ChannelNet] = float64(netBits)
	raws[gauge.ChannelDisk] = diskRate
	raws[gauge.ChannelMem] = memPct

	pwms[gauge.ChannelCPU] = l.mapper.CPU(cpuRates)
	pwms[gauge.ChannelNet] = l.mapper.Net(netBits)
	pwms[gauge.ChannelDisk] = l.mapper.Disk(diskRate)
	pwms[gauge.ChannelMem] = l.mapper.Mem(memPct)

	snapshot := telemetry.Snapshot{Timestamp: time.Now()}
	for _, ch := range gauge.Channels {
		target := int(pwms[ch])
		sent := l.smoother.Move(ch, target)

		if l.sink != nil {
			if err := l.sink.Send(ch, sent); err != nil {
				return errFactory.Wrap(errors.ErrSendFailed, err)
			}
		}

		snapshot.Channels[ch] = telemetry.ChannelSample{
			Raw:  raws[ch],
			PWM:  target,
			Sent: sent,
		}
	}

	if err := l.collector.Record(ctx, &snapshot); err != nil {
		logger.Warn().Err(err).Msg("Telemetry record failed")
	}

	l.logTick(&snapshot)

	return nil
}

func (l *Loop) logTick(snapshot *telemetry.Snapshot) {
	event := logger.Debug()
	for _, ch := range gauge.Channels {
		sample := snapshot.Channels[ch]
		event.
			Float64(ch.String()+"_raw", sample.Raw).
			Int(ch.String()+"_pwm", sample.PWM).
			Uint8(ch.String()+"_sent", sample.Sent)
	}
	event.Msg("Sample cycle")
}

// nextSleep returns how long the loop should sleep to hold the sample
// period given the time the previous cycle spent working.
func nextSleep(period, overhead time.Duration) time.Duration {
	sleep := period - overhead
	if sleep < 0 {
		return 0
	}

	return sleep
}
