package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/verkko/gaugectl/internal/calibrate"
	"codeberg.org/verkko/gaugectl/internal/config"
	"codeberg.org/verkko/gaugectl/internal/daemon"
	"codeberg.org/verkko/gaugectl/internal/device"
	"codeberg.org/verkko/gaugectl/internal/errors"
	"codeberg.org/verkko/gaugectl/internal/gauge"
	"codeberg.org/verkko/gaugectl/internal/logger"
	"codeberg.org/verkko/gaugectl/internal/pid"
	"codeberg.org/verkko/gaugectl/internal/stats"
	"codeberg.org/verkko/gaugectl/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(false, false, logger.IsService())
	logger.SetLogLevel(level)
	logger.Debug().Msg("Config loaded")
}

func main() {
	if cfg.ListPorts {
		if err := listPorts(); err != nil {
			logger.Error().Err(err).Msg("Failed to enumerate serial ports")
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		logger.Error().Err(err).Msg("Exiting on error")
		os.Exit(1)
	}
}

func run() error {
	errFactory := errors.New()

	if err := pid.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	var dev *device.Device
	if cfg.Port != "" {
		d, err := device.Open(cfg.Port)
		if err != nil {
			return err
		}
		dev = d
		defer shutdownDevice(dev)
		logger.Info().Str("port", dev.Name()).Msg("Gauge display connected")
	} else {
		logger.Warn().Msg("No serial port configured, running without a device")
	}

	smoother := gauge.NewSmoother(cfg.MaxDelta)
	if dev != nil {
		if err := dev.Wake(smoother); err != nil {
			return err
		}
	}

	if cfg.Calibrate {
		if dev == nil {
			return errFactory.WithData(errors.ErrInvalidOperation, "calibration requires a serial port")
		}
		smoother.Reset(1)
		return calibrate.Run(smoother, dev)
	}

	sampler, err := stats.NewSampler(ctx, stats.NetMode(cfg.NetTraffic))
	if err != nil {
		return err
	}

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close telemetry collector")
		}
	}()

	var sink daemon.Sink
	if dev != nil {
		sink = dev
	}

	loop := daemon.New(cfg.SampleRate, sampler, gauge.NewMapper(mapperSettings(cfg)), smoother, sink, collector)

	logger.Info().
		Float64("samplerate", cfg.SampleRate).
		Int("cores", sampler.CoreCount()).
		Msg("Starting sample loop")

	return loop.Run(ctx)
}

func mapperSettings(c *config.Config) gauge.Settings {
	return gauge.Settings{
		CPUPWMMin:      c.CPUPWMMin,
		CPUPWMMax:      c.CPUPWMMax,
		NetAbsolute:    c.NetGaugeAbs,
		NetCeilingMbps: c.NetGaugeMbps,
		NetPWMMin:      c.NetPWMMin,
		NetPWMZero:     c.NetPWMZero,
		NetPWMMax:      c.NetPWMMax,
		DiskCeiling:    c.DiskGaugeRate,
		DiskPWMMin:     c.DiskPWMMin,
		DiskPWMMax:     c.DiskPWMMax,
		MemPWMMin:      c.MemPWMMin,
		MemPWMMax:      c.MemPWMMax,
	}
}

func listPorts() error {
	ports, err := device.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}

	for _, p := range ports {
		fmt.Printf("%s\t%s\n", p.Name, p.Type)
	}

	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// shutdownDevice parks every needle at zero before closing the port so
// the display does not hold its last live reading indefinitely.
func shutdownDevice(dev *device.Device) {
	for _, ch := range gauge.Channels {
		if err := dev.Send(ch, 0); err != nil {
			logger.Warn().Err(err).Msg("Failed to park gauges")
			break
		}
	}

	if err := dev.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close serial port")
	}
	logger.Info().Msg("Exiting...")
}
