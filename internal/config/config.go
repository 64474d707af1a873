package config

import (
	"os"
	"strings"

	"codeberg.org/verkko/gaugectl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel   = "warning"
	DefaultSampleRate = 5.0
	DefaultMaxDelta   = 32

	defaultNetGaugeMbps  = 100.0
	defaultNetPWMZero    = 128.0
	defaultDiskGaugeRate = 102400.0
	defaultPWMMax        = 255.0
	defaultTelemetryDB   = "/var/lib/gaugectl/telemetry.db"

	configName   = "gaugectl"
	configEnvVar = "GAUGECTL_CONFIG"
	envPrefix    = "GAUGECTL"
)

// Config is the full configuration surface. All values are immutable
// after Load; flags override environment, environment overrides the
// config file, the file overrides defaults.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	Port      string `mapstructure:"port"`
	ListPorts bool   `mapstructure:"list_ports"`
	Calibrate bool   `mapstructure:"calibrate"`

	SampleRate float64 `mapstructure:"samplerate"`
	MaxDelta   int     `mapstructure:"max_delta"`

	CPUPWMMin float64 `mapstructure:"cpu_pwm_min"`
	CPUPWMMax float64 `mapstructure:"cpu_pwm_max"`

	NetGaugeAbs  bool    `mapstructure:"net_gauge_abs"`
	NetGaugeMbps float64 `mapstructure:"net_gauge_mbps"`
	NetTraffic   string  `mapstructure:"net_traffic"`
	NetPWMMin    float64 `mapstructure:"net_pwm_min"`
	NetPWMZero   float64 `mapstructure:"net_pwm_zero"`
	NetPWMMax    float64 `mapstructure:"net_pwm_max"`

	DiskGaugeRate float64 `mapstructure:"disk_gauge_rate"`
	DiskPWMMin    float64 `mapstructure:"disk_pwm_min"`
	DiskPWMMax    float64 `mapstructure:"disk_pwm_max"`

	MemPWMMin float64 `mapstructure:"mem_pwm_min"`
	MemPWMMax float64 `mapstructure:"mem_pwm_max"`

	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`
}

// NetTraffic modes. "diff" subtracts transmit from receive so the
// needle shows transfer direction; "total" adds them.
const (
	NetTrafficDiff  = "diff"
	NetTrafficTotal = "total"
)

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Load configuration from file
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	if path := os.Getenv(configEnvVar); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// Override config file values with command line flags
	fs.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		switch f.Value.Type() {
		case "bool":
			val, _ := fs.GetBool(f.Name)
			v.Set(key, val)
		case "int":
			val, _ := fs.GetInt(f.Name)
			v.Set(key, val)
		case "float64":
			val, _ := fs.GetFloat64(f.Name)
			v.Set(key, val)
		default:
			v.Set(key, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true

	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.StringP("port", "p", "", "Serial port of the gauge display unit")
	fs.BoolP("list-ports", "l", false, "List available serial ports and exit")
	fs.BoolP("calibrate", "c", false, "Enter interactive calibration mode")
	fs.Float64P("samplerate", "s", DefaultSampleRate, "Sample rate in Hz")
	fs.Int("max-delta", DefaultMaxDelta, "Maximum gauge movement per sample tick")

	fs.Float64("cpu-pwm-min", 0, "CPU gauge output range lower bound")
	fs.Float64("cpu-pwm-max", defaultPWMMax, "CPU gauge output range upper bound")

	fs.Bool("net-gauge-abs", false, "Rectify the net gauge instead of showing direction")
	fs.Float64("net-gauge-mbps", defaultNetGaugeMbps, "Net rate in Mbps that pins the gauge")
	fs.String("net-traffic", NetTrafficDiff, "Combine rx/tx as \"diff\" (rx-tx) or \"total\" (rx+tx)")
	fs.Float64("net-pwm-min", 0, "Net gauge output range lower bound")
	fs.Float64("net-pwm-zero", defaultNetPWMZero, "Net gauge zero point for bidirectional mode")
	fs.Float64("net-pwm-max", defaultPWMMax, "Net gauge output range upper bound")

	fs.Float64("disk-gauge-rate", defaultDiskGaugeRate, "Disk sector delta that pins the gauge")
	fs.Float64("disk-pwm-min", 0, "Disk gauge output range lower bound")
	fs.Float64("disk-pwm-max", defaultPWMMax, "Disk gauge output range upper bound")

	fs.Float64("mem-pwm-min", 0, "Memory gauge output range lower bound")
	fs.Float64("mem-pwm-max", defaultPWMMax, "Memory gauge output range upper bound")

	fs.Bool("telemetry", false, "Record per-tick telemetry snapshots")
	fs.String("database", defaultTelemetryDB, "Path to the telemetry database")

	return fs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("port", "")
	v.SetDefault("list_ports", false)
	v.SetDefault("calibrate", false)
	v.SetDefault("samplerate", DefaultSampleRate)
	v.SetDefault("max_delta", DefaultMaxDelta)
	v.SetDefault("cpu_pwm_min", 0.0)
	v.SetDefault("cpu_pwm_max", defaultPWMMax)
	v.SetDefault("net_gauge_abs", false)
	v.SetDefault("net_gauge_mbps", defaultNetGaugeMbps)
	v.SetDefault("net_traffic", NetTrafficDiff)
	v.SetDefault("net_pwm_min", 0.0)
	v.SetDefault("net_pwm_zero", defaultNetPWMZero)
	v.SetDefault("net_pwm_max", defaultPWMMax)
	v.SetDefault("disk_gauge_rate", defaultDiskGaugeRate)
	v.SetDefault("disk_pwm_min", 0.0)
	v.SetDefault("disk_pwm_max", defaultPWMMax)
	v.SetDefault("mem_pwm_min", 0.0)
	v.SetDefault("mem_pwm_max", defaultPWMMax)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", defaultTelemetryDB)
}

// Validate checks the configuration for values the engine cannot run
// with. It is called by Load but exported for direct use in tests.
func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.SampleRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidSampleRate, c.SampleRate)
	}
	if c.MaxDelta < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "max_delta must not be negative")
	}

	if c.NetTraffic != NetTrafficDiff && c.NetTraffic != NetTrafficTotal {
		return errFactory.WithData(errors.ErrInvalidConfig, "net_traffic must be \"diff\" or \"total\"")
	}
	if c.NetGaugeMbps <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "net_gauge_mbps must be positive")
	}
	if c.DiskGaugeRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "disk_gauge_rate must be positive")
	}

	ranges := []struct {
		name     string
		min, max float64
	}{
		{"cpu_pwm", c.CPUPWMMin, c.CPUPWMMax},
		{"net_pwm", c.NetPWMMin, c.NetPWMMax},
		{"disk_pwm", c.DiskPWMMin, c.DiskPWMMax},
		{"mem_pwm", c.MemPWMMin, c.MemPWMMax},
	}
	for _, r := range ranges {
		if r.min < 0 || r.max > 255 || r.min > r.max {
			return errFactory.WithData(errors.ErrInvalidConfig, r.name+" bounds must satisfy 0 <= min <= max <= 255")
		}
	}

	if c.NetPWMZero < c.NetPWMMin || c.NetPWMZero > c.NetPWMMax {
		return errFactory.WithData(errors.ErrInvalidConfig, "net_pwm_zero must lie within the net pwm bounds")
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "telemetry requires a database path")
	}

	return nil
}
