package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

type Config struct {
	Frontpanel FrontpanelConfig
	Volumio    VolumioConfig
	Timers     TimersConfig
	Hardware   HardwareConfig
}

type FrontpanelConfig struct {
	DbPath     string `env:"DB_PATH"`
	ListenAddr string `env:"LISTEN_ADDR"`
	LogLevel   string `env:"LOG_LEVEL"`
	VolumeStep int    `env:"VOLUME_STEP"`
}

type VolumioConfig struct {
	URL                 string `env:"VOLUMIO_URL"`
	PushURL             string `env:"VOLUMIO_PUSH_URL"`
	PollIntervalSeconds int    `env:"VOLUMIO_POLL_INTERVAL_SECONDS"`
}

type TimersConfig struct {
	InactivitySeconds int `env:"INACTIVITY_TIMEOUT_SECONDS"`
	GraceSeconds      int `env:"STOP_GRACE_SECONDS"`
}

type HardwareConfig struct {
	Enabled     bool   `env:"HARDWARE_ENABLED"`
	RotaryCLK   int    `env:"ROTARY_CLK_PIN"`
	RotaryDT    int    `env:"ROTARY_DT_PIN"`
	RotarySW    int    `env:"ROTARY_SW_PIN"`
	I2CBus      string `env:"I2C_BUS"`
	I2CAddress  int    `env:"MCP23017_ADDRESS"`
	ScanMillis  int    `env:"BUTTON_SCAN_MILLIS"`
	FlashMillis int    `env:"LED_FLASH_MILLIS"`
}

// Default returns the values the appliance ships with. The feeders only
// override fields whose variables are actually set.
func Default() Config {
	return Config{
		Frontpanel: FrontpanelConfig{
			DbPath:     "/data/frontpanel.db",
			ListenAddr: ":8080",
			LogLevel:   "info",
			VolumeStep: 5,
		},
		Volumio: VolumioConfig{
			URL:                 "http://localhost:3000",
			PollIntervalSeconds: 5,
		},
		Timers: TimersConfig{
			InactivitySeconds: 15,
			GraceSeconds:      5,
		},
		Hardware: HardwareConfig{
			Enabled:     true,
			RotaryCLK:   13,
			RotaryDT:    5,
			RotarySW:    6,
			I2CAddress:  0x20,
			ScanMillis:  100,
			FlashMillis: 200,
		},
	}
}

// Load feeds the environment into the defaults.
func Load() (Config, error) {
	cfg := Default()
	err := config.New().
		AddFeeder(feeder.Env{}).
		AddStruct(&cfg).
		Feed()
	return cfg, err
}

func (c *Config) InactivityTimeout() time.Duration {
	return time.Duration(c.Timers.InactivitySeconds) * time.Second
}

func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Timers.GraceSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Volumio.PollIntervalSeconds) * time.Second
}

func (c *Config) PushURL() string {
	if c.Volumio.PushURL != "" {
		return c.Volumio.PushURL
	}
	return strings.TrimRight(c.Volumio.URL, "/") + "/api/v1/events"
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Frontpanel.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" || logLevel == "warn" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
