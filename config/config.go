// Package config loads the YAML board description.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	BackendPeriph   = "periph"
	BackendCdev     = "cdev"
	BackendExpander = "expander"
	BackendSerial   = "serial"
)

var ErrInvalid = errors.New("invalid config")

type MuxConfig struct {
	Channels int      `yaml:"channels"`
	Backend  string   `yaml:"backend"`
	Select   []string `yaml:"select"`
	Enable   string   `yaml:"enable"`

	// cdev
	Chip string `yaml:"chip"`

	// expander
	I2CDevice  string `yaml:"i2cDevice"`
	I2CAddress uint16 `yaml:"i2cAddress"`
}

type SerialConfig struct {
	PortName    string        `yaml:"portName"`
	BaudRate    int           `yaml:"baudRate"`
	ReadTimeout time.Duration `yaml:"readTimeout"`
}

type ScanConfig struct {
	Period      time.Duration `yaml:"period"`
	SettleDelay time.Duration `yaml:"settleDelay"`
	AnalogPin   uint8         `yaml:"analogPin"`
}

type Config struct {
	LogLevel    string       `yaml:"logLevel"`
	Multiplexer MuxConfig    `yaml:"multiplexer"`
	Serial      SerialConfig `yaml:"serial"`
	Scan        ScanConfig   `yaml:"scan"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 115200
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = 500 * time.Millisecond
	}
	if c.Scan.Period == 0 {
		c.Scan.Period = 100 * time.Millisecond
	}
}

// Validate checks that the multiplexer section describes a supported
// topology and that the backend has what it needs.
func (c *Config) Validate() error {
	m := c.Multiplexer
	var selects int
	switch m.Channels {
	case 8:
		selects = 3
	case 16:
		selects = 4
	default:
		return fmt.Errorf("%w: multiplexer.channels must be 8 or 16, got %d", ErrInvalid, m.Channels)
	}
	if len(m.Select) != selects {
		return fmt.Errorf("%w: %d-channel multiplexer needs %d select pins, got %d", ErrInvalid, m.Channels, selects, len(m.Select))
	}
	if m.Enable == "" {
		return fmt.Errorf("%w: multiplexer.enable is required", ErrInvalid)
	}
	seen := make(map[string]bool)
	for _, p := range append(append([]string(nil), m.Select...), m.Enable) {
		if seen[p] {
			return fmt.Errorf("%w: pin %q used twice", ErrInvalid, p)
		}
		seen[p] = true
	}

	if c.Scan.Period < 0 {
		return fmt.Errorf("%w: scan.period must be positive, got %s", ErrInvalid, c.Scan.Period)
	}
	if c.Scan.SettleDelay < 0 {
		return fmt.Errorf("%w: scan.settleDelay must not be negative, got %s", ErrInvalid, c.Scan.SettleDelay)
	}
	if c.Serial.ReadTimeout < 0 {
		return fmt.Errorf("%w: serial.readTimeout must not be negative, got %s", ErrInvalid, c.Serial.ReadTimeout)
	}

	switch m.Backend {
	case BackendPeriph:
	case BackendCdev:
		if m.Chip == "" {
			return fmt.Errorf("%w: cdev backend needs multiplexer.chip", ErrInvalid)
		}
	case BackendExpander:
		if m.I2CDevice == "" {
			return fmt.Errorf("%w: expander backend needs multiplexer.i2cDevice", ErrInvalid)
		}
	case BackendSerial:
		if c.Serial.PortName == "" {
			return fmt.Errorf("%w: serial backend needs serial.portName", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, m.Backend)
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
