package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rdm-protocol/rdm-go/internal/logging"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/transport"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// DefaultPollInterval is the pause between engine ticks on hardware.
const DefaultPollInterval = 200 * time.Microsecond

// ErrInvalidConfig is returned for configuration values that cannot work.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the rdm-discover settings.
type Config struct {
	Serial transport.SerialConfig `yaml:"serial"`

	// SourceUID is the controller UID in requests. Zero uses the widget
	// default.
	SourceUID uid.UID `yaml:"source_uid"`

	// Profile is the timing profile the overrides apply to.
	Profile string `yaml:"profile"`

	Discovery DiscoveryOverrides `yaml:"discovery"`

	// TODCapacity bounds the table of devices.
	TODCapacity int `yaml:"tod_capacity"`

	// PollInterval is the pause between engine ticks.
	PollInterval time.Duration `yaml:"poll_interval"`

	LogLevel   string `yaml:"log_level"`
	CaptureLog string `yaml:"capture_log"`
}

// DiscoveryOverrides adjust the chosen profile. Zero values keep the
// profile's setting.
type DiscoveryOverrides struct {
	ResponseTimeout     time.Duration     `yaml:"response_timeout"`
	LateResponseTimeout *time.Duration    `yaml:"late_response_timeout"`
	Retries             discovery.Retries `yaml:"retries"`
	RemoveUnresponsive  bool              `yaml:"remove_unresponsive"`
}

// DefaultConfig returns the settings for a USB widget. The widget reports
// a missing reply only after its own timeout, so the relaxed profile is
// the default.
func DefaultConfig() *Config {
	return &Config{
		Serial: transport.SerialConfig{
			BaudRate:    transport.DefaultBaudRate,
			MaxAttempts: 5,
		},
		Profile:      discovery.ProfileRelaxed,
		TODCapacity:  200,
		PollInterval: DefaultPollInterval,
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.TODCapacity < 0 {
		return fmt.Errorf("%w: tod_capacity %d", ErrInvalidConfig, c.TODCapacity)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if c.SourceUID.IsBroadcast() {
		return fmt.Errorf("%w: source_uid %s is a broadcast address", ErrInvalidConfig, c.SourceUID)
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	_, err := c.EngineConfig()
	return err
}

// EngineConfig returns the profile with the overrides applied.
func (c *Config) EngineConfig() (discovery.Config, error) {
	ec, err := discovery.ProfileConfig(c.Profile)
	if err != nil {
		return discovery.Config{}, err
	}

	o := c.Discovery
	if o.ResponseTimeout > 0 {
		ec.ResponseTimeout = o.ResponseTimeout
	}
	if o.LateResponseTimeout != nil {
		ec.LateResponseTimeout = *o.LateResponseTimeout
	}
	overrideInt(&ec.Retries.UnMute, o.Retries.UnMute)
	overrideInt(&ec.Retries.Mute, o.Retries.Mute)
	overrideInt(&ec.Retries.Discovery, o.Retries.Discovery)
	overrideInt(&ec.Retries.QuickFind, o.Retries.QuickFind)
	overrideInt(&ec.Retries.QuickFindDiscovery, o.Retries.QuickFindDiscovery)
	ec.RemoveUnresponsive = o.RemoveUnresponsive

	if err := ec.Validate(); err != nil {
		return discovery.Config{}, err
	}
	return ec, nil
}

func overrideInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
