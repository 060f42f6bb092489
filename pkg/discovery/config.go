package discovery

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Timing profiles.
const (
	// ProfileProduction uses the E1.20 timing for a real bus.
	ProfileProduction = "production"

	// ProfileRelaxed stretches every window tenfold for debugging, slow
	// USB widgets and long cable runs.
	ProfileRelaxed = "relaxed"
)

// Config errors.
var (
	// ErrUnknownProfile indicates an unrecognized profile name.
	ErrUnknownProfile = errors.New("unknown timing profile")

	// ErrInvalidConfig indicates a zero or negative timing or retry value.
	ErrInvalidConfig = errors.New("invalid discovery config")
)

// Retries holds the number of transmissions per phase. A value of 3 means
// the command is sent at most three times before the phase gives up.
type Retries struct {
	UnMute             int `yaml:"unmute"`
	Mute               int `yaml:"mute"`
	Discovery          int `yaml:"discovery"`
	QuickFind          int `yaml:"quickfind"`
	QuickFindDiscovery int `yaml:"quickfind_discovery"`
}

// Config holds the bus dependent discovery parameters.
type Config struct {
	// ResponseTimeout is how long a reply is awaited after a command.
	ResponseTimeout time.Duration `yaml:"response_timeout"`

	// LateResponseTimeout is the extra window in which a late reply is
	// still accepted.
	LateResponseTimeout time.Duration `yaml:"late_response_timeout"`

	Retries Retries `yaml:"retries"`

	// RemoveUnresponsive deletes a known UID that never acknowledges
	// DISC_MUTE during an incremental pass. When false the UID is kept
	// and retried on the next pass.
	RemoveUnresponsive bool `yaml:"remove_unresponsive"`
}

var defaultRetries = Retries{
	UnMute:             3,
	Mute:               10,
	Discovery:          3,
	QuickFind:          5,
	QuickFindDiscovery: 5,
}

// ProductionConfig returns the timing for a production bus.
func ProductionConfig() Config {
	return Config{
		ResponseTimeout:     5800 * time.Microsecond,
		LateResponseTimeout: 1000 * time.Microsecond,
		Retries:             defaultRetries,
	}
}

// RelaxedConfig returns the relaxed timing profile.
func RelaxedConfig() Config {
	return Config{
		ResponseTimeout:     58 * time.Millisecond,
		LateResponseTimeout: 40 * time.Millisecond,
		Retries:             defaultRetries,
	}
}

// DefaultConfig returns ProductionConfig.
func DefaultConfig() Config {
	return ProductionConfig()
}

// ProfileConfig returns the named timing profile.
func ProfileConfig(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileProduction:
		return ProductionConfig(), nil
	case ProfileRelaxed, "debug":
		return RelaxedConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// Validate checks that every timing and retry value is usable.
func (c Config) Validate() error {
	if c.ResponseTimeout <= 0 {
		return fmt.Errorf("%w: response_timeout %v", ErrInvalidConfig, c.ResponseTimeout)
	}
	if c.LateResponseTimeout < 0 {
		return fmt.Errorf("%w: late_response_timeout %v", ErrInvalidConfig, c.LateResponseTimeout)
	}
	r := c.Retries
	for name, v := range map[string]int{
		"unmute":              r.UnMute,
		"mute":                r.Mute,
		"discovery":           r.Discovery,
		"quickfind":           r.QuickFind,
		"quickfind_discovery": r.QuickFindDiscovery,
	} {
		if v < 1 {
			return fmt.Errorf("%w: retries.%s %d", ErrInvalidConfig, name, v)
		}
	}
	return nil
}

func micros(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Microsecond)
}
