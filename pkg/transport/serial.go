package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// DefaultBaudRate is the virtual COM port speed of USB widgets. The DMX
// line speed is set by the widget firmware, not by the host.
const DefaultBaudRate = 115200

// ErrNoPort is returned when no serial device is configured.
var ErrNoPort = errors.New("no serial port configured")

// SerialConfig selects the widget's serial device.
type SerialConfig struct {
	// Port is the device name, e.g. /dev/ttyUSB0 or COM3.
	Port string `yaml:"port"`

	// BaudRate defaults to DefaultBaudRate.
	BaudRate int `yaml:"baud_rate"`

	// MaxAttempts bounds the open attempts. Zero retries until the
	// context ends.
	MaxAttempts int `yaml:"max_attempts"`

	Backoff BackoffConfig `yaml:"backoff"`
}

// Opener opens a serial device. It is serial.Open by default.
type Opener func(name string, mode *serial.Mode) (serial.Port, error)

// OpenSerial opens the configured device, retrying with exponential backoff
// while it is absent or busy.
func OpenSerial(ctx context.Context, cfg SerialConfig, logger *zap.Logger) (serial.Port, error) {
	return openSerial(ctx, cfg, logger, serial.Open)
}

func openSerial(ctx context.Context, cfg SerialConfig, logger *zap.Logger, open Opener) (serial.Port, error) {
	if cfg.Port == "" {
		return nil, ErrNoPort
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{BaudRate: baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	backoff := NewBackoffWithConfig(cfg.Backoff)

	for {
		port, err := open(cfg.Port, mode)
		if err == nil {
			logger.Info("serial port opened", zap.String("port", cfg.Port), zap.Int("baud", baud))
			return port, nil
		}
		if cfg.MaxAttempts > 0 && backoff.Attempts()+1 >= cfg.MaxAttempts {
			return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
		}

		delay := backoff.Next()
		logger.Warn("serial port open failed, retrying",
			zap.String("port", cfg.Port),
			zap.Int("attempt", backoff.Attempts()),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("open %s: %w", cfg.Port, ctx.Err())
		case <-timer.C:
		}
	}
}

// ListPorts returns the serial devices present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
