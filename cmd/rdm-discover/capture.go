package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rdm-protocol/rdm-go/internal/logging"
	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// openCapture returns the protocol logger for the configured capture file.
// At debug level events are also echoed to the operational log. The
// returned logger is nil when nothing records.
func openCapture(path string) (log.Logger, func() error, error) {
	var (
		file  *log.FileLogger
		debug log.Logger
	)
	closeFn := func() error { return nil }

	if path != "" {
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return nil, nil, err
		}
		file = fl
		closeFn = func() error {
			if err := fl.Err(); err != nil {
				logging.Warn("capture write failed", zap.String("path", fl.Path()), zap.Error(err))
			}
			logging.Info("capture closed", zap.String("path", fl.Path()), zap.Int("events", fl.Count()))
			return fl.Close()
		}
	}
	if logging.Logger().Core().Enabled(zapcore.DebugLevel) {
		debug = log.NewZapAdapter(logging.Named("capture"))
	}

	// A nil *FileLogger must not end up inside the interface.
	if file == nil {
		return log.Combine(debug), closeFn, nil
	}
	return log.Combine(file, debug), closeFn, nil
}
