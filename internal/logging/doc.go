// Package logging provides the operational logger for the rdm tools.
//
// It wraps a process-wide zap logger. Protocol traffic is not logged here;
// bus captures go through pkg/log.
//
// Initialize once at startup:
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// An empty level falls back to RDM_LOG_LEVEL. When neither is set the
// logger is silent, so command output stays clean unless asked for.
package logging
