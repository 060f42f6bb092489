// Package log provides protocol capture logging for the RDM controller.
//
// This package defines the Logger interface and Event types for capturing
// events at three layers: widget frames, decoded RDM messages and discovery
// engine decisions. It is separate from operational logging (zap) - protocol
// capture provides a complete machine-readable trace of a discovery pass.
//
// # Basic Usage
//
//	// For development: log to console via zap
//	engine, err := discovery.New(tr, clk, discovery.WithProtocolLogger(log.NewZapAdapter(zl)))
//
//	// For field captures: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/rdm/port1.rlog")
//
//	// Both; Combine skips nil loggers
//	capture := log.Combine(log.NewZapAdapter(zl), fl)
//
// # File Format
//
// Capture files use CBOR encoding with the .rlog extension. The rdm-log CLI
// tool provides viewing, filtering, and export capabilities.
package log
