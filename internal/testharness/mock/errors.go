package mock

import "errors"

// Mock package errors.
var (
	// ErrTickLimit is returned when a pass does not finish within the
	// allowed number of Run calls.
	ErrTickLimit = errors.New("discovery did not finish within tick limit")

	// ErrDuplicateResponder is returned when adding a UID already on the bus.
	ErrDuplicateResponder = errors.New("responder already on bus")

	// ErrWrongPort is returned for commands addressed to another port.
	ErrWrongPort = errors.New("command for another port")

	// ErrUnknownOverlap is returned by ParseOverlap.
	ErrUnknownOverlap = errors.New("unknown overlap model")
)
