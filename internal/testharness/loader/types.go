// Package loader reads simulated bus scenarios from YAML.
package loader

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// Discovery modes a scenario can run.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// Scenario describes a bus, the table the controller starts with and the
// result one discovery pass must produce.
type Scenario struct {
	// ID is the unique scenario identifier (e.g., "SC-COLLIDE-001").
	ID string `yaml:"id"`

	// Name is a human-readable name.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Profile selects the timing profile, "production" when empty.
	Profile string `yaml:"profile,omitempty"`

	// Mode is ModeFull or ModeIncremental. Empty means full.
	Mode string `yaml:"mode,omitempty"`

	// Port is the port the pass runs on.
	Port int `yaml:"port,omitempty"`

	// TODCapacity bounds the table; zero uses the default capacity.
	TODCapacity int `yaml:"tod_capacity,omitempty"`

	// LatencyMicros is the bus turnaround added to every reply.
	LatencyMicros uint64 `yaml:"latency_us,omitempty"`

	// Overlap is how simultaneous branch replies combine: "corrupt" (the
	// default) or "wired_and".
	Overlap string `yaml:"overlap,omitempty"`

	// RemoveUnresponsive drops known devices that never acknowledge a mute.
	RemoveUnresponsive bool `yaml:"remove_unresponsive,omitempty"`

	// Responders are the devices on the line.
	Responders []Responder `yaml:"responders"`

	// InitialTOD is the table content before the pass.
	InitialTOD []uid.UID `yaml:"initial_tod,omitempty"`

	// Expect holds the checks made after the pass.
	Expect Expect `yaml:"expect"`

	// Tags for selecting scenarios.
	Tags []string `yaml:"tags,omitempty"`

	// File is the path the scenario was loaded from.
	File string `yaml:"-"`
}

// Responder is one simulated device.
type Responder struct {
	UID uid.UID `yaml:"uid"`

	// Muted devices start muted.
	Muted bool `yaml:"muted,omitempty"`

	// DropMutes is the number of mutes ignored before one is acknowledged;
	// negative ignores all of them.
	DropMutes int `yaml:"drop_mutes,omitempty"`

	// Silent devices never answer a branch probe.
	Silent bool `yaml:"silent,omitempty"`

	LatencyMicros uint64 `yaml:"latency_us,omitempty"`

	// Line is the source line of the entry, for error messages.
	Line int `yaml:"-"`
}

// UnmarshalYAML records the source line of the entry.
func (r *Responder) UnmarshalYAML(node *yaml.Node) error {
	type plain Responder
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = Responder(p)
	r.Line = node.Line
	return nil
}

// Expect lists the outcome checks. Nil counters are not checked.
type Expect struct {
	// TOD is the exact table content after the pass, in any order.
	TOD []uid.UID `yaml:"tod"`

	Valid       *int `yaml:"valid,omitempty"`
	Collisions  *int `yaml:"collisions,omitempty"`
	NoResponses *int `yaml:"no_responses,omitempty"`
	Removed     *int `yaml:"removed,omitempty"`
}

// LoadError provides details about a scenario loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	prefix := e.File
	if e.Line > 0 {
		prefix += ":" + strconv.Itoa(e.Line)
	}
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
