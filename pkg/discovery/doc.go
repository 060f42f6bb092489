// Package discovery implements RDM device discovery for one DMX512 port.
//
// The Engine searches the 48-bit UID space with DISC_UNIQUE_BRANCH probes,
// bisecting every branch that produces a collision, and records each
// confirmed responder in a tod.Table. A found responder is muted with
// DISC_MUTE before the next probe so it stops answering.
//
// # Passes
//
// Full clears the table, un-mutes every responder and searches the whole
// space. Incremental keeps the table, mutes every known UID and then sends
// one quick-find probe over the whole space; only new responders can answer
// it, so an unchanged bus finishes after a single silent probe.
//
// # Scheduling
//
// The engine never blocks. The host calls Run once per loop iteration and
// each call performs at most one bus transaction: a send, or one
// non-blocking poll of the Transport. Waiting for a response is a recorded
// deadline checked on the next call. Ports are independent; create one
// Engine and one tod.Table per port.
//
// A response that misses the response timeout is still accepted during a
// short late-response window before the probe counts as unanswered.
package discovery
