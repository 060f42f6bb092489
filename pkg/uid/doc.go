// Package uid provides the 48-bit RDM unique identifier and the closed
// UID interval used by the discovery search.
//
// A UID is a 2-byte ESTA manufacturer ID followed by a 4-byte device ID.
// UIDs are totally ordered by their numeric value, which makes a UID range
// a plain integer interval that can be bisected.
package uid
