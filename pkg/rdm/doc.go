// Package rdm provides the wire encodings the discovery controller needs:
// the RDM message layout used for DISC_MUTE / DISC_UN_MUTE and
// DISC_UNIQUE_BRANCH requests, and the masked Discovery Unique Branch
// response that responders send back.
//
// # DUB response
//
// A DUB response carries no start code and no message framing:
//
//	FE FE FE FE FE FE FE AA  u0|AA u0|55 ... u5|AA u5|55  ch|AA ch|55 cl|AA cl|55
//
// The preamble may be shortened to zero FE bytes. Each UID byte and each
// checksum byte is sent twice, OR-masked with 0xAA and with 0x55, so that
// superimposed responses from several responders are detectable. Classify
// reduces a received buffer to NoResponse, Valid(uid) or Collision.
package rdm
