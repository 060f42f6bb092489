// Package transport connects the discovery engine to an RDM line through
// an Enttec USB Pro compatible widget.
//
// # Widget Framing
//
// Every message between host and widget is one frame:
//
//	0x7E | label | length LSB | length MSB | data... | 0xE7
//
// RDM requests go out as SEND_RDM_PACKET_REQUEST (label 7) or, for
// DISC_UNIQUE_BRANCH, SEND_RDM_DISCOVERY_REQUEST (label 11), with the data
// starting at the 0xCC start code. Replies arrive as RECEIVED_DMX_PACKET
// (label 5): a status byte followed by the bytes seen on the line. A
// request that got no reply ends with RDM_TIMEOUT (label 12).
//
// # Serial Port
//
// OpenSerial opens the widget's virtual COM port with go.bug.st/serial and
// retries with exponential backoff while the device is absent.
package transport
