// Package wire defines the binary wire format of the UACP connection layer.
//
// Every unit on the wire is a chunk: an 8-byte header followed by a payload.
//
//	┌──────────────┬────────────┬──────────────────────────┐
//	│ msg type (3) │ chunk (1)  │ total length incl. hdr(4)│
//	├──────────────┴────────────┴──────────────────────────┤
//	│                      payload                          │
//	└───────────────────────────────────────────────────────┘
//
// The connection layer exchanges three message types during the handshake:
//   - HEL: client capability request
//   - ACK: server acknowledgement with the negotiated limits
//   - ERR: abort with a status code and a reason
//
// OPN, MSG and CLO chunks belong to the secure channel and are carried
// opaquely by the transport once the handshake is complete.
//
// All integers are little-endian. Strings are prefixed by an int32 byte
// length; a length of -1 denotes a null string, which decodes as "".
package wire
