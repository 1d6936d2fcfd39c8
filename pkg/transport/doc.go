// Package transport provides the UACP connection layer.
//
// The transport layer handles:
//   - Byte-stream bindings (raw TCP, WebSocket)
//   - The HEL/ACK/ERR handshake that negotiates buffer and message limits
//   - Chunk framing and reassembly on top of partial socket reads
//   - Connection and listener state management
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Secure channel / services    │
//	├────────────────────────────────┤
//	│   Chunks (8-byte header)       │
//	├────────────────────────────────┤
//	│   HEL / ACK / ERR handshake    │
//	├────────────────────────────────┤
//	│     TCP  |  WebSocket          │
//	└────────────────────────────────┘
//
// # Connection Lifecycle
//
// A Connection cycles through three states:
//
//	Closed ──connect──▶ Established ──handshake──▶ Handshaked
//	   ▲                    │                          │
//	   └────────────────────┴───────disconnect─────────┘
//
// Server-accepted connections start directly in Established.
//
// # Concurrency
//
// Every Connection runs its state machine on a single event loop fed by a
// mailbox. Socket readers, dialers and timers only post work to the loop,
// so state, handshake and timer slot are never touched concurrently.
// Event handlers and completion callbacks run on the loop and are never
// invoked from within the call that initiated them.
//
// # Negotiation
//
// The server clamps the client's requested limits into its supported ranges:
//   - Receive/send buffer: 8192 to 512 KiB
//   - Max message size: 100000 to 16 MiB
//   - Max chunk count: 0 to 65535
//
// A requested value of 0 means "no limit" and is answered with the maximum.
package transport
