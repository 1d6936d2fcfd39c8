// Package log captures protocol events of UACP connections and listeners.
//
// Protocol capture is separate from operational logging (slog). A Logger
// receives one Event per completed chunk, handshake outcome, state change
// and error, in the order the connection observed them:
//
//	capture, err := log.NewFileLogger("/var/log/uacp/server.ulog")
//	if err != nil {
//		return err
//	}
//	defer capture.Close()
//
//	cfg.ProtocolLogger = log.NewMultiLogger(
//		capture,
//		log.NewSlogAdapter(slog.Default()),
//	)
//
// Capture files hold a stream of CBOR records (.ulog). Reader streams them
// back with optional filtering; the uacp-log tool builds on it.
package log
