package log

// Logger receives protocol events from connections and listeners.
//
// Log is called on the connection's event loop and on the serializer's
// write path, so implementations must be safe for concurrent use and
// should not block.
type Logger interface {
	Log(event Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var (
	_ Logger = LoggerFunc(nil)
	_ Logger = NoopLogger{}
)
