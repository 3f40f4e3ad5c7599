package appsync

// Logger is a narrow logging sink. The provider reports failures primarily
// through Err/sentinel values and the published ConnectionState stream;
// Logger is an additive hook for callers who want traces of connection-state
// transitions, reconnects, keep-alive loss and start-ack timeouts; individual
// handshake retry attempts are not logged. The zero value (noopLogger)
// discards everything.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Errorf(string, ...any) {}
