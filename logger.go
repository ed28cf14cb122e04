package mutationq

// Logger receives queue events as a message plus key-value pairs: enqueues and drain progress at
// Debug, halted drains and skipped records at Warn, and removal failures at Error.
// *slog.Logger satisfies it, as do most structured loggers with a thin adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything. It is the default when no WithLogger option is given.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}

func (NopLogger) Info(string, ...any) {}

func (NopLogger) Warn(string, ...any) {}

func (NopLogger) Error(string, ...any) {}
