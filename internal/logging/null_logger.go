package logging

import "github.com/vvka-141/dwhetl/pkg/dwh"

// NullLogger discards all log messages. Used by tests and by commands
// whose output is machine-read.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}
func (l *NullLogger) Info(format string, args ...interface{})    {}
func (l *NullLogger) Error(format string, args ...interface{})   {}

var (
	_ dwh.Logger = (*NullLogger)(nil)
	_ dwh.Logger = (*ConsoleLogger)(nil)
)
