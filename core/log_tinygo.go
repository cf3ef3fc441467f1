//go:build tinygo

package core

import "fmt"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the platform output, a no-op until a target sets it
	debugPrintln DebugWriter = func(s string) {}

	debugEnabled bool
)

// SetDebugWriter sets the platform-specific debug output function.
// This allows platforms to redirect log output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables Debugf output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

type writerLogger struct{}

func (writerLogger) Debugf(format string, args ...interface{}) {
	if debugEnabled {
		writeLine("DEBUG", format, args)
	}
}

func (writerLogger) Infof(format string, args ...interface{}) {
	writeLine("INFO", format, args)
}

func (writerLogger) Warnf(format string, args ...interface{}) {
	writeLine("WARN", format, args)
}

func (writerLogger) Errorf(format string, args ...interface{}) {
	writeLine("ERROR", format, args)
}

func writeLine(level, format string, args []interface{}) {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[" + level + "] " + fmt.Sprintf(format, args...))
}

func defaultLogger() Logger {
	return writerLogger{}
}
