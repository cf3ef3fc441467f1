package core

// Logger is the logging surface used across the firmware.
// *logrus.Logger and *logrus.Entry satisfy it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var logger Logger

// SetLogger replaces the package logger. A nil logger restores the default.
func SetLogger(l Logger) {
	logger = l
}

// Log returns the package logger
func Log() Logger {
	if logger == nil {
		logger = defaultLogger()
	}
	return logger
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// NopLogger discards everything
var NopLogger Logger = nopLogger{}
