//go:build !tinygo

package core

import (
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// NewLogger builds a logrus logger with the prefixed text formatter
func NewLogger(level logrus.Level) *logrus.Logger {
	formatter := &prefixed.TextFormatter{
		DisableColors:   false,
		TimestampFormat: "15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	}

	l := logrus.New()
	l.SetFormatter(formatter)
	l.SetOutput(os.Stdout)
	l.SetLevel(level)
	return l
}

func defaultLogger() Logger {
	return NewLogger(logrus.InfoLevel)
}
