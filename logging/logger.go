// Package logging configures the logrus logger used for the harness's own output, as opposed to
// the per-test debug output captured by the framework package.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseLevel maps a LOG_LEVEL value to a logrus level. Unknown values fall back to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	case "trace":
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// New creates a text logger at the given level. If out is nil, it writes to stderr so that it
// does not interleave with the test results on stdout.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(ParseLevel(level))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return logger
}

// DebugPrinter adapts a logrus logger to the Printf interface used by the framework, logging at
// debug level.
type DebugPrinter struct {
	Entry *logrus.Entry
}

func (d DebugPrinter) Printf(message string, args ...interface{}) {
	d.Entry.Debugf(message, args...)
}

// Component returns a Printf-style logger that tags every message with a component name.
func Component(logger *logrus.Logger, name string) DebugPrinter {
	return DebugPrinter{Entry: logger.WithField("component", name)}
}
