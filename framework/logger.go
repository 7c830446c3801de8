package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const debugTimeLayout = "2006-01-02 15:04:05.000"

// Logger is the Printf-style interface that the client and harness log through. logging.DebugPrinter,
// *log.Logger and CapturingLogger all satisfy it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// NullLogger returns a Logger that throws everything away.
func NullLogger() Logger { return discardLogger{} }

// CapturedMessage is one line of a test's debug output.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

func (m CapturedMessage) String() string {
	return m.Time.Format(debugTimeLayout) + " " + m.Message
}

type CapturedOutput []CapturedMessage

// Lines returns each captured message prefixed with its time.
func (output CapturedOutput) Lines() []string {
	ret := make([]string, len(output))
	for i, m := range output {
		ret[i] = m.String()
	}
	return ret
}

// Dump writes the messages to dest, one per line, each starting with prefix.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, line := range output.Lines() {
		fmt.Fprintf(dest, "%s%s\n", prefix, line)
	}
}

// CapturingLogger keeps the debug output of one test in memory until the test finishes. The
// requests of a burst all log to the same test from different goroutines, so it is locked.
type CapturingLogger struct {
	lock     sync.Mutex
	messages []CapturedMessage
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	m := CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.messages = append(l.messages, m)
}

// Output returns a copy of everything logged so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(CapturedOutput(nil), l.messages...)
}
