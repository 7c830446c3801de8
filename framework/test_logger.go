package framework

import "github.com/qa-tooling/user-api-contract-tests/framework/tolerance"

// TestLogger receives progress events as Run walks the test tree. Events for one test always
// arrive as TestStarted, then any TestError and TestTracked, then exactly one of TestFinished or
// TestSkipped.
type TestLogger interface {
	TestStarted(id TestID)
	// TestError is called for each failure message, as soon as it happens.
	TestError(id TestID, err error)
	// TestTracked is called when a check passed only because a tracked bug was tolerated.
	TestTracked(id TestID, verdict tolerance.Verdict)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type discardTestLogger struct{}

func (discardTestLogger) TestStarted(TestID)                        {}
func (discardTestLogger) TestError(TestID, error)                   {}
func (discardTestLogger) TestTracked(TestID, tolerance.Verdict)     {}
func (discardTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (discardTestLogger) TestSkipped(TestID, string)                {}
