package framework

import (
	"runtime/debug"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"
)

// runState is shared by every Context in one call to Run.
type runState struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is one scenario or group of scenarios. It has the subset of *testing.T methods that
// the assert and require packages need, so they can be used in scenarios unchanged.
//
// A scenario stops by panicking: FailNow and Skip panic with the Context itself, and any other
// panic is caught by the enclosing Run and turned into a failure of that scenario only.
type Context struct {
	state      *runState
	id         TestID
	debug      CapturingLogger
	failed     bool
	skipped    bool
	skipReason string
	errors     []error
	verdicts   []tolerance.Verdict
}

// Run executes a test tree and returns the results of every test in it.
func Run(filter func(TestID) bool, testLogger TestLogger, action func(*Context)) Results {
	if testLogger == nil {
		testLogger = discardTestLogger{}
	}
	state := &runState{filter: filter, testLogger: testLogger}
	root := &Context{state: state}
	root.execute(action)
	return state.results
}

func (c *Context) execute(action func(*Context)) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.absorbPanic(r)
		}
		c.finish(time.Since(started))
	}()
	action(c)
}

// absorbPanic records why a scenario stopped early.
func (c *Context) absorbPanic(r interface{}) {
	if c.skipped {
		return
	}
	c.failed = true
	var cause error
	switch e := r.(type) {
	case *Context:
		if len(c.errors) == 0 {
			cause = errors.New("test failed with no failure message")
		}
	case *tolerance.ConfigurationError:
		cause = e
	default:
		cause = errors.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
	}
	if cause != nil {
		c.errors = append(c.errors, cause)
		c.state.testLogger.TestError(c.id, cause)
	}
}

func (c *Context) finish(elapsed time.Duration) {
	result := TestResult{
		TestID:   c.id,
		Skipped:  c.skipped,
		Duration: elapsed,
	}
	if !c.skipped {
		result.Errors = c.errors
		result.Verdicts = c.verdicts
		result.DebugOutput = c.debug.Output()
	}
	c.state.results.Tests = append(c.state.results.Tests, result)
	if c.failed && !c.skipped {
		c.state.results.Failures = append(c.state.results.Failures, result)
	}
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a named child of this test. The child gets its own copy of the path, and whatever
// happens in it, the parent carries on with its next statement.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Child(name)
	logger := c.state.testLogger

	logger.TestStarted(id)
	if c.state.filter != nil && !c.state.filter(id) {
		logger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	child := &Context{id: id, state: c.state}
	child.execute(action)
	if child.skipped {
		logger.TestSkipped(id, child.skipReason)
		return
	}
	logger.TestFinished(id, child.failed, child.debug.Output())
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.fail(errors.Errorf(format, args...))
}

func (c *Context) fail(err error) {
	c.failed = true
	c.errors = append(c.errors, err)
	c.state.testLogger.TestError(c.id, reformatError(err))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// RecordVerdict attaches a check result to the test. A failed verdict fails the test without
// stopping it. A passing verdict that only passed because of a tracked bug goes to the test
// logger.
func (c *Context) RecordVerdict(v tolerance.Verdict) {
	c.verdicts = append(c.verdicts, v)
	c.debug.Printf("check %s", v)
	switch {
	case !v.Passed:
		c.fail(v.Err())
	case v.IsDeviation():
		c.state.testLogger.TestTracked(c.id, v)
	}
}

func (c *Context) Verdicts() []tolerance.Verdict {
	return append([]tolerance.Verdict(nil), c.verdicts...)
}

// Debug adds a line to the test's debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debug.Printf(message, args...)
}

// DebugLogger returns a Logger that writes to the test's debug output, for handing to clients.
func (c *Context) DebugLogger() Logger {
	return &c.debug
}

// reformatError drops the blank and trace lines from a testify message, leaving the lines that
// say what went wrong.
func reformatError(err error) error {
	var kept []string
	for _, line := range strings.Split(strings.TrimSpace(err.Error()), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "Error Trace:") || strings.HasPrefix(trimmed, "Test:") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	message := strings.Join(kept, "\n")
	if len(kept) == 0 || message == err.Error() {
		return err
	}
	return errors.New(message)
}
