package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/qa-tooling/user-api-contract-tests/framework"
	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"

	"github.com/fatih/color"
)

var (
	failedColor  = color.New(color.FgRed, color.Bold)
	skippedColor = color.New(color.FgYellow)
	trackedColor = color.New(color.FgCyan)
	passedColor  = color.New(color.FgGreen)
)

// ConsoleTestLogger writes the progress of the test run to standard output.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		failedColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(os.Stdout, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		skippedColor.Printf("  SKIPPED: %s\n", id)
	} else {
		skippedColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c *ConsoleTestLogger) TestTracked(id framework.TestID, verdict tolerance.Verdict) {
	trackedColor.Printf("  TRACKED %s: %s\n", verdict.BugID, verdict)
}

// PrintResults writes the summary of a test run.
func PrintResults(out io.Writer, results framework.Results) {
	if observed := results.ObservedBugs(); len(observed) > 0 {
		trackedColor.Fprintf(out, "Tracked bugs observed in this run: %s\n", strings.Join(observed, ", "))
	}
	if unreproduced := results.UnreproducedBugs(); len(unreproduced) > 0 {
		trackedColor.Fprintf(out, "Tracked bugs that did not reproduce (possibly fixed): %s\n",
			strings.Join(unreproduced, ", "))
	}
	if results.OK() {
		passedColor.Fprintln(out, "All tests passed")
		return
	}
	failedColor.Fprintf(out, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "* %s\n", f.TestID)
		for _, err := range f.Errors {
			fmt.Fprintf(out, "    %s\n", firstLine(err))
		}
	}
}

// firstLine skips the blank and trace lines that testify puts at the start of its messages.
func firstLine(err error) string {
	for _, line := range strings.Split(err.Error(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "Error Trace:") {
			return trimmed
		}
	}
	return ""
}
