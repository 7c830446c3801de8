package framework

import (
	"github.com/pkg/errors"
	"testing"

	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	started  []string
	skipped  []string
	failed   []string
	tracked  []string
	errCount int
}

func (r *recordingTestLogger) TestStarted(id TestID) { r.started = append(r.started, id.String()) }
func (r *recordingTestLogger) TestError(TestID, error) { r.errCount++ }
func (r *recordingTestLogger) TestFinished(id TestID, failed bool, _ CapturedOutput) {
	if failed {
		r.failed = append(r.failed, id.String())
	}
}
func (r *recordingTestLogger) TestSkipped(id TestID, _ string) {
	r.skipped = append(r.skipped, id.String())
}
func (r *recordingTestLogger) TestTracked(id TestID, v tolerance.Verdict) {
	r.tracked = append(r.tracked, id.String()+" "+v.BugID)
}

func findResult(t *testing.T, results Results, id string) TestResult {
	for _, r := range results.Tests {
		if r.TestID.String() == id {
			return r
		}
	}
	require.Fail(t, "test result not found", id)
	return TestResult{}
}

func TestFailingSubtestDoesNotStopSiblings(t *testing.T) {
	logger := &recordingTestLogger{}
	ran := []string{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("a", func(c *Context) {
			ran = append(ran, "a")
			require.Fail(c, "a failed")
			ran = append(ran, "not reached")
		})
		c.Run("b", func(c *Context) {
			ran = append(ran, "b")
			panic(errors.New("unexpected"))
		})
		c.Run("c", func(c *Context) {
			ran = append(ran, "c")
		})
	})
	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.False(t, results.OK())
	assert.Len(t, results.Failures, 2)
	assert.Equal(t, []string{"a", "b"}, logger.failed)
	assert.Contains(t, findResult(t, results, "b").Errors[0].Error(), "unexpected panic in test")
}

func TestConfigurationErrorIsFatalToScenarioOnly(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("bad input", func(c *Context) {
			panic(&tolerance.ConfigurationError{Check: "nope", Message: "not found in bug catalogue"})
		})
		c.Run("fine", func(c *Context) {})
	})
	require.Len(t, results.Failures, 1)
	r := results.Failures[0]
	assert.Equal(t, "bad input", r.TestID.String())
	var ce *tolerance.ConfigurationError
	assert.ErrorAs(t, r.Errors[0], &ce)
	assert.False(t, findResult(t, results, "fine").Skipped)
}

func TestFilterSkipsTests(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("^slow"))
	logger := &recordingTestLogger{}
	ran := false
	Run(filters.AsFilter, logger, func(c *Context) {
		c.Run("slow things", func(c *Context) { ran = true })
	})
	assert.False(t, ran)
	assert.Equal(t, []string{"slow things"}, logger.skipped)
}

func TestFilterReachesNestedScenario(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^users list/limit"))
	var ran []string
	Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("users list", func(c *Context) {
			c.Run("limit of one", func(c *Context) { ran = append(ran, c.ID().String()) })
			c.Run("offset skips users", func(c *Context) { ran = append(ran, c.ID().String()) })
		})
		c.Run("auth", func(c *Context) { ran = append(ran, c.ID().String()) })
	})
	assert.Equal(t, []string{"users list/limit of one"}, ran)
}

func TestSkipWithReason(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("skipper", func(c *Context) { c.SkipWithReason("not applicable") })
	})
	assert.True(t, results.OK())
	assert.True(t, findResult(t, results, "skipper").Skipped)
	assert.Equal(t, []string{"skipper"}, logger.skipped)
}

func TestSubtestIDsDoNotShareBackingArrays(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("parent", func(c *Context) {
			c.Run("one", func(c *Context) {})
			c.Run("two", func(c *Context) {})
		})
	})
	findResult(t, results, "parent/one")
	findResult(t, results, "parent/two")
}

func TestRecordVerdict(t *testing.T) {
	outcome, err := tolerance.NewOutcome("login-inactive-user", "BUG-004", "", []int{401}, []int{200, 401})
	require.NoError(t, err)

	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("tolerated", func(c *Context) {
			c.RecordVerdict(tolerance.AssertTolerant(200, outcome))
		})
		c.Run("violated", func(c *Context) {
			c.RecordVerdict(tolerance.AssertTolerant(500, outcome))
		})
	})

	assert.Equal(t, []string{"tolerated BUG-004"}, logger.tracked)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "violated", results.Failures[0].TestID.String())
	var violation *tolerance.ContractViolation
	assert.ErrorAs(t, results.Failures[0].Errors[0], &violation)
	assert.Len(t, findResult(t, results, "tolerated").Verdicts, 1)
}

func TestReformatErrorDropsTestifyTrace(t *testing.T) {
	err := reformatError(errors.New("\n\tError Trace:\tfoo.go:12\n\tError:      \tNot equal\n\tTest:       \n"))
	assert.Equal(t, "\tError:      \tNot equal", err.Error())
}
