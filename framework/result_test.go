package framework

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verdict(bugID string, passed, ideal bool) tolerance.Verdict {
	return tolerance.Verdict{Check: "c", Observed: "x", Passed: passed, MatchedIdeal: ideal, BugID: bugID}
}

func makeResults() Results {
	return Results{
		Tests: []TestResult{
			{TestID: TestID{Path: []string{"auth"}}, Verdicts: []tolerance.Verdict{
				verdict("BUG-004", true, false),
				verdict("BUG-022", true, true),
			}},
			{TestID: TestID{Path: []string{"update"}}, Verdicts: []tolerance.Verdict{
				verdict("BUG-008", true, true),
				verdict("BUG-004", true, true),
				verdict("", true, true),
			}},
			{TestID: TestID{Path: []string{"delete"}}, Verdicts: []tolerance.Verdict{
				verdict("BUG-009", false, false),
			}},
		},
	}
}

func TestObservedBugs(t *testing.T) {
	assert.Equal(t, []string{"BUG-004"}, makeResults().ObservedBugs())
}

func TestUnreproducedBugs(t *testing.T) {
	// BUG-004 was observed once, and BUG-009 failed outright, so neither counts as fixed
	assert.Equal(t, []string{"BUG-008", "BUG-022"}, makeResults().UnreproducedBugs())
}

func TestRunReport(t *testing.T) {
	results := makeResults()
	results.Failures = []TestResult{results.Tests[2]}
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	report := NewRunReport(results, nil, started, started.Add(time.Minute))
	assert.Equal(t, 1, report.SchemaVersion)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "2026-01-02T03:04:05Z", report.StartedAt)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Tests, 3)
	assert.Equal(t, "failed", report.Tests[2].Status)
	assert.Equal(t, "passed", report.Tests[0].Status)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []interface{}{"BUG-004"}, decoded["observed_bugs"])
}

func TestTestIDString(t *testing.T) {
	assert.Equal(t, "rate limit/same identity", TestID{Path: []string{"rate limit", "same identity"}}.String())
}

func TestChildIDsAreIndependent(t *testing.T) {
	parent := TestID{Path: make([]string, 1, 4)}
	parent.Path[0] = "group"
	a, b := parent.Child("a"), parent.Child("b")
	assert.Equal(t, "group/a", a.String())
	assert.Equal(t, "group/b", b.String())
}
