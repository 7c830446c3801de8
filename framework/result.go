package framework

import (
	"sort"
	"strings"
	"time"

	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"
)

// Results is everything that happened in one run. Tests is in completion order, so a group
// comes after its children.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Errors   []error
	Skipped  bool
	Duration time.Duration
	Verdicts []tolerance.Verdict

	DebugOutput CapturedOutput
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// ObservedBugs returns the tracked bug IDs for which at least one tolerated deviation was seen
// during the run, sorted.
func (r Results) ObservedBugs() []string {
	seen := make(map[string]bool)
	for _, t := range r.Tests {
		for _, v := range t.Verdicts {
			if v.IsDeviation() {
				seen[v.BugID] = true
			}
		}
	}
	return sortedKeys(seen)
}

// UnreproducedBugs returns the tracked bug IDs whose checks were all evaluated in this run and
// all matched the ideal outcome. These bugs may have been fixed in the API under test.
func (r Results) UnreproducedBugs() []string {
	matched := make(map[string]bool)
	for _, t := range r.Tests {
		for _, v := range t.Verdicts {
			if v.BugID == "" {
				continue
			}
			previous, ok := matched[v.BugID]
			matched[v.BugID] = (previous || !ok) && v.Passed && v.MatchedIdeal
		}
	}
	fixed := make(map[string]bool)
	for id, all := range matched {
		if all {
			fixed[id] = true
		}
	}
	return sortedKeys(fixed)
}

func sortedKeys(m map[string]bool) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// TestID is the path of names from the top-level group down to a scenario.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Child returns the ID of a subtest. It never shares a backing array with t.
func (t TestID) Child(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	return TestID{Path: append(append(path, t.Path...), name)}
}
