// Package tolerance implements assertions that can accept a known defect as one of several
// acceptable outcomes, while still recording that the defect was observed.
//
// Each check has an ideal set of values (what a correct API returns) and a tolerated set, which
// is a superset of the ideal set. Observing a value that is tolerated but not ideal is not a test
// failure, but the resulting Verdict carries the tracked bug ID so it can be reported.
package tolerance

import (
	"fmt"
	"strings"
)

// Outcome is the canonical record of one tolerant check.
type Outcome[V comparable] struct {
	Check       string
	BugID       string
	Description string
	Ideal       []V
	Tolerated   []V
}

// NewOutcome builds an Outcome, verifying that every ideal value is also tolerated. If tolerated
// is empty, the check is strict and tolerates only the ideal values.
func NewOutcome[V comparable](check, bugID, description string, ideal, tolerated []V) (Outcome[V], error) {
	if len(ideal) == 0 {
		return Outcome[V]{}, &ConfigurationError{Check: check, Message: "no ideal values"}
	}
	if len(tolerated) == 0 {
		tolerated = ideal
	}
	for _, v := range ideal {
		if !contains(tolerated, v) {
			return Outcome[V]{}, &ConfigurationError{
				Check:   check,
				Message: fmt.Sprintf("ideal value %v is not in the tolerated set %v", v, tolerated),
			}
		}
	}
	return Outcome[V]{
		Check:       check,
		BugID:       bugID,
		Description: description,
		Ideal:       append([]V(nil), ideal...),
		Tolerated:   append([]V(nil), tolerated...),
	}, nil
}

// IsStrict is true if the outcome tolerates nothing beyond its ideal values.
func (o Outcome[V]) IsStrict() bool {
	for _, v := range o.Tolerated {
		if !contains(o.Ideal, v) {
			return false
		}
	}
	return true
}

// Verdict is the result of evaluating one observed value against an Outcome.
type Verdict struct {
	Check        string
	Observed     string
	Passed       bool
	MatchedIdeal bool
	BugID        string
	Description  string
	Expected     string
}

// IsDeviation is true for a passing verdict that only matched because of a tracked bug.
func (v Verdict) IsDeviation() bool {
	return v.Passed && !v.MatchedIdeal && v.BugID != ""
}

func (v Verdict) String() string {
	switch {
	case !v.Passed:
		return fmt.Sprintf("%s: observed %s, expected one of %s", v.Check, v.Observed, v.Expected)
	case v.MatchedIdeal:
		return fmt.Sprintf("%s: observed %s", v.Check, v.Observed)
	default:
		return fmt.Sprintf("%s: observed %s, tolerated as %s (%s)", v.Check, v.Observed, v.BugID, v.Description)
	}
}

// AssertTolerant evaluates observed against the outcome.
func AssertTolerant[V comparable](observed V, outcome Outcome[V]) Verdict {
	v := Verdict{
		Check:       outcome.Check,
		Observed:    fmt.Sprint(observed),
		Description: outcome.Description,
		Expected:    formatSet(outcome.Ideal),
	}
	// the bug ID is kept on every verdict so that a failure names the bug it relates to, and a
	// bug which stopped reproducing can be reported
	v.BugID = outcome.BugID
	switch {
	case contains(outcome.Ideal, observed):
		v.Passed, v.MatchedIdeal = true, true
	case contains(outcome.Tolerated, observed):
		v.Passed = true
	default:
		v.Expected = formatSet(outcome.Tolerated)
	}
	return v
}

// AssertStrict fails unless observed is one of the ideal values.
func AssertStrict[V comparable](check string, observed V, ideal ...V) Verdict {
	v := Verdict{
		Check:    check,
		Observed: fmt.Sprint(observed),
		Expected: formatSet(ideal),
	}
	if contains(ideal, observed) {
		v.Passed, v.MatchedIdeal = true, true
	}
	return v
}

func contains[V comparable](values []V, v V) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func formatSet[V comparable](values []V) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
