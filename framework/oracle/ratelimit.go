// Package oracle classifies the statuses of a request burst against a rate-limiting policy.
package oracle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
)

// Outcome is the classification of a burst.
type Outcome string

const (
	// AcceptedAll means that rate limiting did not engage: every request either succeeded or was
	// rejected for its own reasons.
	AcceptedAll Outcome = "ACCEPTED_ALL"
	// Throttled means at least one request was rate-limited, and every other status was expected.
	Throttled Outcome = "THROTTLED"
	// Inconsistent means at least one status was outside the acceptable set. This is always a
	// hard failure.
	Inconsistent Outcome = "INCONSISTENT"
)

// Policy describes which statuses are acceptable for a burst.
type Policy struct {
	SuccessCodes   []int
	RateLimitCode  int
	RejectionCodes []int
}

// DefaultPolicy is the policy for bursts of account creations: 201 on success, 429 when
// throttled, and 400 for requests that are individually rejected.
func DefaultPolicy() Policy {
	return Policy{
		SuccessCodes:   []int{201},
		RateLimitCode:  429,
		RejectionCodes: []int{400},
	}
}

// Acceptable returns every status the policy allows.
func (p Policy) Acceptable() []int {
	ret := append(append([]int(nil), p.SuccessCodes...), p.RejectionCodes...)
	return append(ret, p.RateLimitCode)
}

// Classification is the result of Classify.
type Classification struct {
	Outcome     Outcome
	IdentityKey string
	Counts      map[int]int
	Unexpected  []int
}

// IsHardFailure is true only for an Inconsistent outcome.
func (c Classification) IsHardFailure() bool {
	return c.Outcome == Inconsistent
}

func (c Classification) String() string {
	codes := make([]int, 0, len(c.Counts))
	for code := range c.Counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%d x%d", code, c.Counts[code]))
	}
	return fmt.Sprintf("%s for %q [%s]", c.Outcome, c.IdentityKey, strings.Join(parts, ", "))
}

// Classify examines every status in the burst. Any status outside the policy's acceptable set,
// including transport failure and timeout sentinels, makes the burst Inconsistent. Otherwise the
// burst is Throttled if any request got the rate-limit status, or AcceptedAll if none did.
//
// The identity key names the client identity the burst was sent as; it is carried through for
// reporting.
func Classify(burst probe.BurstResult, identityKey string, policy Policy) Classification {
	c := Classification{
		Outcome:     AcceptedAll,
		IdentityKey: identityKey,
		Counts:      burst.Histogram(),
	}
	throttled := false
	for _, status := range burst.StatusCodes() {
		switch {
		case status == policy.RateLimitCode:
			throttled = true
		case containsInt(policy.SuccessCodes, status), containsInt(policy.RejectionCodes, status):
		default:
			if !containsInt(c.Unexpected, status) {
				c.Unexpected = append(c.Unexpected, status)
			}
		}
	}
	switch {
	case len(c.Unexpected) > 0:
		sort.Ints(c.Unexpected)
		c.Outcome = Inconsistent
	case throttled:
		c.Outcome = Throttled
	}
	return c
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
