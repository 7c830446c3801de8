package oracle

import (
	"testing"

	"github.com/qa-tooling/user-api-contract-tests/framework/probe"

	"github.com/stretchr/testify/assert"
)

func makeBurst(statuses ...int) probe.BurstResult {
	b := probe.BurstResult{Requested: len(statuses)}
	for _, s := range statuses {
		b.Results = append(b.Results, probe.RequestResult{StatusCode: s})
	}
	return b
}

func repeat(status, n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = status
	}
	return ret
}

func TestAllSuccessesAreAcceptedAll(t *testing.T) {
	c := Classify(makeBurst(repeat(201, 110)...), "9.9.9.9", DefaultPolicy())
	assert.Equal(t, AcceptedAll, c.Outcome)
	assert.False(t, c.IsHardFailure())
	assert.Equal(t, map[int]int{201: 110}, c.Counts)
}

func TestSingleRateLimitIsThrottled(t *testing.T) {
	statuses := append(repeat(201, 109), 429)
	c := Classify(makeBurst(statuses...), "9.9.9.9", DefaultPolicy())
	assert.Equal(t, Throttled, c.Outcome)
	assert.Equal(t, "9.9.9.9", c.IdentityKey)
}

func TestRejectionsWithRateLimitAreThrottled(t *testing.T) {
	c := Classify(makeBurst(201, 400, 429, 429), "7.7.7.7", DefaultPolicy())
	assert.Equal(t, Throttled, c.Outcome)
}

func TestRejectionsWithoutRateLimitAreAcceptedAll(t *testing.T) {
	c := Classify(makeBurst(201, 400, 201), "7.7.7.7", DefaultPolicy())
	assert.Equal(t, AcceptedAll, c.Outcome)
}

func TestServerErrorIsInconsistent(t *testing.T) {
	for _, statuses := range [][]int{
		append(repeat(201, 109), 500),
		{429, 503},
		{500},
	} {
		c := Classify(makeBurst(statuses...), "9.9.9.9", DefaultPolicy())
		assert.Equal(t, Inconsistent, c.Outcome, "statuses: %v", statuses)
		assert.True(t, c.IsHardFailure())
	}
}

func TestSentinelIsInconsistent(t *testing.T) {
	c := Classify(makeBurst(201, probe.StatusTimeout, probe.StatusTransportFailure, probe.StatusTimeout),
		"9.9.9.9", DefaultPolicy())
	assert.Equal(t, Inconsistent, c.Outcome)
	assert.Equal(t, []int{probe.StatusTimeout, probe.StatusTransportFailure}, c.Unexpected)
}

func TestEmptyBurstIsAcceptedAll(t *testing.T) {
	assert.Equal(t, AcceptedAll, Classify(probe.BurstResult{}, "x", DefaultPolicy()).Outcome)
}

func TestCustomPolicy(t *testing.T) {
	p := Policy{SuccessCodes: []int{200}, RateLimitCode: 429}
	assert.Equal(t, Inconsistent, Classify(makeBurst(200, 201), "x", p).Outcome)
	assert.ElementsMatch(t, []int{200, 429}, p.Acceptable())
}

func TestClassificationString(t *testing.T) {
	c := Classify(makeBurst(201, 201, 429), "9.9.9.9", DefaultPolicy())
	assert.Equal(t, `THROTTLED for "9.9.9.9" [201 x2, 429 x1]`, c.String())
}
