package usertests

import (
	"context"
	"fmt"

	"github.com/qa-tooling/user-api-contract-tests/fixtures"
	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
)

// createBurst sends one account creation per identity, all at once.
func createBurst(t *T, identities []fixtures.Identity) probe.BurstResult {
	c := t.Client()
	return t.Burst(len(identities), func(ctx context.Context, i int) probe.RequestResult {
		return c.CreateUser(ctx, identities[i])
	})
}

func DoRateLimitTests(t *T) {
	t.Run("same identity", func(t *T) {
		sourceIP := t.Config().Burst.RateLimitSourceIP
		identities := make([]fixtures.Identity, t.Config().Burst.RateLimitSize)
		for i := range identities {
			identities[i] = t.NewIdentity("rl_same").WithSourceIP(sourceIP)
		}
		c := t.Classify(createBurst(t, identities), sourceIP)
		expectTolerant(t, "rate-limit-same-identity", c.Outcome)
	})

	// each request claims a different client address; if the limit is keyed on that header, none
	// of them are throttled even though they all come from the same client
	t.Run("spoofed identity", func(t *T) {
		identities := make([]fixtures.Identity, t.Config().Burst.SpoofedSize)
		for i := range identities {
			identities[i] = t.NewIdentity("rl_spoof").WithSourceIP(fmt.Sprintf("10.0.0.%d", i+1))
		}
		c := t.Classify(createBurst(t, identities), "10.0.0.0/24")
		expectTolerant(t, "rate-limit-spoofed-identity", c.Outcome)
	})
}
