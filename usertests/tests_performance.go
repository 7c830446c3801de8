package usertests

import (
	"context"

	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
)

type latencyTarget struct {
	name   string
	invoke func(c *client.Client) probe.Invoker
}

var latencyTargets = []latencyTarget{
	{"root", func(c *client.Client) probe.Invoker {
		return func(ctx context.Context) probe.RequestResult { return c.Root(ctx) }
	}},
	{"health", func(c *client.Client) probe.Invoker {
		return func(ctx context.Context) probe.RequestResult { return c.Health(ctx) }
	}},
	{"stats", func(c *client.Client) probe.Invoker {
		return func(ctx context.Context) probe.RequestResult { return c.Stats(ctx, false) }
	}},
	{"user list", func(c *client.Client) probe.Invoker {
		params := servicedef.ListUsersParams{Limit: ldvalue.NewOptionalInt(10)}
		return func(ctx context.Context) probe.RequestResult { return c.ListUsers(ctx, params) }
	}},
}

func DoPerformanceTests(t *T) {
	for _, target := range latencyTargets {
		target := target
		t.Run(target.name, func(t *T) {
			threshold := float64(t.Config().Latency.P95Threshold.Milliseconds())
			sample := t.Sample(target.name, target.invoke(t.Client()))
			t.Debug("latency of %s: %+v", target.name, sample.Summary())

			for i, status := range sample.Statuses {
				assert.Equal(t, 200, status, "sample %d", i)
			}
			p95 := sample.P(0.95)
			assert.Less(t, p95, threshold, "p95 latency of %s in ms", target.name)
		})
	}
}
