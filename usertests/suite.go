package usertests

import (
	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/config"
	"github.com/qa-tooling/user-api-contract-tests/fixtures"
	"github.com/qa-tooling/user-api-contract-tests/framework"
	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"
)

func RunTestSuite(
	harness *framework.TestHarness,
	apiClient *client.Client,
	catalogue *tolerance.Catalogue,
	cfg *config.Configuration,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env := &environment{
		harness:    harness,
		client:     apiClient,
		catalogue:  catalogue,
		config:     cfg,
		identities: &fixtures.Factory{},
	}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Run("root", DoRootTests)
		t.Run("schema", DoSchemaTests)
		t.Run("users create", DoCreateUserTests)
		t.Run("users list", DoListUserTests)
		t.Run("negative and boundaries", DoBoundaryTests)
		t.Run("auth", DoAuthTests)
		t.Run("update and delete", DoUpdateDeleteTests)
		t.Run("search, stats, health", DoSearchStatsHealthTests)
		t.Run("rate limit", DoRateLimitTests)
		t.Run("concurrency", DoConcurrencyTests)
		t.Run("performance", DoPerformanceTests)
	})
}
