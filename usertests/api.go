package usertests

import (
	"context"
	"strconv"

	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/config"
	"github.com/qa-tooling/user-api-contract-tests/fixtures"
	"github.com/qa-tooling/user-api-contract-tests/framework"
	"github.com/qa-tooling/user-api-contract-tests/framework/oracle"
	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"github.com/stretchr/testify/require"
)

type environment struct {
	harness    *framework.TestHarness
	client     *client.Client
	catalogue  *tolerance.Catalogue
	config     *config.Configuration
	identities *fixtures.Factory
}

// T represents a test or subtest in the user API test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner, with debug logging provided by the framework package. To make
// assertions, pass the *T to the assert and require packages as if it were a *testing.T.
//
// It also knows how to talk to the API under test. Requests made through Client are logged to
// the test's debug output, and the tolerant assertions look up their outcomes in the tracked-bug
// catalogue.
type T struct {
	context *framework.Context
	env     *environment
	ctx     context.Context
}

func newTestScope(c *framework.Context, env *environment) *T {
	return &T{context: c, env: env, ctx: context.Background()}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) Context() context.Context {
	return t.ctx
}

// ServiceInfo is what the API reported about itself when the run started.
func (t *T) ServiceInfo() framework.ServiceInfo {
	return t.env.harness.ServiceInfo()
}

func (t *T) Config() *config.Configuration {
	return t.env.config
}

// Client returns the API client, logging to this test's debug output.
func (t *T) Client() *client.Client {
	return t.env.client.WithLogger(t.context.DebugLogger())
}

// NewIdentity returns an account that has never been used before.
func (t *T) NewIdentity(prefix string) fixtures.Identity {
	id := t.env.identities.NewIdentity(prefix)
	t.Debug("new identity %s", id.Username)
	return id
}

// CreateUser registers the identity and fails the test immediately unless the API returns 201
// with a user body.
func (t *T) CreateUser(id fixtures.Identity) servicedef.UserResponse {
	result := t.Client().CreateUser(t.ctx, id)
	require.Equal(t, 201, result.StatusCode, "creating user %s: %s", id.Username, result)
	var user servicedef.UserResponse
	require.NoError(t, result.JSON(&user))
	return user
}

// CreateNewUser is shorthand for creating a fresh identity and registering it.
func (t *T) CreateNewUser(prefix string) (fixtures.Identity, servicedef.UserResponse) {
	id := t.NewIdentity(prefix)
	return id, t.CreateUser(id)
}

// Login logs the identity in and returns its bearer credential, failing the test immediately if
// that is not possible.
func (t *T) Login(id fixtures.Identity) client.Credential {
	token, err := t.Client().LoginAndGetToken(t.ctx, id.Username, id.Password)
	require.NoError(t, err)
	return client.Bearer(token)
}

// RequireStatus fails the test immediately unless the result has the expected status.
func (t *T) RequireStatus(result probe.RequestResult, status int) {
	require.Equal(t, status, result.StatusCode, "unexpected response: %s", result)
}

// Burst sends count concurrent requests, bounded by the configured burst deadline.
func (t *T) Burst(count int, factory probe.RequestFactory) probe.BurstResult {
	ctx, cancel := context.WithTimeout(t.ctx, t.env.config.Burst.Deadline)
	defer cancel()
	burst := probe.Burst(ctx, count, factory)
	t.Debug("burst of %d finished with statuses %v", count, burst.Histogram())
	require.Len(t, burst.Results, count, "burst lost results")
	require.NoError(t, burst.FactoryErr, "burst request could not be built")
	return burst
}

// Classify runs the rate-limit oracle with the default policy. An inconsistent burst fails the
// test immediately.
func (t *T) Classify(burst probe.BurstResult, identityKey string) oracle.Classification {
	c := oracle.Classify(burst, identityKey, oracle.DefaultPolicy())
	t.Debug("classified burst: %s", c)
	if c.IsHardFailure() {
		for _, r := range burst.Results {
			if r.Err != nil {
				t.Debug("  %s", r)
			}
		}
		require.Fail(t, "burst had unexpected statuses", "%s (unexpected %v)", c, c.Unexpected)
	}
	return c
}

// Sample measures the latency of sequential calls, bounded by the configured latency deadline.
func (t *T) Sample(endpoint string, invoke probe.Invoker) probe.LatencySample {
	ctx, cancel := context.WithTimeout(t.ctx, t.env.config.Latency.Deadline)
	defer cancel()
	return probe.Sample(ctx, endpoint, t.env.config.Latency.Samples, invoke)
}

// expectTolerant evaluates an observed value against the named catalogue check and records the
// verdict. A failed verdict fails the test but does not stop it. It returns true if the observed
// value was ideal.
func expectTolerant[V comparable](t *T, check string, observed V) bool {
	outcome, err := tolerance.Lookup[V](t.env.catalogue, check)
	if err != nil {
		panic(err)
	}
	v := tolerance.AssertTolerant(observed, outcome)
	t.context.RecordVerdict(v)
	return v.MatchedIdeal
}

// requireTolerant is like expectTolerant but stops the test if the verdict failed.
func requireTolerant[V comparable](t *T, check string, observed V) bool {
	outcome, err := tolerance.Lookup[V](t.env.catalogue, check)
	if err != nil {
		panic(err)
	}
	v := tolerance.AssertTolerant(observed, outcome)
	t.context.RecordVerdict(v)
	if !v.Passed {
		t.FailNow()
	}
	return v.MatchedIdeal
}

// expectStrict records a verdict that passes only for one of the ideal values.
func expectStrict[V comparable](t *T, check string, observed V, ideal ...V) bool {
	v := tolerance.AssertStrict(check, observed, ideal...)
	t.context.RecordVerdict(v)
	return v.Passed
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
