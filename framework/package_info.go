// Package framework contains the low-level implementation of test harness infrastructure
// that is independent of the API being tested.
//
// The general model is:
//
// 1. The test harness talks to an API under test over HTTP, and first verifies that it is up by
// querying its root resource.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. A failing test never prevents its siblings from running.
//
// 3. Besides pass/fail, a test can record verdicts from the tolerance package. Verdicts that
// only passed because of a known, tracked defect are reported separately, so the run shows
// which tracked bugs are still present and which seem to have been fixed.
//
// Request measurement lives in the probe subpackage, rate-limit classification in oracle, and
// the tolerant assertion model in tolerance.
package framework
