// Package probe contains the low-level request measurement tools used by the test suite: the
// captured result of a single request, a concurrent burst driver, and a sequential latency
// sampler.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmespath/go-jmespath"
	"github.com/pkg/errors"
)

const (
	// StatusTransportFailure is recorded when a request could not complete at the transport level.
	StatusTransportFailure = -1
	// StatusTimeout is recorded when a request was still pending when its deadline expired.
	StatusTimeout = -2
)

// RequestResult is the captured outcome of exactly one HTTP request. It is never modified after
// being captured.
type RequestResult struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
	Err        error
}

// TransportFailure describes a request that never produced an HTTP status.
type TransportFailure struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("transport failure for %s %s: %s", e.Method, e.Path, e.Err)
}

func (e *TransportFailure) Unwrap() error { return e.Err }

// FailedResult converts an error from a request into a sentinel result. Context deadline
// expiry becomes StatusTimeout; anything else becomes StatusTransportFailure.
func FailedResult(err error, elapsed time.Duration) RequestResult {
	status := StatusTransportFailure
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusTimeout
	}
	return RequestResult{StatusCode: status, Elapsed: elapsed, Err: err}
}

// ElapsedMs returns the wall-clock duration of the request in milliseconds.
func (r RequestResult) ElapsedMs() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// IsSentinel is true if the result does not carry a real HTTP status.
func (r RequestResult) IsSentinel() bool {
	return r.StatusCode == StatusTransportFailure || r.StatusCode == StatusTimeout
}

func (r RequestResult) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into target.
func (r RequestResult) JSON(target interface{}) error {
	if len(r.Body) == 0 {
		return errors.Errorf("response (status %d) had no body", r.StatusCode)
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return errors.Wrapf(err, "malformed JSON response (status %d)", r.StatusCode)
	}
	return nil
}

// Search evaluates a JMESPath expression against the JSON response body.
func (r RequestResult) Search(expression string) (interface{}, error) {
	var data interface{}
	if err := r.JSON(&data); err != nil {
		return nil, err
	}
	result, err := jmespath.Search(expression, data)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot evaluate %q", expression)
	}
	return result, nil
}

func (r RequestResult) String() string {
	switch r.StatusCode {
	case StatusTransportFailure:
		return fmt.Sprintf("transport failure after %.1fms: %s", r.ElapsedMs(), r.Err)
	case StatusTimeout:
		return fmt.Sprintf("timed out after %.1fms", r.ElapsedMs())
	}
	return fmt.Sprintf("HTTP %d after %.1fms: %s", r.StatusCode, r.ElapsedMs(), truncate(string(r.Body), 200))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
