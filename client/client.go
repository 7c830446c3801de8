// Package client sends requests to the user management API and captures their results.
//
// A Client never treats an HTTP error status as a Go error: every call returns a
// probe.RequestResult, and it is up to the caller to decide which statuses are acceptable.
// Transport-level failures are reported as sentinel statuses in the result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/qa-tooling/user-api-contract-tests/framework"
	"github.com/qa-tooling/user-api-contract-tests/framework/probe"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// ForwardedForHeader carries the client identity that the API uses for rate limiting.
	ForwardedForHeader = "X-Forwarded-For"
	RequestIDHeader    = "X-Request-Id"
)

// Client talks to one instance of the API under test.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     framework.Logger
}

// New creates a Client. The timeout applies to each request individually.
func New(baseURL string, timeout time.Duration, logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// bursts open many connections to the same host at once
	transport.MaxIdleConnsPerHost = 200
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		logger:     logger,
	}
}

// WithLogger returns a Client that shares this one's connections but logs to a different logger.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	c1 := *c
	if logger == nil {
		logger = framework.NullLogger()
	}
	c1.logger = logger
	return &c1
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call to the API. Body, if not nil, is encoded as JSON.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     interface{}
	Headers  http.Header
	Auth     Credential
	SourceIP string
}

// Send performs exactly one network call and captures its result. It does not fail on non-2xx
// statuses. If the request cannot be made or does not complete, the result has the status
// probe.StatusTransportFailure or probe.StatusTimeout and the cause in its Err field.
func (c *Client) Send(ctx context.Context, r Request) probe.RequestResult {
	started := time.Now()
	req, err := c.newHTTPRequest(ctx, r)
	if err != nil {
		c.logger.Printf("%s %s could not be sent: %s", r.Method, r.Path, err)
		return probe.FailedResult(err, 0)
	}
	requestID := req.Header.Get(RequestIDHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(started)
		failure := &probe.TransportFailure{Method: r.Method, Path: r.Path, Err: err}
		c.logger.Printf("%s %s [%s] failed after %s: %s", r.Method, r.Path, requestID, elapsed, err)
		return probe.FailedResult(failure, elapsed)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	elapsed := time.Since(started)
	if err != nil {
		failure := &probe.TransportFailure{Method: r.Method, Path: r.Path, Err: err}
		c.logger.Printf("%s %s [%s] body could not be read: %s", r.Method, r.Path, requestID, err)
		return probe.FailedResult(failure, elapsed)
	}
	result := probe.RequestResult{StatusCode: resp.StatusCode, Body: body, Elapsed: elapsed}
	c.logger.Printf("%s %s [%s] -> %s", r.Method, r.Path, requestID, result)
	return result
}

func (c *Client) newHTTPRequest(ctx context.Context, r Request) (*http.Request, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}
	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "cannot encode request body")
		}
		body = bytes.NewReader(data)
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid request %s %s", method, r.Path)
	}
	for name, values := range r.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if r.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if r.Auth != nil {
		req.Header.Set("Authorization", r.Auth.AuthorizationHeader())
	}
	if r.SourceIP != "" {
		req.Header.Set(ForwardedForHeader, r.SourceIP)
	}
	return req, nil
}

// Get is a shortcut for a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) probe.RequestResult {
	return c.Send(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}
