package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qa-tooling/user-api-contract-tests/fixtures"
	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/pkg/errors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClient(handler http.Handler, action func(c *Client)) {
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		action(New(server.URL, 5*time.Second, nil))
	})
}

func TestSendDoesNotFailOnErrorStatus(t *testing.T) {
	withClient(httphelpers.HandlerWithResponse(500, nil, []byte(`{"detail":"boom"}`)), func(c *Client) {
		r := c.Root(context.Background())
		assert.Equal(t, 500, r.StatusCode)
		assert.NoError(t, r.Err)
		assert.Equal(t, `{"detail":"boom"}`, string(r.Body))
		assert.Greater(t, r.Elapsed, time.Duration(0))
	})
}

func TestCreateUserSendsJSONBodyAndForwardedFor(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(201))
	withClient(handler, func(c *Client) {
		id := fixtures.NewIdentity("client").WithSourceIP("9.9.9.9")
		r := c.CreateUser(context.Background(), id)
		assert.Equal(t, 201, r.StatusCode)

		req := <-requestsCh
		assert.Equal(t, "POST", req.Request.Method)
		assert.Equal(t, "/users", req.Request.URL.Path)
		assert.Equal(t, "9.9.9.9", req.Request.Header.Get("X-Forwarded-For"))
		assert.Equal(t, "application/json", req.Request.Header.Get("Content-Type"))
		assert.NotEmpty(t, req.Request.Header.Get("X-Request-Id"))

		var body servicedef.CreateUserParams
		require.NoError(t, json.Unmarshal(req.Body, &body))
		assert.Equal(t, CreateParams(id), body)
	})
}

func TestAuthHeaders(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	withClient(handler, func(c *Client) {
		c.UpdateUser(context.Background(), 5, servicedef.UpdateUserParams{Age: ldvalue.NewOptionalInt(30)}, Bearer("tok"))
		req := <-requestsCh
		assert.Equal(t, "PUT", req.Request.Method)
		assert.Equal(t, "/users/5", req.Request.URL.Path)
		assert.Equal(t, "Bearer tok", req.Request.Header.Get("Authorization"))

		c.DeleteUser(context.Background(), 5, Basic("alice", "secret12"))
		req = <-requestsCh
		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:secret12"))
		assert.Equal(t, expected, req.Request.Header.Get("Authorization"))

		c.DeleteUser(context.Background(), 5, RawAuthorization("Basic abc"))
		req = <-requestsCh
		assert.Equal(t, "Basic abc", req.Request.Header.Get("Authorization"))

		c.UpdateUser(context.Background(), 5, servicedef.UpdateUserParams{}, nil)
		req = <-requestsCh
		assert.Empty(t, req.Request.Header.Get("Authorization"))
	})
}

func TestListUsersQuery(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse([]interface{}{}, nil))
	withClient(handler, func(c *Client) {
		c.ListUsers(context.Background(), servicedef.ListUsersParams{
			Limit: ldvalue.NewOptionalInt(0), SortBy: "created_at", Order: "desc",
		})
		req := <-requestsCh
		q := req.Request.URL.Query()
		assert.Equal(t, "0", q.Get("limit"))
		assert.Equal(t, "created_at", q.Get("sort_by"))
		assert.Equal(t, "desc", q.Get("order"))
		assert.False(t, q.Has("offset"))
	})
}

func TestSendToUnreachableServerIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	r := New(url, time.Second, nil).Root(context.Background())
	assert.Equal(t, probe.StatusTransportFailure, r.StatusCode)
	var failure *probe.TransportFailure
	assert.True(t, errors.As(r.Err, &failure))
}

func TestSendPastDeadlineIsTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(200)
	})
	withClient(slow, func(c *Client) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		r := c.Health(ctx)
		assert.Equal(t, probe.StatusTimeout, r.StatusCode)
	})
}

func TestLoginAndGetToken(t *testing.T) {
	handler := httphelpers.HandlerWithJSONResponse(servicedef.LoginResponse{Token: "abc", ExpiresAt: "later"}, nil)
	withClient(handler, func(c *Client) {
		token, err := c.LoginAndGetToken(context.Background(), "alice", "secret12")
		require.NoError(t, err)
		assert.Equal(t, "abc", token)
	})
}

func TestLoginAndGetTokenFailures(t *testing.T) {
	for name, handler := range map[string]http.Handler{
		"unauthorized": httphelpers.HandlerWithStatus(401),
		"no token":     httphelpers.HandlerWithJSONResponse(map[string]string{"expires_at": "later"}, nil),
		"empty token":  httphelpers.HandlerWithJSONResponse(map[string]string{"token": ""}, nil),
		"no body":      httphelpers.HandlerWithStatus(200),
	} {
		t.Run(name, func(t *testing.T) {
			withClient(handler, func(c *Client) {
				_, err := c.LoginAndGetToken(context.Background(), "alice", "secret12")
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrAuthFailure))
				var af *AuthFailure
				require.True(t, errors.As(err, &af))
				assert.Equal(t, "alice", af.Username)
			})
		})
	}
}

func TestStatsIncludeDetails(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	withClient(handler, func(c *Client) {
		c.Stats(context.Background(), true)
		assert.Equal(t, "true", (<-requestsCh).Request.URL.Query().Get("include_details"))
		c.Stats(context.Background(), false)
		assert.Empty(t, (<-requestsCh).Request.URL.RawQuery)
	})
}
