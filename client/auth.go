package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"github.com/pkg/errors"
)

// ErrAuthFailure is the cause of every *AuthFailure.
var ErrAuthFailure = errors.New("authentication failed")

// AuthFailure is returned when a login that a scenario depends on does not produce a token.
type AuthFailure struct {
	Username string
	Result   probe.RequestResult
	Reason   string
}

func (e *AuthFailure) Error() string {
	return fmt.Sprintf("login as %q failed: %s (%s)", e.Username, e.Reason, e.Result)
}

func (e *AuthFailure) Unwrap() error {
	return ErrAuthFailure
}

// Credential is the authentication material attached to a request.
type Credential interface {
	AuthorizationHeader() string
}

type bearerCredential string

func (b bearerCredential) AuthorizationHeader() string { return "Bearer " + string(b) }

type basicCredential struct {
	username, password string
}

func (b basicCredential) AuthorizationHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(b.username+":"+b.password))
}

type rawCredential string

func (r rawCredential) AuthorizationHeader() string { return string(r) }

// Bearer authenticates with a session token.
func Bearer(token string) Credential { return bearerCredential(token) }

// Basic authenticates with a username and password.
func Basic(username, password string) Credential {
	return basicCredential{username: username, password: password}
}

// RawAuthorization sends the given Authorization header value as is, for testing malformed
// credentials.
func RawAuthorization(value string) Credential { return rawCredential(value) }

// Login posts credentials to the login endpoint.
func (c *Client) Login(ctx context.Context, username, password string) probe.RequestResult {
	return c.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   servicedef.PathLogin,
		Body:   servicedef.LoginParams{Username: username, Password: password},
	})
}

// Logout ends a session. A nil credential sends no Authorization header.
func (c *Client) Logout(ctx context.Context, auth Credential) probe.RequestResult {
	return c.Send(ctx, Request{Method: http.MethodPost, Path: servicedef.PathLogout, Auth: auth})
}

// LoginAndGetToken logs in and returns the session token. It returns an *AuthFailure if the
// status is not 200 or the response has no token.
func (c *Client) LoginAndGetToken(ctx context.Context, username, password string) (string, error) {
	result := c.Login(ctx, username, password)
	if result.StatusCode != http.StatusOK {
		return "", &AuthFailure{Username: username, Result: result, Reason: "unexpected status"}
	}
	value, err := result.Search("token")
	if err != nil {
		return "", &AuthFailure{Username: username, Result: result, Reason: err.Error()}
	}
	token, ok := value.(string)
	if !ok || token == "" {
		return "", &AuthFailure{Username: username, Result: result, Reason: "response has no token"}
	}
	return token, nil
}
