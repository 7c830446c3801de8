package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/qa-tooling/user-api-contract-tests/fixtures"
	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"
)

// CreateParams converts an identity into the body of a create request.
func CreateParams(id fixtures.Identity) servicedef.CreateUserParams {
	return servicedef.CreateUserParams{
		Username: id.Username,
		Email:    id.Email,
		Password: id.Password,
		Age:      id.Age,
		Phone:    id.Phone,
	}
}

// CreateUser registers an identity. If the identity has a source IP, it is sent as the
// forwarded client address.
func (c *Client) CreateUser(ctx context.Context, id fixtures.Identity) probe.RequestResult {
	return c.CreateUserWithParams(ctx, CreateParams(id), id.SourceIP)
}

// CreateUserWithParams registers a user with an arbitrary, possibly invalid, body.
func (c *Client) CreateUserWithParams(ctx context.Context, params servicedef.CreateUserParams, sourceIP string) probe.RequestResult {
	return c.Send(ctx, Request{
		Method:   http.MethodPost,
		Path:     servicedef.PathUsers,
		Body:     params,
		SourceIP: sourceIP,
	})
}

// BulkCreateUsers registers several users in one request.
func (c *Client) BulkCreateUsers(ctx context.Context, params []servicedef.CreateUserParams) probe.RequestResult {
	return c.Send(ctx, Request{Method: http.MethodPost, Path: servicedef.PathUsersBulk, Body: params})
}

// GetUser fetches a user by ID. The ID is a string so that malformed IDs can be requested.
func (c *Client) GetUser(ctx context.Context, id string) probe.RequestResult {
	return c.Get(ctx, servicedef.UserPath(id), nil)
}

func (c *Client) ListUsers(ctx context.Context, params servicedef.ListUsersParams) probe.RequestResult {
	return c.Get(ctx, servicedef.PathUsers, params.Query())
}

func (c *Client) SearchUsers(ctx context.Context, params servicedef.SearchParams) probe.RequestResult {
	return c.Get(ctx, servicedef.PathUserSearch, params.Query())
}

// UpdateUser changes a user. A nil credential sends no Authorization header.
func (c *Client) UpdateUser(ctx context.Context, id int, params servicedef.UpdateUserParams, auth Credential) probe.RequestResult {
	return c.Send(ctx, Request{
		Method: http.MethodPut,
		Path:   servicedef.UserPath(strconv.Itoa(id)),
		Body:   params,
		Auth:   auth,
	})
}

// DeleteUser deactivates a user. A nil credential sends no Authorization header.
func (c *Client) DeleteUser(ctx context.Context, id int, auth Credential) probe.RequestResult {
	return c.Send(ctx, Request{
		Method: http.MethodDelete,
		Path:   servicedef.UserPath(strconv.Itoa(id)),
		Auth:   auth,
	})
}

func (c *Client) Root(ctx context.Context) probe.RequestResult {
	return c.Get(ctx, servicedef.PathRoot, nil)
}

func (c *Client) Health(ctx context.Context) probe.RequestResult {
	return c.Get(ctx, servicedef.PathHealth, nil)
}

// Stats fetches the stats resource, optionally with the include_details flag.
func (c *Client) Stats(ctx context.Context, includeDetails bool) probe.RequestResult {
	var query url.Values
	if includeDetails {
		query = url.Values{"include_details": {"true"}}
	}
	return c.Get(ctx, servicedef.PathStats, query)
}
