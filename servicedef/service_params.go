// Package servicedef contains the JSON request and response bodies of the user management API.
package servicedef

import (
	"net/url"
	"strconv"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	PathRoot       = "/"
	PathHealth     = "/health"
	PathStats      = "/stats"
	PathUsers      = "/users"
	PathUsersBulk  = "/users/bulk"
	PathUserSearch = "/users/search"
	PathLogin      = "/login"
	PathLogout     = "/logout"
)

// UserPath returns the path of a single user resource. The ID is a string so that malformed IDs
// can be sent.
func UserPath(id string) string {
	return PathUsers + "/" + id
}

type CreateUserParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Phone    string `json:"phone,omitempty"`
}

// UpdateUserParams is the body of PUT /users/{id}. Fields left empty or undefined are not
// changed.
type UpdateUserParams struct {
	Email string              `json:"email,omitempty"`
	Age   ldvalue.OptionalInt `json:"age,omitempty"`
	Phone string              `json:"phone,omitempty"`
}

// UserResponse is the representation of a user returned by every user endpoint.
type UserResponse struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Age       int     `json:"age"`
	CreatedAt string  `json:"created_at"`
	IsActive  bool    `json:"is_active"`
	Phone     *string `json:"phone"`
	LastLogin *string `json:"last_login"`
}

// UserResponseFields is every field of UserResponse. Optional fields are present with a null
// value rather than omitted.
var UserResponseFields = []string{"id", "username", "email", "age", "created_at", "is_active", "phone", "last_login"}

type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DeleteUserResponse struct {
	Message   string `json:"message"`
	WasActive bool   `json:"was_active"`
}

type BulkCreateResponse struct {
	Created int            `json:"created"`
	Users   []UserResponse `json:"users"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	MemoryUsers    int    `json:"memory_users"`
	MemorySessions int    `json:"memory_sessions"`
}

// HealthResponseFields is the exact key set of the health resource.
var HealthResponseFields = []string{"status", "timestamp", "memory_users", "memory_sessions"}

type StatsResponse struct {
	TotalUsers     int      `json:"total_users"`
	ActiveUsers    int      `json:"active_users"`
	InactiveUsers  int      `json:"inactive_users"`
	ActiveSessions int      `json:"active_sessions"`
	APIVersion     string   `json:"api_version"`
	UserEmails     []string `json:"user_emails,omitempty"`
	SessionTokens  []string `json:"session_tokens,omitempty"`
}

// StatsResponseFields is the exact key set of the stats resource without details.
var StatsResponseFields = []string{"total_users", "active_users", "inactive_users", "active_sessions", "api_version"}

// ListUsersParams are the query parameters of GET /users.
type ListUsersParams struct {
	Limit  ldvalue.OptionalInt
	Offset ldvalue.OptionalInt
	SortBy string
	Order  string
}

func (p ListUsersParams) Query() url.Values {
	q := make(url.Values)
	if p.Limit.IsDefined() {
		q.Set("limit", strconv.Itoa(p.Limit.IntValue()))
	}
	if p.Offset.IsDefined() {
		q.Set("offset", strconv.Itoa(p.Offset.IntValue()))
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	return q
}

// SearchParams are the query parameters of GET /users/search.
type SearchParams struct {
	Text  string
	Field string
	Exact bool
}

func (p SearchParams) Query() url.Values {
	q := make(url.Values)
	q.Set("q", p.Text)
	if p.Field != "" {
		q.Set("field", p.Field)
	}
	if p.Exact {
		q.Set("exact", "true")
	}
	return q
}
