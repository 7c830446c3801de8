package usertests

import (
	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoBoundaryTests(t *T) {
	t.Run("update without credentials", func(t *T) {
		id, user := t.CreateNewUser("bound_noauth")
		result := t.Client().UpdateUser(t.Context(), user.ID,
			servicedef.UpdateUserParams{Email: "changed_" + id.Email}, nil)
		assert.Equal(t, 401, result.StatusCode, "%s", result)

		fetched := t.Client().GetUser(t.Context(), itoa(user.ID))
		t.RequireStatus(fetched, 200)
		var after servicedef.UserResponse
		require.NoError(t, fetched.JSON(&after))
		assert.Equal(t, id.Email, after.Email, "user was changed by an unauthenticated request")
	})

	t.Run("update with invalid credentials", func(t *T) {
		_, user := t.CreateNewUser("bound_badauth")
		for name, auth := range map[string]client.Credential{
			"unknown token": client.Bearer("not-a-real-token"),
			"wrong scheme":  client.RawAuthorization("Token abc"),
		} {
			result := t.Client().UpdateUser(t.Context(), user.ID,
				servicedef.UpdateUserParams{Age: ldvalue.NewOptionalInt(40)}, auth)
			assert.Equal(t, 401, result.StatusCode, "%s: %s", name, result)
		}
	})

	t.Run("delete with wrong password", func(t *T) {
		id, user := t.CreateNewUser("bound_delete")
		result := t.Client().DeleteUser(t.Context(), user.ID, client.Basic(id.Username, "wrong-password"))
		assert.Equal(t, 401, result.StatusCode, "%s", result)
	})

	t.Run("limit of zero returns an array", func(t *T) {
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{Limit: ldvalue.NewOptionalInt(0)})
		requireUserList(t, result)
	})

	t.Run("limit of one hundred", func(t *T) {
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{Limit: ldvalue.NewOptionalInt(100)})
		assert.LessOrEqual(t, len(requireUserList(t, result)), 100)
	})

	t.Run("negative limit", func(t *T) {
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{Limit: ldvalue.NewOptionalInt(-1)})
		expectTolerant(t, "list-negative-limit", result.StatusCode)
	})

	t.Run("invalid sort field", func(t *T) {
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{SortBy: "password"})
		expectTolerant(t, "list-invalid-sort", result.StatusCode)
	})

	t.Run("invalid sort order", func(t *T) {
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{Order: "sideways"})
		expectTolerant(t, "list-invalid-sort", result.StatusCode)
	})

	t.Run("malformed user ID", func(t *T) {
		result := t.Client().GetUser(t.Context(), "abc")
		expectStrict(t, "get-malformed-id", result.StatusCode, 400)
	})

	t.Run("unknown user ID", func(t *T) {
		result := t.Client().GetUser(t.Context(), "999999")
		expectStrict(t, "get-unknown-id", result.StatusCode, 404)
	})
}
