package usertests

import (
	"sort"

	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUserList(t *T, result probe.RequestResult) []servicedef.UserResponse {
	t.RequireStatus(result, 200)
	var users []servicedef.UserResponse
	require.NoError(t, result.JSON(&users), "user list was not an array of users")
	return users
}

func DoListUserTests(t *T) {
	t.Run("limit of one returns one user", func(t *T) {
		t.CreateNewUser("list_limit_a")
		t.CreateNewUser("list_limit_b")
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{Limit: ldvalue.NewOptionalInt(1)})
		users := requireUserList(t, result)
		expectTolerant(t, "list-limit-one", len(users))
	})

	t.Run("sorted by creation time descending", func(t *T) {
		t.CreateNewUser("list_sort_a")
		t.CreateNewUser("list_sort_b")
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{
			Limit:  ldvalue.NewOptionalInt(100),
			SortBy: "created_at",
			Order:  "desc",
		})
		users := requireUserList(t, result)
		require.GreaterOrEqual(t, len(users), 2)
		assert.True(t, sort.SliceIsSorted(users, func(i, j int) bool {
			return users[i].CreatedAt > users[j].CreatedAt
		}), "users are not in descending creation order")
	})

	t.Run("offset skips users", func(t *T) {
		t.CreateNewUser("list_offset_a")
		t.CreateNewUser("list_offset_b")
		all := requireUserList(t, t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{
			Limit: ldvalue.NewOptionalInt(2),
		}))
		require.Len(t, all, 2)
		skipped := requireUserList(t, t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{
			Limit:  ldvalue.NewOptionalInt(1),
			Offset: ldvalue.NewOptionalInt(1),
		}))
		require.NotEmpty(t, skipped)
		assert.Equal(t, all[1].ID, skipped[0].ID)
	})
}
