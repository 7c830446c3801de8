package usertests

import (
	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoUpdateDeleteTests(t *T) {
	t.Run("update with bearer token", func(t *T) {
		id, user := t.CreateNewUser("upd_ok")
		auth := t.Login(id)
		newEmail := "updated_" + id.Email
		result := t.Client().UpdateUser(t.Context(), user.ID,
			servicedef.UpdateUserParams{Email: newEmail, Age: ldvalue.NewOptionalInt(35)}, auth)
		t.RequireStatus(result, 200)
		var updated servicedef.UserResponse
		require.NoError(t, result.JSON(&updated))
		assert.Equal(t, newEmail, updated.Email)
		assert.Equal(t, 35, updated.Age)
	})

	t.Run("update of deactivated user", func(t *T) {
		id, user := t.CreateNewUser("upd_inactive")
		auth := t.Login(id)
		t.RequireStatus(t.Client().DeleteUser(t.Context(), user.ID, client.Basic(id.Username, id.Password)), 200)

		result := t.Client().UpdateUser(t.Context(), user.ID,
			servicedef.UpdateUserParams{Age: ldvalue.NewOptionalInt(50)}, auth)
		expectTolerant(t, "update-inactive-user", result.StatusCode)
	})

	t.Run("delete of another user", func(t *T) {
		attacker, _ := t.CreateNewUser("del_attacker")
		_, victim := t.CreateNewUser("del_victim")
		result := t.Client().DeleteUser(t.Context(), victim.ID, client.Basic(attacker.Username, attacker.Password))
		expectTolerant(t, "delete-other-user", result.StatusCode)
	})

	t.Run("delete twice", func(t *T) {
		id, user := t.CreateNewUser("del_twice")
		auth := client.Basic(id.Username, id.Password)

		first := t.Client().DeleteUser(t.Context(), user.ID, auth)
		t.RequireStatus(first, 200)
		var firstResp servicedef.DeleteUserResponse
		require.NoError(t, first.JSON(&firstResp))
		assert.True(t, firstResp.WasActive)

		second := t.Client().DeleteUser(t.Context(), user.ID, auth)
		t.RequireStatus(second, 200)
		var secondResp servicedef.DeleteUserResponse
		require.NoError(t, second.JSON(&secondResp))
		assert.False(t, secondResp.WasActive)

		fetched := t.Client().GetUser(t.Context(), itoa(user.ID))
		t.RequireStatus(fetched, 200)
		var after servicedef.UserResponse
		require.NoError(t, fetched.JSON(&after))
		assert.False(t, after.IsActive)
	})
}
