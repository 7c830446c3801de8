package usertests

import (
	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoAuthTests(t *T) {
	t.Run("login and logout", func(t *T) {
		id, _ := t.CreateNewUser("auth_login")
		result := t.Client().Login(t.Context(), id.Username, id.Password)
		t.RequireStatus(result, 200)
		var login servicedef.LoginResponse
		require.NoError(t, result.JSON(&login))
		assert.NotEmpty(t, login.Token)
		assert.NotEmpty(t, login.ExpiresAt)

		logout := t.Client().Logout(t.Context(), client.Bearer(login.Token))
		t.RequireStatus(logout, 200)
	})

	t.Run("login records last login time", func(t *T) {
		id, user := t.CreateNewUser("auth_lastlogin")
		t.Login(id)
		result := t.Client().GetUser(t.Context(), itoa(user.ID))
		t.RequireStatus(result, 200)
		var fetched servicedef.UserResponse
		require.NoError(t, result.JSON(&fetched))
		assert.NotNil(t, fetched.LastLogin)
	})

	t.Run("unknown user cannot log in", func(t *T) {
		id := t.NewIdentity("auth_unknown")
		result := t.Client().Login(t.Context(), id.Username, id.Password)
		assert.Equal(t, 401, result.StatusCode, "%s", result)
	})

	t.Run("wrong password cannot log in", func(t *T) {
		id, _ := t.CreateNewUser("auth_wrongpw")
		result := t.Client().Login(t.Context(), id.Username, "not-"+id.Password)
		assert.Equal(t, 401, result.StatusCode, "%s", result)
	})

	t.Run("deactivated user logs in", func(t *T) {
		id, user := t.CreateNewUser("auth_inactive")
		deleted := t.Client().DeleteUser(t.Context(), user.ID, client.Basic(id.Username, id.Password))
		t.RequireStatus(deleted, 200)

		result := t.Client().Login(t.Context(), id.Username, id.Password)
		expectTolerant(t, "login-inactive-user", result.StatusCode)
	})

	t.Run("logout with invalid token", func(t *T) {
		result := t.Client().Logout(t.Context(), client.Bearer("not-a-real-token"))
		expectTolerant(t, "logout-invalid-token", result.StatusCode)
	})
}
