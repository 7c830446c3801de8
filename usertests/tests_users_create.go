package usertests

import (
	"strings"

	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPhone = "+12025550123"

func DoCreateUserTests(t *T) {
	t.Run("valid user is created", func(t *T) {
		id, user := t.CreateNewUser("create_ok")
		assert.NotZero(t, user.ID)
		assert.Equal(t, id.Username, user.Username)
		assert.Equal(t, id.Email, user.Email)
		assert.True(t, user.IsActive)
		assert.NotEmpty(t, user.CreatedAt)
	})

	t.Run("exact duplicate username is rejected", func(t *T) {
		id, _ := t.CreateNewUser("create_dup")
		params := client.CreateParams(id)
		params.Email = "other_" + params.Email
		result := t.Client().CreateUserWithParams(t.Context(), params, "")
		expectStrict(t, "create-duplicate-username", result.StatusCode, 400)
	})

	t.Run("duplicate username differing by case", func(t *T) {
		id, _ := t.CreateNewUser("create_case")
		params := client.CreateParams(id)
		params.Username = strings.ToUpper(id.Username)
		params.Email = "upper_" + params.Email
		result := t.Client().CreateUserWithParams(t.Context(), params, "")
		expectTolerant(t, "create-duplicate-username-case", result.StatusCode)
	})

	t.Run("invalid email is rejected", func(t *T) {
		params := client.CreateParams(t.NewIdentity("create_email"))
		params.Email = "not-an-email"
		result := t.Client().CreateUserWithParams(t.Context(), params, "")
		expectTolerant(t, "create-invalid-email", result.StatusCode)
	})

	t.Run("underage user is rejected", func(t *T) {
		params := client.CreateParams(t.NewIdentity("create_age"))
		params.Age = 10
		result := t.Client().CreateUserWithParams(t.Context(), params, "")
		expectTolerant(t, "create-underage", result.StatusCode)
	})

	t.Run("invalid username characters are rejected", func(t *T) {
		params := client.CreateParams(t.NewIdentity("create_chars"))
		params.Username = "bad name!" + params.Username[len(params.Username)-8:]
		result := t.Client().CreateUserWithParams(t.Context(), params, "")
		assert.Equal(t, 422, result.StatusCode, "%s", result)
	})

	t.Run("invalid phone is rejected", func(t *T) {
		id := t.NewIdentity("create_badphone").WithPhone("12345")
		result := t.Client().CreateUser(t.Context(), id)
		assert.Equal(t, 422, result.StatusCode, "%s", result)
	})

	t.Run("valid phone is stored", func(t *T) {
		user := t.CreateUser(t.NewIdentity("create_phone").WithPhone(validPhone))
		require.NotNil(t, user.Phone)
		assert.Equal(t, validPhone, *user.Phone)
	})

	t.Run("bulk create skips duplicates", func(t *T) {
		params := client.CreateParams(t.NewIdentity("create_bulk"))
		result := t.Client().BulkCreateUsers(t.Context(), []servicedef.CreateUserParams{params, params})
		t.RequireStatus(result, 200)
		var resp servicedef.BulkCreateResponse
		require.NoError(t, result.JSON(&resp))
		assert.Equal(t, 1, resp.Created)
		require.Len(t, resp.Users, 1)
		assert.Equal(t, params.Username, resp.Users[0].Username)
	})
}
