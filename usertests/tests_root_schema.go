package usertests

import (
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	expectedAPIMessage = "User Management API"
	expectedAPIVersion = "1.0.0"
)

func DoRootTests(t *T) {
	t.Run("returns API name and version", func(t *T) {
		result := t.Client().Root(t.Context())
		t.RequireStatus(result, 200)
		var root servicedef.RootResponse
		require.NoError(t, result.JSON(&root))
		assert.Equal(t, servicedef.RootResponse{Message: expectedAPIMessage, Version: expectedAPIVersion}, root)
		assert.Equal(t, root.Version, t.ServiceInfo().Version, "version changed since the run started")
	})
}

func DoSchemaTests(t *T) {
	t.Run("root has message and version", func(t *T) {
		result := t.Client().Root(t.Context())
		t.RequireStatus(result, 200)
		requireExactKeys(t, parseBody(t, result), []string{"message", "version"})
	})

	t.Run("created user has all fields", func(t *T) {
		result := t.Client().CreateUser(t.Context(), t.NewIdentity("schema_create"))
		t.RequireStatus(result, 201)
		requireUserShape(t, parseBody(t, result))
	})

	// a freshly created user fetched by ID has the documented representation
	t.Run("fetched user matches created user", func(t *T) {
		id, created := t.CreateNewUser("schema_get")
		result := t.Client().GetUser(t.Context(), itoa(created.ID))
		t.RequireStatus(result, 200)
		body := parseBody(t, result)
		requireUserShape(t, body)

		var fetched servicedef.UserResponse
		require.NoError(t, result.JSON(&fetched))
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, id.Username, fetched.Username)
		assert.Equal(t, id.Email, fetched.Email)
		assert.Equal(t, id.Age, fetched.Age)
		assert.True(t, fetched.IsActive)
		assert.Nil(t, fetched.Phone)
		assert.Nil(t, fetched.LastLogin)
	})

	t.Run("user list is an array of users", func(t *T) {
		t.CreateNewUser("schema_list")
		result := t.Client().ListUsers(t.Context(), servicedef.ListUsersParams{Limit: ldvalue.NewOptionalInt(5)})
		t.RequireStatus(result, 200)
		body := parseBody(t, result)
		require.Equal(t, ldvalue.ArrayType, body.Type())
		require.NotZero(t, body.Count())
		for i := 0; i < body.Count(); i++ {
			requireUserShape(t, body.GetByIndex(i))
		}
	})

	t.Run("stats has exactly the documented keys", func(t *T) {
		result := t.Client().Stats(t.Context(), false)
		t.RequireStatus(result, 200)
		body := parseBody(t, result)
		requireExactKeys(t, body, servicedef.StatsResponseFields)
		assert.Equal(t, expectedAPIVersion, body.GetByKey("api_version").StringValue())
	})

	t.Run("health has exactly the documented keys", func(t *T) {
		result := t.Client().Health(t.Context())
		t.RequireStatus(result, 200)
		requireExactKeys(t, parseBody(t, result), servicedef.HealthResponseFields)
	})
}
