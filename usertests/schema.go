package usertests

import (
	"sort"

	"github.com/qa-tooling/user-api-contract-tests/framework/probe"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userFieldTypes has the fields whose JSON type is checked. created_at, phone and last_login
// only have to be present.
var userFieldTypes = map[string]ldvalue.ValueType{
	"id":        ldvalue.NumberType,
	"username":  ldvalue.StringType,
	"email":     ldvalue.StringType,
	"age":       ldvalue.NumberType,
	"is_active": ldvalue.BoolType,
}

func parseBody(t *T, result probe.RequestResult) ldvalue.Value {
	value := ldvalue.Parse(result.Body)
	require.False(t, value.IsNull(), "response body was not JSON: %s", result)
	return value
}

func sortedKeys(value ldvalue.Value) []string {
	keys := value.Keys()
	sort.Strings(keys)
	return keys
}

func sortedCopy(values []string) []string {
	ret := append([]string(nil), values...)
	sort.Strings(ret)
	return ret
}

// requireExactKeys checks that an object has exactly the given properties, no more and no fewer.
func requireExactKeys(t *T, value ldvalue.Value, keys []string) {
	require.Equal(t, ldvalue.ObjectType, value.Type(), "expected a JSON object, got %s", value)
	require.Equal(t, sortedCopy(keys), sortedKeys(value))
}

// requireUserShape checks that a value has every UserResponse field, and the right JSON type
// for the fields in userFieldTypes.
func requireUserShape(t *T, value ldvalue.Value) {
	requireExactKeys(t, value, servicedef.UserResponseFields)
	for name, want := range userFieldTypes {
		assert.Equal(t, want, value.GetByKey(name).Type(), "property %q of %s", name, value)
	}
	assert.True(t, value.GetByKey("id").IsInt(), "id is not an integer")
	assert.True(t, value.GetByKey("age").IsInt(), "age is not an integer")
}
