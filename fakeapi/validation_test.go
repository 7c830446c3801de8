package fakeapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestCreateUserBodyValidation(t *testing.T) {
	valid := createUserBody{Username: "valid_user", Email: "valid@test.dev", Password: "secret12", Age: 21}
	assert.Empty(t, valid.validate())

	withPhone := valid
	withPhone.Phone = strPtr("+12025550123")
	assert.Empty(t, withPhone.validate())

	for name, tc := range map[string]struct {
		body createUserBody
		msg  string
	}{
		"short username": {
			createUserBody{Username: "ab", Email: "a@test.dev", Password: "secret12", Age: 21},
			"Value error, Username must be between 3 and 50 characters",
		},
		"username charset": {
			createUserBody{Username: "bad name!", Email: "a@test.dev", Password: "secret12", Age: 21},
			"Value error, Username contains invalid characters",
		},
		"email": {
			createUserBody{Username: "bad_email", Email: "not-an-email", Password: "secret12", Age: 21},
			"Value error, value is not a valid email address",
		},
		"password": {
			createUserBody{Username: "bad_pass", Email: "a@test.dev", Password: "12345", Age: 21},
			"Value error, Password must be at least 6 characters",
		},
		"age": {
			createUserBody{Username: "old_user", Email: "a@test.dev", Password: "secret12", Age: 151},
			"Value error, Age must be between 13 and 150",
		},
		"phone": {
			createUserBody{Username: "bad_phone", Email: "a@test.dev", Password: "secret12", Age: 21, Phone: strPtr("123")},
			"Value error, Invalid phone number format",
		},
	} {
		t.Run(name, func(t *testing.T) {
			errs := tc.body.validate()
			if assert.Len(t, errs, 1) {
				assert.Equal(t, tc.msg, errs[0].Msg)
				assert.Equal(t, "value_error", errs[0].Type)
				assert.Equal(t, "body", errs[0].Loc[0])
			}
		})
	}
}

func TestUpdateUserBodyValidation(t *testing.T) {
	assert.Empty(t, updateUserBody{}.validate())
	assert.Empty(t, updateUserBody{Email: strPtr("new@test.dev"), Age: intPtr(40)}.validate())

	errs := updateUserBody{Age: intPtr(0), Phone: strPtr("12")}.validate()
	if assert.Len(t, errs, 2) {
		assert.Equal(t, []string{"body", "age"}, errs[0].Loc)
		assert.Equal(t, []string{"body", "phone"}, errs[1].Loc)
	}
}
