package usertests

import (
	"strings"

	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsUser(users []servicedef.UserResponse, id int) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func DoSearchStatsHealthTests(t *T) {
	t.Run("exact username search", func(t *T) {
		id, user := t.CreateNewUser("search_exact")
		result := t.Client().SearchUsers(t.Context(),
			servicedef.SearchParams{Text: id.Username, Field: "username", Exact: true})
		users := requireUserList(t, result)
		require.Len(t, users, 1)
		assert.Equal(t, user.ID, users[0].ID)
	})

	t.Run("substring username search", func(t *T) {
		id, user := t.CreateNewUser("search_part")
		fragment := id.Username[:len(id.Username)-9]
		result := t.Client().SearchUsers(t.Context(), servicedef.SearchParams{Text: fragment})
		assert.True(t, containsUser(requireUserList(t, result), user.ID), "user not found by %q", fragment)
	})

	t.Run("exact email search ignores case", func(t *T) {
		id, user := t.CreateNewUser("search_email")
		result := t.Client().SearchUsers(t.Context(),
			servicedef.SearchParams{Text: strings.ToUpper(id.Email), Field: "email", Exact: true})
		if !requireTolerant(t, "search-email-exact-case-status", result.StatusCode) {
			return
		}
		expectTolerant(t, "search-email-exact-case-found", containsUser(requireUserList(t, result), user.ID))
	})

	t.Run("search without query", func(t *T) {
		result := t.Client().Get(t.Context(), servicedef.PathUserSearch, nil)
		assert.Equal(t, 422, result.StatusCode, "%s", result)
	})

	t.Run("stats details", func(t *T) {
		t.CreateNewUser("stats_details")
		result := t.Client().Stats(t.Context(), true)
		t.RequireStatus(result, 200)
		body := parseBody(t, result)
		leaked := !body.GetByKey("user_emails").IsNull() || !body.GetByKey("session_tokens").IsNull()
		expectTolerant(t, "stats-details-leak", leaked)
	})

	t.Run("stats counts users", func(t *T) {
		t.CreateNewUser("stats_count")
		result := t.Client().Stats(t.Context(), false)
		t.RequireStatus(result, 200)
		var stats servicedef.StatsResponse
		require.NoError(t, result.JSON(&stats))
		assert.GreaterOrEqual(t, stats.TotalUsers, 1)
		assert.Equal(t, stats.TotalUsers, stats.ActiveUsers+stats.InactiveUsers)
	})

	t.Run("health", func(t *T) {
		result := t.Client().Health(t.Context())
		t.RequireStatus(result, 200)
		var health servicedef.HealthResponse
		require.NoError(t, result.JSON(&health))
		assert.Equal(t, "healthy", health.Status)
		assert.NotEmpty(t, health.Timestamp)
	})
}
