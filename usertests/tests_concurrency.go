package usertests

import (
	"github.com/qa-tooling/user-api-contract-tests/fixtures"
	"github.com/qa-tooling/user-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoConcurrencyTests(t *T) {
	t.Run("parallel creates", func(t *T) {
		size := t.Config().Burst.ConcurrencySize
		sourceIP := t.Config().Burst.ConcurrencyIP
		identities := make([]fixtures.Identity, size)
		for i := range identities {
			identities[i] = t.NewIdentity("conc").WithSourceIP(sourceIP)
		}
		burst := createBurst(t, identities)
		require.Len(t, burst.Results, size)

		c := t.Classify(burst, sourceIP)
		expectTolerant(t, "concurrent-create-outcome", c.Outcome)

		ids := make(map[int]string)
		for _, r := range burst.Results {
			if r.StatusCode != 201 {
				continue
			}
			var user servicedef.UserResponse
			require.NoError(t, r.JSON(&user))
			if other, ok := ids[user.ID]; ok {
				assert.Fail(t, "duplicate user ID", "ID %d was given to both %s and %s", user.ID, other, user.Username)
			}
			ids[user.ID] = user.Username
		}
	})
}
