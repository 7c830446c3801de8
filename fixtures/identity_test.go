package fixtures

import (
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func TestIdentityDefaults(t *testing.T) {
	id := NewIdentity("conuser")
	assert.True(t, strings.HasPrefix(id.Username, "conuser_"))
	assert.Equal(t, id.Username+"@test.dev", id.Email)
	assert.Equal(t, "secret12", id.Password)
	assert.Equal(t, 21, id.Age)
	assert.Empty(t, id.SourceIP)
	assert.Regexp(t, usernamePattern, id.Username)
}

func TestIdentitiesAreUniqueUnderConcurrency(t *testing.T) {
	const workers, each = 20, 50
	var f Factory
	var lock sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				id := f.NewIdentity("burst")
				lock.Lock()
				seen[id.Username] = true
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*each)
}

func TestTimestampIsStrictlyIncreasingWhenClockStalls(t *testing.T) {
	frozen := time.Now().Add(time.Hour)
	f := Factory{now: func() time.Time { return frozen }}
	first := f.nextMillis()
	assert.GreaterOrEqual(t, first, frozen.UnixMilli())
	assert.Equal(t, first+1, f.nextMillis())
	assert.Equal(t, first+2, f.nextMillis())
}

func TestFactoriesShareTimestampSequence(t *testing.T) {
	frozen := time.Now().Add(2 * time.Hour)
	a := Factory{now: func() time.Time { return frozen }}
	b := Factory{now: func() time.Time { return frozen }}
	first := a.nextMillis()
	assert.Equal(t, first+1, b.nextMillis())
	assert.Equal(t, first+2, a.nextMillis())
	assert.Greater(t, defaultFactory.nextMillis(), first+2)
}

func TestLongPrefixIsCutToFitUsernameLimit(t *testing.T) {
	id := NewIdentity(strings.Repeat("p", 80))
	assert.LessOrEqual(t, len(id.Username), MaxUsernameLength)
	assert.Regexp(t, usernamePattern, id.Username)
	assert.True(t, strings.HasPrefix(id.Username, "ppp"))
}

func TestPrefixIsSanitized(t *testing.T) {
	id := NewIdentity("bad name!")
	require.Regexp(t, usernamePattern, id.Username)
	assert.True(t, strings.HasPrefix(id.Username, "bad_name__"))
	assert.True(t, strings.HasPrefix(NewIdentity("").Username, "user_"))
}

func TestWithSourceIPDoesNotModifyOriginal(t *testing.T) {
	id := NewIdentity("ip")
	spoofed := id.WithSourceIP("10.0.0.1").WithPhone("+15555555555")
	assert.Equal(t, "10.0.0.1", spoofed.SourceIP)
	assert.Equal(t, "+15555555555", spoofed.Phone)
	assert.Empty(t, id.SourceIP)
	assert.Equal(t, id.Username, spoofed.Username)
}
