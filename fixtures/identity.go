// Package fixtures generates the throwaway accounts that scenarios create in the API under test.
package fixtures

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPassword = "secret12"
	DefaultAge      = 21
	EmailDomain     = "test.dev"

	// MaxUsernameLength is the longest username the API accepts. Prefixes are cut short to fit.
	MaxUsernameLength = 50
)

// lastMillis is shared by every Factory, so timestamps are unique across the whole process.
var lastMillis atomic.Int64

// Identity is the data for one account. Every Identity produced by a Factory has a username
// that no other Identity in the same process has had, so scenarios never collide with each other
// or with earlier runs.
type Identity struct {
	Username string
	Email    string
	Password string
	Age      int
	Phone    string
	SourceIP string
}

// WithSourceIP returns a copy of the identity that presents itself as coming from the given
// client address.
func (i Identity) WithSourceIP(ip string) Identity {
	i.SourceIP = ip
	return i
}

// WithPhone returns a copy of the identity with a phone number.
func (i Identity) WithPhone(phone string) Identity {
	i.Phone = phone
	return i
}

// Factory creates identities. The zero value is ready to use, and a Factory is safe for
// concurrent use.
type Factory struct {
	now func() time.Time
}

var defaultFactory Factory

// NewIdentity creates an identity with the default factory.
func NewIdentity(prefix string) Identity {
	return defaultFactory.NewIdentity(prefix)
}

// NewIdentity creates an identity whose username is the prefix, a millisecond timestamp that
// is strictly increasing within this process, and a random suffix. It cannot fail.
func (f *Factory) NewIdentity(prefix string) Identity {
	unique := fmt.Sprintf("_%d_%s", f.nextMillis(), randomSuffix())
	name := sanitize(prefix)
	if room := MaxUsernameLength - len(unique); len(name) > room {
		name = name[:room]
	}
	username := name + unique
	return Identity{
		Username: username,
		Email:    username + "@" + EmailDomain,
		Password: DefaultPassword,
		Age:      DefaultAge,
	}
}

func (f *Factory) nextMillis() int64 {
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	ms := now().UnixMilli()
	for {
		last := lastMillis.Load()
		next := ms
		if next <= last {
			next = last + 1
		}
		if lastMillis.CompareAndSwap(last, next) {
			return next
		}
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// sanitize keeps only the characters the API accepts in usernames.
func sanitize(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
