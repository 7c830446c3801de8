package fakeapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	errDuplicateUsername = errors.New("username already exists")
	errUserNotFound      = errors.New("user not found")
	errInvalidSortField  = errors.New("invalid sort field")
	errInvalidSortOrder  = errors.New("invalid sort order")
)

const sessionLifetime = 24 * time.Hour

type user struct {
	id           int
	username     string
	email        string
	passwordHash []byte
	age          int
	createdAt    time.Time
	isActive     bool
	phone        *string
	lastLogin    *time.Time
}

type session struct {
	userID    int
	expiresAt time.Time
}

// userStore is the in-memory state of the fake API. Records are copied in and out so callers
// never hold a pointer into the store.
type userStore struct {
	users    map[int]*user
	sessions map[string]session
	nextID   int
	lock     sync.RWMutex
}

func newUserStore() *userStore {
	return &userStore{
		users:    make(map[int]*user),
		sessions: make(map[string]session),
		nextID:   1,
	}
}

func (s *userStore) create(params createUserBody) (user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.MinCost)
	if err != nil {
		return user{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, u := range s.users {
		// only exact matches count as duplicates, so names differing in case are accepted
		if u.username == params.Username {
			return user{}, errDuplicateUsername
		}
	}
	u := &user{
		id:           s.nextID,
		username:     params.Username,
		email:        params.Email,
		passwordHash: hash,
		age:          params.Age,
		createdAt:    time.Now().UTC(),
		isActive:     true,
	}
	if params.Phone != nil {
		phone := *params.Phone
		u.phone = &phone
	}
	s.nextID++
	s.users[u.id] = u
	return *u, nil
}

func (s *userStore) get(id int) (user, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (s *userStore) byUsername(username string) (user, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for _, u := range s.users {
		if u.username == username {
			return *u, true
		}
	}
	return user{}, false
}

func (s *userStore) all() []user {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]user, 0, len(s.users))
	for _, u := range s.users {
		ret = append(ret, *u)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].id < ret[j].id })
	return ret
}

func (s *userStore) list(limit, offset int, sortBy, order string) ([]user, error) {
	var less func(a, b user) bool
	switch sortBy {
	case "id":
		less = func(a, b user) bool { return a.id < b.id }
	case "username":
		less = func(a, b user) bool { return a.username < b.username }
	case "created_at":
		less = func(a, b user) bool {
			if a.createdAt.Equal(b.createdAt) {
				return a.id < b.id
			}
			return a.createdAt.Before(b.createdAt)
		}
	case "age":
		less = func(a, b user) bool { return a.age < b.age }
	default:
		return nil, errInvalidSortField
	}
	if order != "asc" && order != "desc" {
		return nil, errInvalidSortOrder
	}
	users := s.all()
	sort.SliceStable(users, func(i, j int) bool {
		if order == "desc" {
			return less(users[j], users[i])
		}
		return less(users[i], users[j])
	})
	start, end := sliceBounds(len(users), offset, offset+limit)
	return users[start:end], nil
}

// sliceBounds resolves start and end the way a slice expression with negative indices does in
// languages that count negative indices from the end. A negative limit therefore drops items
// from the end of the list instead of being rejected.
func sliceBounds(n, start, end int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		if i < 0 {
			return 0
		}
		if i > n {
			return n
		}
		return i
	}
	s, e := clamp(start), clamp(end)
	if e < s {
		e = s
	}
	return s, e
}

func (s *userStore) search(q, field string, exact bool) []user {
	var ret []user
	lowered := strings.ToLower(q)
	for _, u := range s.all() {
		value := u.username
		if field == "email" {
			value = u.email
		}
		var match bool
		switch {
		case exact && field == "email":
			// exact email matching is case-sensitive
			match = value == q
		case exact:
			match = strings.EqualFold(value, q)
		default:
			match = strings.Contains(strings.ToLower(value), lowered)
		}
		if match {
			ret = append(ret, u)
		}
	}
	return ret
}

// update applies the changes and returns the updated user. Inactive users are returned
// unchanged.
func (s *userStore) update(id int, body updateUserBody) (user, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	u, ok := s.users[id]
	if !ok {
		return user{}, errUserNotFound
	}
	if !u.isActive {
		return *u, nil
	}
	if body.Email != nil {
		u.email = *body.Email
	}
	if body.Age != nil {
		u.age = *body.Age
	}
	if body.Phone != nil {
		phone := *body.Phone
		u.phone = &phone
	}
	return *u, nil
}

// deactivate soft-deletes a user and reports whether it was active before.
func (s *userStore) deactivate(id int) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, errUserNotFound
	}
	wasActive := u.isActive
	u.isActive = false
	return wasActive, nil
}

func (s *userStore) checkPassword(username, password string) (user, bool) {
	u, ok := s.byUsername(username)
	if !ok {
		return user{}, false
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return user{}, false
	}
	return u, true
}

// login starts a session. It does not check whether the user is active.
func (s *userStore) login(username, password string) (string, time.Time, bool) {
	u, ok := s.checkPassword(username, password)
	if !ok {
		return "", time.Time{}, false
	}
	token := uuid.NewString()
	now := time.Now().UTC()
	expires := now.Add(sessionLifetime)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sessions[token] = session{userID: u.id, expiresAt: expires}
	if stored, ok := s.users[u.id]; ok {
		stored.lastLogin = &now
	}
	return token, expires, true
}

// sessionUser resolves a token. Session expiry is not enforced.
func (s *userStore) sessionUser(token string) (int, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	sess, ok := s.sessions[token]
	return sess.userID, ok
}

func (s *userStore) logout(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.sessions, token)
}

type storeStats struct {
	total, active, sessions int
	emails, tokens          []string
}

func (s *userStore) stats() storeStats {
	s.lock.RLock()
	defer s.lock.RUnlock()
	st := storeStats{total: len(s.users), sessions: len(s.sessions)}
	for _, u := range s.users {
		if u.isActive {
			st.active++
		}
		st.emails = append(st.emails, u.email)
	}
	for token := range s.sessions {
		st.tokens = append(st.tokens, token)
	}
	sort.Strings(st.emails)
	sort.Strings(st.tokens)
	return st
}
