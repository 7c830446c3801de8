package fakeapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type userJSON struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Age       int     `json:"age"`
	CreatedAt string  `json:"created_at"`
	IsActive  bool    `json:"is_active"`
	Phone     *string `json:"phone"`
	LastLogin *string `json:"last_login"`
}

const timestampLayout = "2006-01-02T15:04:05.000000"

func toJSON(u user) userJSON {
	ret := userJSON{
		ID:        u.id,
		Username:  u.username,
		Email:     u.email,
		Age:       u.age,
		CreatedAt: u.createdAt.Format(timestampLayout),
		IsActive:  u.isActive,
		Phone:     u.phone,
	}
	if u.lastLogin != nil {
		s := u.lastLogin.Format(timestampLayout)
		ret.LastLogin = &s
	}
	return ret
}

func usersToJSON(users []user) []userJSON {
	ret := make([]userJSON, 0, len(users))
	for _, u := range users {
		ret = append(ret, toJSON(u))
	}
	return ret
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidationErrors(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"detail": errs})
}

func writeQueryError(w http.ResponseWriter, name, msg string) {
	writeValidationErrors(w, []fieldError{{Loc: []string{"query", name}, Msg: msg, Type: "value_error"}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeValidationErrors(w, []fieldError{{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}})
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": APIMessage, "version": APIVersion})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.store.stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(timestampLayout),
		"memory_users":    st.total,
		"memory_sessions": st.sessions,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.store.stats()
	body := map[string]interface{}{
		"total_users":     st.total,
		"active_users":    st.active,
		"inactive_users":  st.total - st.active,
		"active_sessions": st.sessions,
		"api_version":     APIVersion,
	}
	if r.URL.Query().Get("include_details") == "true" {
		body["user_emails"] = nonNil(st.emails)
		body["session_tokens"] = nonNil(st.tokens)
	}
	writeJSON(w, http.StatusOK, body)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	limit, err := s.limiter.Get(r.Context(), clientIP(r))
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Rate limiter unavailable")
		return
	}
	if limit.Reached {
		writeDetail(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}
	var body createUserBody
	if !decodeBody(w, r, &body) {
		return
	}
	if errs := body.validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}
	u, err := s.store.create(body)
	if err != nil {
		if errors.Is(err, errDuplicateUsername) {
			writeDetail(w, http.StatusBadRequest, "Username already exists")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Could not create user")
		return
	}
	writeJSON(w, http.StatusCreated, toJSON(u))
}

// handleBulkCreate creates each user in turn; failures are skipped rather than reported.
func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var bodies []createUserBody
	if !decodeBody(w, r, &bodies) {
		return
	}
	created := []userJSON{}
	for _, b := range bodies {
		if len(b.validate()) > 0 {
			continue
		}
		if u, err := s.store.create(b); err == nil {
			created = append(created, toJSON(u))
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"created": len(created), "users": created})
}

func intQuery(r *http.Request, name string, defaultValue int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(r, "limit", 10)
	if !ok {
		writeQueryError(w, "limit", "Input should be a valid integer")
		return
	}
	offset, ok := intQuery(r, "offset", 0)
	if !ok {
		writeQueryError(w, "offset", "Input should be a valid integer")
		return
	}
	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = "id"
	}
	order := r.URL.Query().Get("order")
	if order == "" {
		order = "asc"
	}
	users, err := s.store.list(limit, offset, sortBy, order)
	switch {
	case errors.Is(err, errInvalidSortField):
		writeDetail(w, http.StatusBadRequest, "Invalid sort field")
		return
	case errors.Is(err, errInvalidSortOrder):
		writeDetail(w, http.StatusBadRequest, "Invalid sort order")
		return
	}
	writeJSON(w, http.StatusOK, usersToJSON(users))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeQueryError(w, "q", "Field required")
		return
	}
	field := r.URL.Query().Get("field")
	if field == "" {
		field = "username"
	}
	if field != "username" && field != "email" {
		writeDetail(w, http.StatusBadRequest, "Invalid search field")
		return
	}
	exact := r.URL.Query().Get("exact") == "true"
	writeJSON(w, http.StatusOK, usersToJSON(s.store.search(q, field, exact)))
}

func userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid user ID format")
		return 0, false
	}
	return id, true
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, found := s.store.get(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, toJSON(u))
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

// handleUpdateUser requires a session but does not check that the session belongs to the user
// being changed, nor that the session has not expired.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Missing or invalid authorization")
		return
	}
	if _, ok := s.store.sessionUser(token); !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired session")
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var body updateUserBody
	if !decodeBody(w, r, &body) {
		return
	}
	if errs := body.validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}
	u, err := s.store.update(id, body)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, toJSON(u))
}

func basicCredentials(r *http.Request) (string, string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return "", "", false
	}
	username, password, found := strings.Cut(string(decoded), ":")
	return username, password, found
}

// handleDeleteUser soft-deletes any user for any caller with valid credentials.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username, password, ok := basicCredentials(r)
	if ok {
		_, ok = s.store.checkPassword(username, password)
	}
	if !ok {
		w.Header().Set("WWW-Authenticate", "Basic")
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	id, ok := userID(w, r)
	if !ok {
		return
	}
	wasActive, err := s.store.deactivate(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "User deactivated", "was_active": wasActive})
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeBody(w, r, &body) {
		return
	}
	token, expires, ok := s.store.login(body.Username, body.Password)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "expires_at": expires.Format(timestampLayout)})
}

// handleLogout reports success whether or not the token was a real session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No active session"})
		return
	}
	if token, ok := bearerToken(r); ok {
		s.store.logout(token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
