package auth

import "time"

// Session carries the bearer token obtained by one login. It is owned by a
// single suite run and passed explicitly to every case.
type Session struct {
	Token    string
	IssuedAt time.Time
}

// Anonymous returns a session with no token, for services without auth.
func Anonymous() *Session {
	return &Session{}
}

// Authorized reports whether the session holds a token.
func (s *Session) Authorized() bool {
	return s != nil && s.Token != ""
}

// Headers returns the Authorization header for the session, or an empty map
// when there is no token.
func (s *Session) Headers() map[string]string {
	if !s.Authorized() {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + s.Token}
}
