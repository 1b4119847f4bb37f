// Package session owns the authenticated actor's credentials. All mutation
// goes through Session methods so there is a single place tokens change,
// and an observer hook so changes reach durable storage.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the credential pair for one session.
type Tokens struct {
	Access  string
	Refresh string
}

// Session holds the credentials and identity of the current actor. It is
// safe for concurrent use; the transport mutates it from retry paths while
// pollers read it.
type Session struct {
	mu       sync.RWMutex
	tokens   Tokens
	username string
	onChange func(Tokens, string)
}

// New creates a session. onChange fires after every mutation with the new
// tokens and username; pass nil to skip persistence.
func New(initial Tokens, username string, onChange func(Tokens, string)) *Session {
	return &Session{
		tokens:   initial,
		username: username,
		onChange: onChange,
	}
}

// AccessToken returns the current access token, empty when logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Refresh
}

// Username returns the logged-in username, empty when logged out.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Authenticated reports whether any access token is present.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// SetTokens replaces both tokens and the identity, as after login.
func (s *Session) SetTokens(tokens Tokens, username string) {
	s.mu.Lock()
	s.tokens = tokens
	s.username = username
	s.mu.Unlock()
	s.notify()
}

// SetAccessToken replaces only the access token, as after a refresh.
func (s *Session) SetAccessToken(access string) {
	s.mu.Lock()
	s.tokens.Access = access
	s.mu.Unlock()
	s.notify()
}

// Clear drops all credentials. Used on logout and on irrecoverable 401.
func (s *Session) Clear() {
	s.mu.Lock()
	s.tokens = Tokens{}
	s.username = ""
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	s.mu.RLock()
	onChange := s.onChange
	tokens := s.tokens
	username := s.username
	s.mu.RUnlock()
	if onChange != nil {
		onChange(tokens, username)
	}
}

// AccessExpiry reports when the access token expires, read from its JWT
// claims without signature verification. Display only: the 401 path is
// still the authority on whether a token is usable.
func (s *Session) AccessExpiry() (time.Time, bool) {
	raw := s.AccessToken()
	if raw == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
