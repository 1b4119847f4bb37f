package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSetTokensAndClear(t *testing.T) {
	s := New(Tokens{}, "", nil)
	if s.Authenticated() {
		t.Fatalf("empty session should not be authenticated")
	}

	s.SetTokens(Tokens{Access: "a1", Refresh: "r1"}, "demo")
	if !s.Authenticated() {
		t.Fatalf("session should be authenticated after SetTokens")
	}
	if s.AccessToken() != "a1" || s.RefreshToken() != "r1" || s.Username() != "demo" {
		t.Fatalf("unexpected session contents: %q %q %q", s.AccessToken(), s.RefreshToken(), s.Username())
	}

	s.SetAccessToken("a2")
	if s.AccessToken() != "a2" {
		t.Fatalf("access token not replaced: %q", s.AccessToken())
	}
	if s.RefreshToken() != "r1" {
		t.Fatalf("refresh token must survive an access refresh: %q", s.RefreshToken())
	}

	s.Clear()
	if s.Authenticated() || s.RefreshToken() != "" || s.Username() != "" {
		t.Fatalf("session not cleared: %q %q %q", s.AccessToken(), s.RefreshToken(), s.Username())
	}
}

func TestOnChangeFiresOnEveryMutation(t *testing.T) {
	var calls []string
	s := New(Tokens{}, "", func(tokens Tokens, username string) {
		calls = append(calls, tokens.Access+"/"+username)
	})

	s.SetTokens(Tokens{Access: "a1", Refresh: "r1"}, "demo")
	s.SetAccessToken("a2")
	s.Clear()

	want := []string{"a1/demo", "a2/demo", "/"}
	if len(calls) != len(want) {
		t.Fatalf("onChange fired %d times, want %d: %v", len(calls), len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("onChange call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestAccessExpiry(t *testing.T) {
	s := New(Tokens{}, "", nil)
	if _, ok := s.AccessExpiry(); ok {
		t.Fatalf("empty session should have no expiry")
	}

	s.SetAccessToken("not-a-jwt")
	if _, ok := s.AccessExpiry(); ok {
		t.Fatalf("garbage token should have no readable expiry")
	}

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "demo",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	s.SetAccessToken(signed)

	got, ok := s.AccessExpiry()
	if !ok {
		t.Fatalf("expected a readable expiry")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
}
