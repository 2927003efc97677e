package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokens(t *testing.T, secret string, clock *fakeClock) *TokenService {
	t.Helper()
	tokens, err := NewTokenService(TokenConfig{Secret: secret, TTL: 30 * time.Minute, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, "secret", clock)

	token, err := tokens.Issue(42, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock.now = clock.now.Add(29 * time.Minute)
	got, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != 42 {
		t.Fatalf("subject = %d, want 42", got)
	}
}

func TestVerifyExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, "secret", clock)

	token, err := tokens.Issue(7, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock.now = clock.now.Add(2 * time.Minute)
	if _, err := tokens.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestVerifyDefaultTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, "secret", clock)

	token, err := tokens.Issue(7, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock.now = clock.now.Add(31 * time.Minute)
	if _, err := tokens.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestTokens(t, "secret-a", clock)
	verifier := newTestTokens(t, "secret-b", clock)

	token, err := issuer.Issue(1, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tokens := newTestTokens(t, "secret", clock)

	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	for name, token := range map[string]string{"HS512": hs512, "none": none} {
		if _, err := tokens.Verify(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("%s: err = %v, want %v", name, err, ErrTokenInvalid)
		}
	}
}

func TestVerifyClaims(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tokens := newTestTokens(t, "secret", clock)
	exp := jwt.NewNumericDate(clock.now.Add(time.Hour))

	tests := []struct {
		name   string
		claims jwt.RegisteredClaims
		want   error
	}{
		{"missing subject", jwt.RegisteredClaims{ExpiresAt: exp}, ErrSubjectMissing},
		{"non numeric subject", jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}, ErrTokenInvalid},
		{"zero subject", jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp}, ErrTokenInvalid},
		{"missing expiry", jwt.RegisteredClaims{Subject: "1"}, ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString([]byte("secret"))
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := tokens.Verify(token); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyMalformed(t *testing.T) {
	tokens := newTestTokens(t, "secret", &fakeClock{now: time.Now()})
	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := tokens.Verify(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("Verify(%q) err = %v, want %v", token, err, ErrTokenInvalid)
		}
	}
}

func TestNewTokenServiceValidation(t *testing.T) {
	if _, err := NewTokenService(TokenConfig{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "RS256"}); err == nil {
		t.Fatal("expected error for asymmetric algorithm")
	}
	tokens, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "HS384"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if tokens.ttl != DefaultTokenTTL {
		t.Fatalf("ttl = %v, want %v", tokens.ttl, DefaultTokenTTL)
	}
}
