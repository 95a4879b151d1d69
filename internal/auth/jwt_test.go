package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/campushub/api/internal/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("stud-1", "student")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if token == "" {
		t.Fatal("empty token")
	}

	claims, err := m.VerifyAccessToken(token)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "stud-1" {
		t.Fatalf("userID = %q, want stud-1", claims.UserID)
	}

	if claims.Role != "student" {
		t.Fatalf("role = %q, want student", claims.Role)
	}

	if claims.JTI == "" {
		t.Fatal("missing jti")
	}
}

func TestAccessTokenCarriesOnlyIdentityClaims(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("stud-1", "student")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// the payload is just base64 json; it must never mention password
	// or email fields
	parts := strings.Split(token, ".")

	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])

	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	for _, forbidden := range []string{"password", "email"} {
		if strings.Contains(strings.ToLower(string(payload)), forbidden) {
			t.Fatalf("token payload mentions %q: %s", forbidden, payload)
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.GenerateAccessToken("stud-1", "student")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = m.VerifyAccessToken(token)

	if err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	other := auth.NewManager("different-secret", time.Hour)

	token, err := m.GenerateAccessToken("stud-1", "student")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = other.VerifyAccessToken(token)

	if err == nil {
		t.Fatal("expected token signed with another secret to fail")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	_, err := m.VerifyAccessToken("not.a.token")

	if err == nil {
		t.Fatal("expected garbage to fail verification")
	}
}
