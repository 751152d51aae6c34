package auth

import "testing"

func TestHashAndVerifyToken(t *testing.T) {
	t.Parallel()

	hash, err := HashToken("changeme123")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty hash")
	}
	if !VerifyToken(" changeme123 ", hash) {
		t.Fatalf("expected token verification to succeed")
	}
	if VerifyToken("wrong-token", hash) {
		t.Fatalf("did not expect wrong token to verify")
	}
	if VerifyToken("", hash) {
		t.Fatalf("did not expect empty token to verify")
	}
	if _, err := HashToken("  "); err == nil {
		t.Fatalf("expected blank token to be rejected")
	}
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	a, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	b, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if len(a) != 43 || a == b {
		t.Fatalf("unexpected tokens: %q %q", a, b)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	if got, ok := BearerToken("Bearer abc"); !ok || got != "abc" {
		t.Fatalf("unexpected token: %q %v", got, ok)
	}
	if got, ok := BearerToken("bearer  abc "); !ok || got != "abc" {
		t.Fatalf("expected case-insensitive scheme, got %q %v", got, ok)
	}
	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		if _, ok := BearerToken(header); ok {
			t.Fatalf("did not expect %q to yield a token", header)
		}
	}
}
