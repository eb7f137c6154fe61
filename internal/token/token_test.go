package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testKey = []byte("test-signing-key-0123456789abcdef")

func newTestService(t *testing.T, at time.Time) (*Service, *time.Time) {
	t.Helper()
	now := at
	svc := NewService(testKey, WithClock(func() time.Time { return now }))
	return svc, &now
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for _, purpose := range []Purpose{PurposeSignupVerification, PurposePasswordReset, PurposeMagicLink} {
		tok, err := svc.Issue("user@example.com", purpose)
		if err != nil {
			t.Fatalf("issue %s: %v", purpose, err)
		}
		got, err := svc.Verify(tok, purpose)
		if err != nil {
			t.Fatalf("verify %s: %v", purpose, err)
		}
		if got.Email != "user@example.com" {
			t.Errorf("email = %q, want %q", got.Email, "user@example.com")
		}
		if got.Purpose != purpose {
			t.Errorf("purpose = %q, want %q", got.Purpose, purpose)
		}
	}
}

func TestIssueRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, time.Now())

	if _, err := svc.Issue("", PurposeMagicLink); err == nil {
		t.Error("expected error for empty email")
	}
	if _, err := svc.Issue("user@example.com", Purpose("session")); err == nil {
		t.Error("expected error for unknown purpose")
	}
}

func TestIssueWithoutKeyFailsClosed(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Issue("user@example.com", PurposeMagicLink); !errors.Is(err, ErrNoSigningKey) {
		t.Errorf("err = %v, want ErrNoSigningKey", err)
	}
	if _, err := svc.Verify("whatever", PurposeMagicLink); !errors.Is(err, ErrNoSigningKey) {
		t.Errorf("verify err = %v, want ErrNoSigningKey", err)
	}
}

func TestExpiryBoundary(t *testing.T) {
	cases := []struct {
		purpose  Purpose
		lifetime time.Duration
	}{
		{PurposeSignupVerification, 24 * time.Hour},
		{PurposePasswordReset, time.Hour},
		{PurposeMagicLink, 10 * time.Minute},
	}

	for _, tc := range cases {
		t.Run(string(tc.purpose), func(t *testing.T) {
			svc, now := newTestService(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

			tok, err := svc.Issue("user@example.com", tc.purpose)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			// Just inside the window.
			*now = now.Add(tc.lifetime - time.Second)
			if _, err := svc.Verify(tok, tc.purpose); err != nil {
				t.Errorf("verify one second before expiry: %v", err)
			}

			// Just past it.
			*now = now.Add(2 * time.Second)
			if _, err := svc.Verify(tok, tc.purpose); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("verify after expiry: err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestPurposeMismatch(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	purposes := []Purpose{PurposeSignupVerification, PurposePasswordReset, PurposeMagicLink}

	for _, issued := range purposes {
		tok, err := svc.Issue("user@example.com", issued)
		if err != nil {
			t.Fatalf("issue %s: %v", issued, err)
		}
		for _, expected := range purposes {
			_, err := svc.Verify(tok, expected)
			if issued == expected && err != nil {
				t.Errorf("verify %s as %s: unexpected error %v", issued, expected, err)
			}
			if issued != expected && !errors.Is(err, ErrInvalidToken) {
				t.Errorf("verify %s as %s: err = %v, want ErrInvalidToken", issued, expected, err)
			}
		}
	}
}

func TestTamperedTokenFailsClosed(t *testing.T) {
	svc, _ := newTestService(t, time.Now())

	tok, err := svc.Issue("user@example.com", PurposePasswordReset)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip one byte in each segment: header, payload, signature.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	for i := range parts {
		mutated := make([]string, 3)
		copy(mutated, parts)
		seg := []byte(mutated[i])
		if seg[0] == 'A' {
			seg[0] = 'B'
		} else {
			seg[0] = 'A'
		}
		mutated[i] = string(seg)
		if _, err := svc.Verify(strings.Join(mutated, "."), PurposePasswordReset); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("segment %d tampered: err = %v, want ErrInvalidToken", i, err)
		}
	}
}

func TestWrongKeyRejected(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	other := NewService([]byte("another-key-entirely-abcdef012345"))

	tok, err := svc.Issue("user@example.com", PurposeMagicLink)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := other.Verify(tok, PurposeMagicLink); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestMalformedToken(t *testing.T) {
	svc, _ := newTestService(t, time.Now())

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d", "%%%.###.@@@"} {
		if _, err := svc.Verify(raw, PurposeMagicLink); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): err = %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestTokensAreIndependent(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, now := newTestService(t, base)

	first, err := svc.Issue("user@example.com", PurposeMagicLink)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	*now = now.Add(time.Minute)
	second, err := svc.Issue("user@example.com", PurposeMagicLink)
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}

	if first == second {
		t.Error("tokens issued at different instants should differ")
	}
	if _, err := svc.Verify(first, PurposeMagicLink); err != nil {
		t.Errorf("first token: %v", err)
	}
	if _, err := svc.Verify(second, PurposeMagicLink); err != nil {
		t.Errorf("second token: %v", err)
	}
}

func TestParsePurpose(t *testing.T) {
	for _, s := range []string{"signup-verification", "password-reset", "magic-link"} {
		if _, err := ParsePurpose(s); err != nil {
			t.Errorf("ParsePurpose(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "signup", "reset", "MAGIC-LINK", "magic_link"} {
		if _, err := ParsePurpose(s); err == nil {
			t.Errorf("ParsePurpose(%q): expected error", s)
		}
	}
}
