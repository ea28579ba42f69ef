package auth

import (
	"testing"
	"time"
)

func newTestService(now time.Time) *Service {
	return NewService(Config{
		JWTSecret: "test-secret",
		APIKeys:   []APIKeyConfig{{Key: "good-key", UserID: "user-1"}},
		Now:       func() time.Time { return now },
	})
}

func TestIssueUnknownKeyFails(t *testing.T) {
	s := newTestService(time.Now())
	if _, _, err := s.Issue("bad-key", ""); err == nil {
		t.Fatal("expected invalid_credentials for unknown api key")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestService(now)
	token, lifetime, err := s.Issue("good-key", "")
	if err != nil {
		t.Fatal(err)
	}
	if lifetime != DefaultLifetime {
		t.Fatalf("lifetime = %v, want default", lifetime)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != DefaultLifetime {
		t.Fatalf("expiry delta = %v, want %v", got, DefaultLifetime)
	}
}

func TestIssueMobileHintExtendsLifetime(t *testing.T) {
	s := newTestService(time.Now())
	_, lifetime, err := s.Issue("good-key", "ios")
	if err != nil {
		t.Fatal(err)
	}
	if lifetime != MobileLifetime {
		t.Fatalf("lifetime = %v, want mobile lifetime", lifetime)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestService(now)
	token, _, err := s.Issue("good-key", "")
	if err != nil {
		t.Fatal(err)
	}
	later := newTestService(now.Add(DefaultLifetime + time.Second))
	later.codec = s.codec
	if _, err := later.Verify(token); err == nil {
		t.Fatal("expected expired_credentials past exp")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := newTestService(time.Now())
	if _, err := s.Verify("not-a-token"); err == nil {
		t.Fatal("expected invalid_credentials for malformed token")
	}
}

func TestRefreshReissuesForSameSubject(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestService(now)
	token, _, err := s.Issue("good-key", "")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	refreshed, err := s.Refresh(claims, DefaultLifetime)
	if err != nil {
		t.Fatal(err)
	}
	newClaims, err := s.Verify(refreshed)
	if err != nil {
		t.Fatal(err)
	}
	if newClaims.Subject != claims.Subject {
		t.Fatal("refresh must keep the same subject")
	}
}
