package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionValidity(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(uuid.New(), "digest", now, time.Hour)

	if !s.IsValidAt(now) {
		t.Fatalf("expected new session to be valid")
	}
	if !s.IsValidAt(now.Add(59 * time.Minute)) {
		t.Fatalf("expected session to be valid before expiry")
	}
	if s.IsValidAt(now.Add(time.Hour)) {
		t.Fatalf("expected session to be invalid exactly at expiry")
	}
	if !s.IsExpiredAt(now.Add(time.Hour)) {
		t.Fatalf("expected session to be expired at expiry")
	}

	s.Invalidate()
	if s.IsValidAt(now) {
		t.Fatalf("expected invalidated session to be invalid")
	}
}

func TestSessionExtend(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(uuid.New(), "digest", now, time.Hour)

	later := now.Add(30 * time.Minute)
	s.Extend(later, 2*time.Hour)
	if want := later.Add(2 * time.Hour); !s.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, s.ExpiresAt)
	}

	s.Invalidate()
	prev := s.ExpiresAt
	s.Extend(later, 10*time.Hour)
	if !s.ExpiresAt.Equal(prev) {
		t.Fatalf("expected inactive session expiry to stay %v, got %v", prev, s.ExpiresAt)
	}
}

func TestIdentityHasRole(t *testing.T) {
	id := Identity{UserID: uuid.New(), TypeUser: UserTypeAdmin}
	if !id.HasRole(UserTypeInstructor, UserTypeAdmin) {
		t.Fatalf("expected admin role to match")
	}
	if id.HasRole(UserTypeStudent) {
		t.Fatalf("expected student role not to match")
	}
	if AnonymousIdentity().HasRole(UserTypeStudent, UserTypeAdmin) {
		t.Fatalf("anonymous identity must not hold roles")
	}
}
