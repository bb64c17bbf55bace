package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestStateSigner(t *testing.T) *StateSigner {
	t.Helper()
	s, err := NewStateSigner("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewStateSigner: %v", err)
	}
	return s
}

func TestNewStateSigner_ShortSecret(t *testing.T) {
	if _, err := NewStateSigner("short"); err == nil {
		t.Fatal("NewStateSigner() should reject secrets shorter than 16 chars")
	}
}

func TestIssue_LooksLikeJWT(t *testing.T) {
	s := newTestStateSigner(t)

	state, err := s.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(state, ".") != 2 {
		t.Errorf("Issue() state doesn't look like a JWT: %q", state)
	}
}

func TestIssue_Unique(t *testing.T) {
	s := newTestStateSigner(t)

	a, _ := s.Issue()
	b, _ := s.Issue()
	if a == b {
		t.Error("Issue() returned the same state twice")
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	s := newTestStateSigner(t)

	state, err := s.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := s.Verify(state); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	s := newTestStateSigner(t)

	state, err := s.issueWithDuration(-1 * time.Second)
	if err != nil {
		t.Fatalf("issueWithDuration() error = %v", err)
	}
	if err := s.Verify(state); err == nil {
		t.Fatal("Verify() should reject an expired state")
	}
}

func TestVerify_Tampered(t *testing.T) {
	s := newTestStateSigner(t)

	state, _ := s.Issue()
	tampered := state[:len(state)-3] + "xxx"

	if err := s.Verify(tampered); err == nil {
		t.Fatal("Verify() should reject a tampered state")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	s1, _ := NewStateSigner("correct-secret-32-chars-long!!!!")
	s2, _ := NewStateSigner("wrong-secret-32-chars-long!!!!!!")

	state, _ := s1.Issue()
	if err := s2.Verify(state); err == nil {
		t.Fatal("Verify() should fail with a different secret")
	}
}

func TestVerify_Garbage(t *testing.T) {
	s := newTestStateSigner(t)

	for _, in := range []string{"", "not.a.jwt.token", "abc"} {
		if err := s.Verify(in); err == nil {
			t.Errorf("Verify(%q) should fail", in)
		}
	}
}
