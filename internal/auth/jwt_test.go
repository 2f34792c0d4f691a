package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
)

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("super-secret")
	issuedAt := time.Now().Add(-time.Minute).Truncate(time.Second)

	tok, err := issuer.Issue("account-123", issuedAt)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "account-123" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if !claims.IssuedAt.Time.Equal(issuedAt) {
		t.Fatalf("issued at mismatch: got %v want %v", claims.IssuedAt.Time, issuedAt)
	}
	if claims.ID == "" {
		t.Fatalf("expected token id to be set")
	}
}

func TestIssue_UniquePerLogin(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("k")
	now := time.Now()

	a, err := issuer.Issue("u1", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	b, err := issuer.Issue("u1", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens for the same account and time")
	}
}

func TestAccountID(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("k")
	tok, err := issuer.Issue("u2", time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	id, err := issuer.AccountID(tok)
	if err != nil {
		t.Fatalf("AccountID error: %v", err)
	}
	if id != "u2" {
		t.Fatalf("got %q want u2", id)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer("right-secret").Issue("u2", time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenIssuer("wrong-secret").Parse(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("k").Parse("not.a.jwt")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_IssuedInFuture(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("k")
	tok, err := issuer.Issue("u3", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := issuer.Parse(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for future iat, got %v", err)
	}
}
