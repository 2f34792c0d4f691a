// Package guard decides whether the presentation layer may show a view,
// based on the session restored at startup and kept in memory.
package guard

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophdesk/internal/auth"
	"github.com/dmitrijs2005/gophdesk/internal/models"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	// RedirectLogin means there is no session.
	RedirectLogin
	// RedirectHome means the session lacks the required role.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Decide checks an account against a view's requirement. An empty
// required role admits any signed-in account.
func Decide(account *models.AccountView, required models.Role) Decision {
	if account == nil {
		return RedirectLogin
	}
	if required != "" && account.Role != required {
		return RedirectHome
	}
	return Allow
}

// SessionSource is the part of the directory the guard reads from.
type SessionSource interface {
	GetCurrentSession(ctx context.Context) (*models.Session, error)
}

// Guard holds the current session in memory. The directory is not
// consulted again after Restore; Set and Clear keep the copy in step with
// login and logout.
type Guard struct {
	src    SessionSource
	issuer *auth.TokenIssuer

	mu      sync.RWMutex
	session *models.Session
}

func New(src SessionSource, issuer *auth.TokenIssuer) *Guard {
	return &Guard{src: src, issuer: issuer}
}

// Restore loads the persisted session.
func (g *Guard) Restore(ctx context.Context) error {
	s, err := g.src.GetCurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	g.Set(s)
	return nil
}

// Set holds s. A session whose token does not verify is held as absent.
func (g *Guard) Set(s *models.Session) {
	if s != nil && !g.valid(s) {
		s = nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = s
}

func (g *Guard) Clear() {
	g.Set(nil)
}

// Session returns the held session or nil.
func (g *Guard) Session() *models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Check decides access to a view requiring the given role.
func (g *Guard) Check(required models.Role) Decision {
	s := g.Session()
	if s == nil {
		return Decide(nil, required)
	}
	return Decide(&s.Account, required)
}

func (g *Guard) valid(s *models.Session) bool {
	id, err := g.issuer.AccountID(s.Token)
	return err == nil && id == s.Account.ID
}
