package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophdesk/internal/auth"
	"github.com/dmitrijs2005/gophdesk/internal/guard"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/models"
	"github.com/go-playground/validator/v10"
)

// Directory is the account directory surface the dashboard calls into.
// *directory.Service satisfies it.
type Directory interface {
	Register(ctx context.Context, username, secret string) (*models.Account, error)
	Authenticate(ctx context.Context, username, secret string) (*models.Session, error)
	Logout(ctx context.Context) error
	GetCurrentSession(ctx context.Context) (*models.Session, error)
	ListAccounts(ctx context.Context) ([]models.AccountView, error)
	GetAccount(ctx context.Context, id string) (*models.AccountView, error)
	DeleteAccount(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) error
}

type App struct {
	dir      Directory
	guard    *guard.Guard
	log      logging.Logger
	validate *validator.Validate
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp wires the dashboard. Sessions read back from dir are checked
// against issuer before they are trusted.
func NewApp(dir Directory, issuer *auth.TokenIssuer, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		dir:      dir,
		guard:    guard.New(dir, issuer),
		log:      log,
		validate: newValidator(),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run restores the previous session and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) error {
	if err := a.guard.Restore(ctx); err != nil {
		return err
	}

	a.println("Welcome to gophdesk (type 'help' for commands)")
	if s := a.guard.Session(); s != nil {
		a.println(fmt.Sprintf("Signed in as %s", s.Account.Username))
		a.log.Debug(ctx, "session restored", "username", s.Account.Username)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.guard.Check("") == guard.Allow
}

func (a *App) isAdmin() bool {
	return a.guard.Check(models.RoleAdmin) == guard.Allow
}

// getStatus renders the prompt suffix, e.g. "(admin ADMIN)".
func (a *App) getStatus() string {
	s := a.guard.Session()
	if s == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", s.Account.Username, s.Account.Role)
}

// require maps a guard decision to the error shown to the user.
func (a *App) require(role models.Role) error {
	switch a.guard.Check(role) {
	case guard.RedirectLogin:
		return errNotSignedIn
	case guard.RedirectHome:
		return errAdminOnly
	default:
		return nil
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// report prints the user-facing form of err and logs unexpected failures.
func (a *App) report(ctx context.Context, err error) {
	msg, ok := userMessage(err)
	if !ok {
		a.log.Error(ctx, "command failed", "error", err)
	}
	a.println("Error:", msg)
}
