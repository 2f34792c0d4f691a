package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophdesk/internal/models"
)

// Stats summarises the directory for the admin dashboard.
type Stats struct {
	Total  int
	Active int
	Admins int
}

func computeStats(accounts []models.AccountView) Stats {
	var s Stats
	for _, a := range accounts {
		s.Total++
		if a.Active {
			s.Active++
		}
		if a.IsAdmin() {
			s.Admins++
		}
	}
	return s
}

// filterAccounts keeps accounts whose username or id contains term,
// ignoring case. An empty term keeps everything.
func filterAccounts(accounts []models.AccountView, term string) []models.AccountView {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return accounts
	}

	out := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		if strings.Contains(strings.ToLower(a.Username), term) || strings.Contains(strings.ToLower(a.ID), term) {
			out = append(out, a)
		}
	}
	return out
}

// Users lists the directory, optionally filtered by term.
func (a *App) Users(ctx context.Context, term string) error {
	if err := a.require(models.RoleAdmin); err != nil {
		return err
	}

	accounts, err := a.dir.ListAccounts(ctx)
	if err != nil {
		return err
	}

	accounts = filterAccounts(accounts, term)
	if len(accounts) == 0 {
		a.println("No users found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tSTATUS\tCREATED")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			acc.ID, acc.Username, acc.Role, statusLabel(acc.Active), acc.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

// Stats prints account totals.
func (a *App) Stats(ctx context.Context) error {
	if err := a.require(models.RoleAdmin); err != nil {
		return err
	}

	accounts, err := a.dir.ListAccounts(ctx)
	if err != nil {
		return err
	}

	s := computeStats(accounts)
	a.println(fmt.Sprintf("Total users: %d", s.Total))
	a.println(fmt.Sprintf("Active:      %d", s.Active))
	a.println(fmt.Sprintf("Admins:      %d", s.Admins))
	return nil
}

// Delete removes an account after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.require(models.RoleAdmin); err != nil {
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete account %s?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}

	if err := a.dir.DeleteAccount(ctx, id); err != nil {
		return err
	}
	a.println("Deleted.")
	return nil
}

// Toggle activates or deactivates an account.
func (a *App) Toggle(ctx context.Context, id string) error {
	if err := a.require(models.RoleAdmin); err != nil {
		return err
	}

	if err := a.dir.ToggleActive(ctx, id); err != nil {
		return err
	}
	a.println("Status updated.")
	return nil
}
