package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdesk/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

// Register collects a username and a password twice, validates the form and
// creates a USER account. It does not sign the new account in.
//
// Both password buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadySigned
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	form := registerForm{Username: username, Password: password, Confirm: confirmation}
	if err := a.validate.StructCtx(ctx, form); err != nil {
		return err
	}

	if _, err := a.dir.Register(ctx, username, string(password)); err != nil {
		return err
	}

	a.println("Registration successful. You can now log in.")
	return nil
}

// Login prompts for credentials, authenticates against the directory and
// holds the new session in the guard.
//
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadySigned
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.dir.Authenticate(ctx, username, string(password))
	if err != nil {
		return err
	}

	a.guard.Set(session)
	a.println(fmt.Sprintf("Welcome, %s!", session.Account.Username))
	return nil
}

// Logout clears the stored session and the one held by the guard.
func (a *App) Logout(ctx context.Context) error {
	if err := a.dir.Logout(ctx); err != nil {
		return err
	}
	a.guard.Clear()
	a.println("Signed out.")
	return nil
}

// WhoAmI prints the profile of the signed-in account. The directory is
// asked for fresh data; if the account is gone the session copy is shown.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.require(""); err != nil {
		return err
	}
	s := a.guard.Session()

	view := &s.Account
	if fresh, err := a.dir.GetAccount(ctx, s.Account.ID); err == nil {
		view = fresh
	} else {
		a.log.Warn(ctx, "profile lookup failed", "id", s.Account.ID, "error", err)
	}

	a.println(fmt.Sprintf("%-13s %s", "ID:", view.ID))
	a.println(fmt.Sprintf("%-13s %s", "Username:", view.Username))
	a.println(fmt.Sprintf("%-13s %s", "Role:", view.Role))
	a.println(fmt.Sprintf("%-13s %s", "Status:", statusLabel(view.Active)))
	a.println(fmt.Sprintf("%-13s %s", "Member since:", view.CreatedAt.Format("2006-01-02")))
	return nil
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
