// Package cli provides the interactive gophdesk terminal dashboard.
//
// It is the presentation layer over the account directory: it restores the
// persisted session through a route guard, prompts for credentials, runs
// form pre-validation, and renders directory results and errors.
//
// Key features:
//   - Login / Register / Logout / profile (whoami)
//   - Administrator views: list and search users, stats, delete, toggle
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
