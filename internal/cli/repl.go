package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	report(ctx context.Context, err error)
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Users(ctx context.Context, term string) error
	Stats(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) error
}

// runREPL starts a simple read-eval-print loop for the gophdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create an account
//	  - login            authenticate
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - help             show available commands
//	  - whoami           show your profile
//	  - logout           log out
//	  - exit | quit      leave the program
//
//	Administrators additionally:
//	  - users [term]     list users, optionally filtered by username or id
//	  - stats            account totals
//	  - delete <id>      delete an account
//	  - toggle <id>      activate or deactivate an account
//
// Errors returned by command handlers are passed to a.report, which prints
// them; the loop itself keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "desk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText(a))

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami", "profile":
			cmdErr = a.WhoAmI(ctx)

		case "users":
			cmdErr = a.Users(ctx, strings.Join(args, " "))

		case "stats":
			cmdErr = a.Stats(ctx)

		case "delete":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: delete <id>")
				continue
			}
			cmdErr = a.Delete(ctx, args[0])

		case "toggle":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: toggle <id>")
				continue
			}
			cmdErr = a.Toggle(ctx, args[0])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			a.report(ctx, cmdErr)
		}
	}
}

func helpText(a execIface) string {
	switch {
	case a.isAdmin():
		return "Available commands: whoami, users [term], stats, delete <id>, toggle <id>, logout, exit"
	case a.isLoggedIn():
		return "Available commands: whoami, logout, exit"
	default:
		return "Available commands: register, login, exit"
	}
}
