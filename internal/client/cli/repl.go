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
	Login(ctx context.Context, args []string) error
	SignUp(ctx context.Context) error
	Resend(ctx context.Context, args []string) error
	Saved(ctx context.Context) error
	Forget(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
	Admin(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login [email], signup, resend [email], saved, forget [email...], admin login|status|logout, exit"
	helpLoggedIn  = "Available commands: whoami, logout, saved, forget [email...], admin login|status|logout, exit"
)

// runREPL starts a simple read–eval–print loop for the EduXperience CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Handler errors are printed and the loop continues: every failure is
// recoverable by trying again.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "edux (%s)> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
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
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}

		case "login":
			cmdErr = a.Login(ctx, args)

		case "signup", "register":
			cmdErr = a.SignUp(ctx)

		case "resend":
			cmdErr = a.Resend(ctx, args)

		case "saved":
			cmdErr = a.Saved(ctx)

		case "forget":
			cmdErr = a.Forget(ctx, args)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "admin":
			cmdErr = a.Admin(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", cmdErr)
		}
	}
}
